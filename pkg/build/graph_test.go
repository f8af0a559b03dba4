package build

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func runGraph(t *testing.T, g *TaskGraph, fail map[string]bool) ([]string, error) {
	t.Helper()
	var mu sync.Mutex
	var order []string
	g.Run = func(ctx context.Context, name string) error {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
		if fail[name] {
			return fmt.Errorf("build failed: %s", name)
		}
		return nil
	}
	err := g.Solve(context.Background())
	return order, err
}

func TestGraphSolvesAll(t *testing.T) {
	g := &TaskGraph{
		Concurrency: 2,
		Tasks: map[string][]string{
			"report":    {},
			"plain":     {"report"},
			"devtools":  {"report"},
			"extension": {"report"},
		},
	}

	order, err := runGraph(t, g, nil)
	require.NoError(t, err)
	require.Len(t, order, 4)
	require.Equal(t, "report", order[0])
}

func TestGraphRunsEachOnce(t *testing.T) {
	g := &TaskGraph{
		Concurrency: 3,
		Tasks:       map[string][]string{"a": {}, "b": {"a"}, "c": {"a", "b"}},
	}

	order, err := runGraph(t, g, nil)
	require.NoError(t, err)
	seen := map[string]int{}
	for _, name := range order {
		seen[name]++
	}
	for name, n := range seen {
		require.Equal(t, 1, n, name)
	}
}

func TestGraphError(t *testing.T) {
	g := &TaskGraph{
		Concurrency: 1,
		Tasks:       map[string][]string{"a": {}, "b": {"a"}},
	}

	_, err := runGraph(t, g, map[string]bool{"a": true})
	require.Error(t, err)
	require.Contains(t, err.Error(), "build failed: a")
}

func TestGraphCycle(t *testing.T) {
	g := &TaskGraph{
		Concurrency: 1,
		Tasks:       map[string][]string{"a": {"b"}, "b": {"a"}},
	}

	_, err := runGraph(t, g, nil)
	require.ErrorIs(t, err, ErrUnsolvable)
}
