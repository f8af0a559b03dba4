package build

import (
	"context"
	"errors"
	"log"
	"sync"
)

var ErrUnsolvable = errors.New("build: unsolvable flavor graph")

type result struct {
	name string
	err  error
}

type job struct {
	name string
	ctx  context.Context
	done chan result
}

// TaskFunc runs one named flavor build.
type TaskFunc func(ctx context.Context, name string) error

// TaskGraph schedules flavor builds over a worker pool, starting each
// flavor only after the flavors it requires have completed. A first
// error cancels everything still pending.
type TaskGraph struct {
	Concurrency int
	Tasks       map[string][]string
	Run         TaskFunc

	wg        *sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	inFlight  map[string]bool
	completed map[string]bool
	jobs      chan job
	err       error
	done      chan result
}

func (g *TaskGraph) init(ctx context.Context) {
	g.completed = map[string]bool{}
	g.inFlight = map[string]bool{}
	g.jobs = make(chan job, g.Concurrency)
	g.done = make(chan result)
	g.wg = &sync.WaitGroup{}
	g.ctx, g.cancel = context.WithCancel(ctx)
}

func (g *TaskGraph) Solve(ctx context.Context) error {
	g.init(ctx)

	g.wg.Add(g.Concurrency)
	for i := 0; i < g.Concurrency; i++ {
		go worker(i, g.Run, g.wg, g.jobs)
	}
	err := g.pump(ctx)
	g.wg.Wait()
	close(g.done)
	return err
}

func worker(i int, run TaskFunc, wg *sync.WaitGroup, jobs chan job) {
	defer wg.Done()

	for j := range jobs {
		log.Printf("worker[%d]: building %s", i, j.name)
		err := run(j.ctx, j.name)
		j.done <- result{name: j.name, err: err}
	}
}

// Pump feeds ready flavors into the job channel and reads completions.
// All graph state is owned here; workers only execute.
func (g *TaskGraph) pump(ctx context.Context) error {
	defer close(g.jobs)

	// Prime the queue blocking, otherwise nothing is in flight and the
	// select below deadlocks.
	if !g.send(true) {
		return ErrUnsolvable
	}

	for !g.finished() || g.working() {
		select {
		case r := <-g.done:
			g.complete(r.name)
			if r.err != nil {
				log.Printf("pump: %s failed: %v", r.name, r.err)
				g.errored(r.err)
			}
			if !g.finished() {
				sent := g.send(false)
				// Nothing in flight and nothing sendable means a
				// requirement cycle.
				if !sent && !g.working() {
					return ErrUnsolvable
				}
			}
		case <-ctx.Done():
			g.errored(ctx.Err())
		}
	}

	return g.err
}

func (g *TaskGraph) errored(err error) {
	if g.err == nil {
		g.err = err
	}
	g.cancel()
}

func (g *TaskGraph) working() bool {
	return len(g.inFlight) > 0
}

func (g *TaskGraph) finished() bool {
	return g.err != nil || len(g.completed) >= len(g.Tasks)
}

func (g *TaskGraph) complete(name string) {
	g.completed[name] = true
	delete(g.inFlight, name)
}

// Send pushes ready flavors into the job channel. When block is false it
// stops as soon as the channel would block.
func (g *TaskGraph) send(block bool) (sent bool) {
	for name := range g.Tasks {
		if !g.ready(name) {
			continue
		}
		if block {
			g.jobs <- job{name: name, ctx: g.ctx, done: g.done}
		} else {
			select {
			case g.jobs <- job{name: name, ctx: g.ctx, done: g.done}:
			default:
				return
			}
		}
		g.inFlight[name] = true
		sent = true
	}
	return
}

func (g *TaskGraph) ready(name string) bool {
	if g.inFlight[name] || g.completed[name] {
		return false
	}
	for _, req := range g.Tasks[name] {
		if !g.completed[req] {
			return false
		}
	}
	return true
}
