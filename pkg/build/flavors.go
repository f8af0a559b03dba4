package build

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Flavor is one target environment built from the shared source tree.
// Requires names flavors whose artifacts must exist first, e.g. a bundle
// that inlines a generated report asset.
type Flavor struct {
	Name     string   `yaml:"name"`
	Entry    string   `yaml:"entry"`
	Dist     string   `yaml:"dist"`
	Requires []string `yaml:"requires"`
}

type flavorFile struct {
	Flavors []Flavor `yaml:"flavors"`
}

// LoadFlavors reads a flavor definition file (bundles.yaml).
func LoadFlavors(path string) ([]Flavor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ff flavorFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(ff.Flavors) == 0 {
		return nil, fmt.Errorf("%s defines no flavors", path)
	}
	return ff.Flavors, nil
}

// BuildAll builds every flavor, honoring Requires ordering, at most
// concurrency builds in parallel. Destinations must be distinct; builds
// racing one destination are a caller error the filesystem won't catch.
func (c Config) BuildAll(ctx context.Context, flavors []Flavor, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}

	byName := map[string]Flavor{}
	tasks := map[string][]string{}
	for _, f := range flavors {
		if _, ok := byName[f.Name]; ok {
			return fmt.Errorf("duplicate flavor %q", f.Name)
		}
		byName[f.Name] = f
		tasks[f.Name] = f.Requires
	}
	for _, f := range flavors {
		for _, req := range f.Requires {
			if _, ok := byName[req]; !ok {
				return fmt.Errorf("flavor %q requires unknown flavor %q", f.Name, req)
			}
		}
	}

	g := &TaskGraph{
		Concurrency: concurrency,
		Tasks:       tasks,
		Run: func(ctx context.Context, name string) error {
			f := byName[name]
			return c.Build(f.Entry, f.Dist)
		},
	}
	return g.Solve(ctx)
}
