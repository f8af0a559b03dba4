// Package manifest enumerates the dynamically loadable plugin modules
// (audits and gatherers) and the locale resource bundles of a project
// tree. The bundled runtime never imports these statically; it looks them
// up by constructed string paths, so every module is recorded together
// with the stable public name it must be exposed under.
package manifest

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Directory layout under the project root.
const (
	auditsDir    = "core/audits"
	gatherersDir = "core/gather/gatherers"
	localesDir   = "shared/locales"

	// sourceRoot is rewritten to publicPrefix when deriving exposed
	// names, e.g. core/audits/my-audit.js -> ../audits/my-audit.
	sourceRoot   = "core/"
	publicPrefix = "../"
	localePrefix = "../locales/"
)

// ModuleRef pairs a module's absolute source path with the exposed name
// the bundled runtime will require it by.
type ModuleRef struct {
	Source  string
	Exposed string
}

// Plugins holds the two plugin categories.
type Plugins struct {
	Audits    []ModuleRef
	Gatherers []ModuleRef
}

// Collector scans one project root. The zero value is not usable; Root
// must be an absolute path.
type Collector struct {
	Root string
}

// Plugins lists every audit and gatherer module under the project root.
// Output is sorted by source path and exposed names are unique within
// each category; a duplicate would silently shadow a module at dynamic
// load time, so it is rejected here.
func (c Collector) Plugins() (Plugins, error) {
	audits, err := c.scan(auditsDir, exposedName)
	if err != nil {
		return Plugins{}, err
	}
	gatherers, err := c.scan(gatherersDir, exposedName)
	if err != nil {
		return Plugins{}, err
	}
	log.Printf("manifest: %d audits, %d gatherers", len(audits), len(gatherers))
	return Plugins{Audits: audits, Gatherers: gatherers}, nil
}

// Locales lists one resource module per supported locale.
func (c Collector) Locales() ([]ModuleRef, error) {
	return c.scan(localesDir, func(rel string) string {
		return localePrefix + strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	})
}

// scan walks dir below the root, derives exposed names via expose from
// the root-relative path and enforces per-category uniqueness.
func (c Collector) scan(dir string, expose func(rel string) string) ([]ModuleRef, error) {
	var refs []ModuleRef
	seen := map[string]string{}

	root := filepath.Join(c.Root, filepath.FromSlash(dir))
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(c.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		name := expose(rel)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("manifest: exposed name %q for %s already taken by %s", name, rel, prev)
		}
		seen[name] = rel

		refs = append(refs, ModuleRef{Source: p, Exposed: name})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Source < refs[j].Source })
	return refs, nil
}

// exposedName rewrites the fixed source-root prefix to the public prefix
// and drops the extension. The rewrite is deterministic so a runtime
// require(exposedName) lands on the same module regardless of the
// bundler's internal numbering.
func exposedName(rel string) string {
	return publicPrefix + strings.TrimSuffix(strings.TrimPrefix(rel, sourceRoot), path.Ext(rel))
}
