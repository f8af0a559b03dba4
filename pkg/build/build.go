// Package build sequences the bundling pipeline: manifest collection and
// exclusion policy feed the assembler, the assembler feeds the artifact
// writer, and the writer's completion gates the finalizer. One call, one
// entry, one artifact pair; any stage failure surfaces to the caller
// untouched and the destination must then be treated as invalid.
package build

import (
	"log"
	"path/filepath"

	"github.com/hauke-kiessler/lighthouse/pkg/assemble"
	"github.com/hauke-kiessler/lighthouse/pkg/bundle"
	"github.com/hauke-kiessler/lighthouse/pkg/exclude"
	"github.com/hauke-kiessler/lighthouse/pkg/manifest"
	"github.com/hauke-kiessler/lighthouse/pkg/minify"
	"github.com/hauke-kiessler/lighthouse/pkg/resolve"
)

// Build bundles entryPath into distPath, then minifies in place. Both
// paths resolve relative to the working directory.
func (c Config) Build(entryPath, distPath string) error {
	entryAbs, err := filepath.Abs(entryPath)
	if err != nil {
		return err
	}
	// Probe extensions and directory mains so "core/index" works.
	entryAbs, err = resolve.Resolve(filepath.Dir(entryAbs), "./"+filepath.Base(entryAbs))
	if err != nil {
		return err
	}
	dist, err := filepath.Abs(distPath)
	if err != nil {
		return err
	}

	entry := exclude.Entry{Path: entryAbs}
	log.Printf("build: entry=%s tag=%q dist=%s", entryAbs, entry.Tag(), dist)

	col := manifest.Collector{Root: c.Root}
	plugins, err := col.Plugins()
	if err != nil {
		return err
	}
	locales, err := col.Locales()
	if err != nil {
		return err
	}

	excl := exclude.Compute(entry, c.Root, locales)

	refs := append(append([]manifest.ModuleRef{}, plugins.Audits...), plugins.Gatherers...)
	if tag := entry.Tag(); tag != exclude.TagDevtools && tag != exclude.TagExtension {
		// The locale manifest is dropped wholesale for hosts that ship
		// their own translations; for everyone else it is exposed like
		// any other plugin category.
		refs = append(refs, locales...)
	}

	var shim string
	if c.URLShim != "" {
		shim, err = resolve.Resolve(c.Root, c.URLShim)
		if err != nil {
			return err
		}
	}

	h, err := assemble.Assemble(entry, excl, refs, assemble.Options{
		Root:    c.Root,
		Version: c.Version,
		Dist:    dist,
		URLShim: shim,
	})
	if err != nil {
		return err
	}

	footer := bundle.Footer(c.Version, c.Commit)
	if err := bundle.Write(h, dist, footer); err != nil {
		return err
	}
	return minify.InPlace(dist, footer)
}
