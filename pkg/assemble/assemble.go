// Package assemble builds the dependency graph for one entry point and
// serializes it as a single browser-runnable stream: entry-rooted
// resolution, source-level transforms, exclusion pruning and plugin
// exposure under stable public names.
package assemble

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/hauke-kiessler/lighthouse/pkg/exclude"
	"github.com/hauke-kiessler/lighthouse/pkg/manifest"
)

var (
	ErrResolution = errors.New("assemble: resolution failed")
	ErrTransform  = errors.New("assemble: transform failed")
)

// Options configure one assembly.
type Options struct {
	// Root is the absolute project root.
	Root string
	// Version replaces the project package metadata and lands in the
	// provenance footer.
	Version string
	// Dist is the artifact's final path; source-map sources resolve
	// relative to its directory.
	Dist string
	// URLShim, when set, is the module exposed under the bare name
	// "url". The robots.txt parser expects its platform URL
	// implementation there.
	URLShim string
}

// Handle is a lazily assembled bundle. The underlying build runs when the
// stream returned by Open is first drained, not at construction.
type Handle struct {
	opts api.BuildOptions
}

// Assemble prepares the bundle graph rooted at entry. Every manifest ref
// is force-included and registered under its exposed name; a ref naming
// an excluded module is a resolution error, since exposing it would
// override a policy the caller computed deliberately.
func Assemble(entry exclude.Entry, excl exclude.Set, refs []manifest.ModuleRef, o Options) (*Handle, error) {
	for _, ref := range refs {
		if excl.Has(ref.Source) || excl.Has(ref.Exposed) {
			return nil, fmt.Errorf("%w: exposed module %q is excluded for this entry", ErrResolution, ref.Exposed)
		}
	}

	opts := api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   prelude(entry.Path, refs),
			ResolveDir: o.Root,
			Sourcefile: "registry.js",
			Loader:     api.LoaderJS,
		},
		Bundle:    true,
		Write:     false,
		Outfile:   o.Dist,
		Format:    api.FormatIIFE,
		Platform:  api.PlatformBrowser,
		Target:    api.ES2019,
		Sourcemap: api.SourceMapInline,
		External:  append([]string{exclude.Transport, exclude.TransportChannel}, exclude.PlatformTokens...),
		Plugins: []api.Plugin{
			exclusionPlugin(excl),
			inlinePlugin(o.Root),
			versionPlugin(o.Root, o.Version),
		},
		LogLevel: api.LogLevelSilent,
	}
	if o.URLShim != "" {
		opts.Alias = map[string]string{"url": o.URLShim}
	}
	log.Printf("assemble: entry=%s refs=%d excluded=%d", entry.Path, len(refs), len(excl.Tokens()))
	return &Handle{opts: opts}, nil
}

// Open returns the bundled output as a stream. Errors from the build
// surface on the reader.
func (h *Handle) Open() io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		res := api.Build(h.opts)
		if len(res.Errors) > 0 {
			pw.CloseWithError(buildError(res.Errors))
			return
		}
		if len(res.OutputFiles) != 1 {
			pw.CloseWithError(fmt.Errorf("%w: expected one output file, got %d", ErrResolution, len(res.OutputFiles)))
			return
		}
		_, err := pw.Write(res.OutputFiles[0].Contents)
		pw.CloseWithError(err)
	}()
	return pr
}

// prelude synthesizes the real entry module: registry runtime, one
// registration per exposed module, then the application entry itself.
func prelude(entryPath string, refs []manifest.ModuleRef) string {
	var b strings.Builder
	b.WriteString(registryRuntime)
	for _, ref := range refs {
		fmt.Fprintf(&b, "__registerBundledModule(%s, function () { return require(%s); });\n",
			jsString(ref.Exposed), jsString(filepath.ToSlash(ref.Source)))
	}
	fmt.Fprintf(&b, "require(%s);\n", jsString(filepath.ToSlash(entryPath)))
	return b.String()
}

func jsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func buildError(msgs []api.Message) error {
	kind := ErrTransform
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = m.Text
		if strings.Contains(m.Text, "Could not resolve") {
			kind = ErrResolution
		}
	}
	return fmt.Errorf("%w: %s", kind, strings.Join(parts, "; "))
}
