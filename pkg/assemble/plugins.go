package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/hauke-kiessler/lighthouse/pkg/exclude"
)

// exclusionPlugin marks every excluded module as external. The require
// call stays in the output, so code reaching an excluded module fails at
// dynamic-require time with a module-not-found signal instead of being
// handed a silent stub.
func exclusionPlugin(excl exclude.Set) api.Plugin {
	return api.Plugin{
		Name: "exclusions",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if excl.Has(args.Path) {
						return api.OnResolveResult{Path: args.Path, External: true}, nil
					}
					if strings.HasPrefix(args.Path, ".") && args.ResolveDir != "" {
						abs := filepath.Join(args.ResolveDir, filepath.FromSlash(args.Path))
						if excl.Has(abs) {
							return api.OnResolveResult{Path: abs, External: true}, nil
						}
					}
					return api.OnResolveResult{}, nil
				})
		},
	}
}

// inlinePlugin applies the static file-read transform to project sources.
// Vendored modules are loaded untouched.
func inlinePlugin(root string) api.Plugin {
	return api.Plugin{
		Name: "inline-file-reads",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.(js|cjs|mjs)$`},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					if !strings.HasPrefix(args.Path, root+string(filepath.Separator)) ||
						strings.Contains(args.Path, "node_modules") {
						return api.OnLoadResult{}, nil
					}
					src, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, fmt.Errorf("%w: %v", ErrTransform, err)
					}
					out, err := InlineFileReads(src, filepath.Dir(args.Path))
					if err != nil {
						return api.OnLoadResult{}, err
					}
					contents := string(out)
					return api.OnLoadResult{
						Contents:   &contents,
						Loader:     api.LoaderJS,
						ResolveDir: filepath.Dir(args.Path),
					}, nil
				})
		},
	}
}

const versionNamespace = "pkg-version"

// versionPlugin substitutes every access to the project's own
// package.json with a stand-in exposing only the version field, keeping
// build metadata out of the artifact.
func versionPlugin(root, version string) api.Plugin {
	pkg := filepath.Join(root, "package.json")
	stub := fmt.Sprintf("{\"version\": %q}", version)
	return api.Plugin{
		Name: "package-version-stub",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `package\.json$`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					abs := args.Path
					if !filepath.IsAbs(abs) && args.ResolveDir != "" {
						abs = filepath.Join(args.ResolveDir, filepath.FromSlash(args.Path))
					}
					if abs != pkg {
						return api.OnResolveResult{}, nil
					}
					return api.OnResolveResult{Path: "package.json", Namespace: versionNamespace}, nil
				})
			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: versionNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return api.OnLoadResult{Contents: &stub, Loader: api.LoaderJSON}, nil
				})
		},
	}
}
