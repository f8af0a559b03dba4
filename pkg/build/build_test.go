package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hauke-kiessler/lighthouse/pkg/util"
)

// fixtureProject lays out a small bundleable source tree: an entry, one
// audit, one gatherer, one locale and an inlined text asset.
func fixtureProject(t *testing.T) string {
	t.Helper()
	files := map[string]string{
		"package.json": `{"name": "fixture", "version": "5.2.0", "private": true}`,
		"core/index.js": "var pkg = require('../package.json');\n" +
			"var greeting = fs.readFileSync(require.resolve('./strings.txt'), 'utf8');\n" +
			"console.log(pkg.version, greeting);\n",
		"core/strings.txt":                 "Hello bundled",
		"core/audits/my-audit.js":          "module.exports = {id: 'my-audit'};\n",
		"core/gather/gatherers/scripts.js": "module.exports = {id: 'scripts'};\n",
		"shared/locales/en-US.json":        `{"hello": "world"}`,
		"devtools-entry.js":                "require('./core/index.js');\n",
	}
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func fixtureConfig(t *testing.T, root string) Config {
	t.Helper()
	cfg, err := NewConfig(root, "abc1234")
	require.NoError(t, err)
	require.Equal(t, "5.2.0", cfg.Version)
	return cfg
}

const wantFooter = "// lighthouse, browserified. 5.2.0 (abc1234)\n"

func TestBuildRoundTrip(t *testing.T) {
	root := fixtureProject(t)
	cfg := fixtureConfig(t, root)
	dist := filepath.Join(root, "out/lighthouse.js")

	require.NoError(t, cfg.Build(filepath.Join(root, "core/index.js"), dist))

	code, err := os.ReadFile(dist)
	require.NoError(t, err)
	require.NotEmpty(t, code)
	require.True(t, strings.HasSuffix(string(code), wantFooter), "footer missing, tail: %q", tail(code))

	// Plugins and locales are reachable through their exposed names.
	require.Contains(t, string(code), "../audits/my-audit")
	require.Contains(t, string(code), "../gather/gatherers/scripts")
	require.Contains(t, string(code), "../locales/en-US")
	// The static read was inlined; no filesystem access survives.
	require.Contains(t, string(code), "Hello bundled")
	require.NotContains(t, string(code), "readFileSync")
	// Metadata beyond the version did not leak.
	require.NotContains(t, string(code), "private")

	m, err := os.ReadFile(dist + ".map")
	require.NoError(t, err)
	var parsed struct {
		Version int      `json:"version"`
		Sources []string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(m, &parsed))
	require.Equal(t, 3, parsed.Version)
	require.NotEmpty(t, parsed.Sources)
}

func TestBuildIdempotent(t *testing.T) {
	root := fixtureProject(t)
	cfg := fixtureConfig(t, root)
	dist := filepath.Join(root, "out/lighthouse.js")

	require.NoError(t, cfg.Build(filepath.Join(root, "core/index.js"), dist))
	first, err := os.ReadFile(dist)
	require.NoError(t, err)

	require.NoError(t, cfg.Build(filepath.Join(root, "core/index.js"), dist))
	second, err := os.ReadFile(dist)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

// Relative entry and destination resolve against the working directory.
func TestBuildDevtoolsRelativePaths(t *testing.T) {
	root := fixtureProject(t)
	cfg := fixtureConfig(t, root)
	util.Pushd(t, root)

	require.NoError(t, cfg.Build("devtools-entry.js", "out/devtools.js"))

	code, err := os.ReadFile(filepath.Join(root, "out/devtools.js"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(code), wantFooter), "footer missing, tail: %q", tail(code))
	// The embedded-debugger host ships its own translations; the locale
	// manifest stays out of this flavor.
	require.NotContains(t, string(code), "../locales/en-US")
	require.Contains(t, string(code), "../audits/my-audit")
}

func TestBuildEntryExtensionProbe(t *testing.T) {
	root := fixtureProject(t)
	cfg := fixtureConfig(t, root)

	require.NoError(t, cfg.Build(filepath.Join(root, "core/index"), filepath.Join(root, "out/probe.js")))
}

func TestBuildAllFlavors(t *testing.T) {
	root := fixtureProject(t)
	cfg := fixtureConfig(t, root)
	util.Pushd(t, root)

	flavors := []Flavor{
		{Name: "plain", Entry: "core/index.js", Dist: "out/lighthouse.js"},
		{Name: "devtools", Entry: "devtools-entry.js", Dist: "out/devtools.js", Requires: []string{"plain"}},
	}
	require.NoError(t, cfg.BuildAll(context.Background(), flavors, 2))

	for _, f := range flavors {
		code, err := os.ReadFile(filepath.Join(root, f.Dist))
		require.NoError(t, err, f.Name)
		require.True(t, strings.HasSuffix(string(code), wantFooter), f.Name)
	}
}

func tail(b []byte) string {
	if len(b) < 80 {
		return string(b)
	}
	return string(b[len(b)-80:])
}
