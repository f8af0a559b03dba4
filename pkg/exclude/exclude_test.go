package exclude

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hauke-kiessler/lighthouse/pkg/manifest"
)

func TestEntryTag(t *testing.T) {
	tests := []struct {
		path string
		tag  string
	}{
		{"/src/devtools-entry.js", TagDevtools},
		{"/src/extension-entry.js", TagExtension},
		{"/src/index.js", TagNone},
		{"/devtools/other.js", TagNone}, // only the base name counts
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tag, Entry{Path: tt.path}.Tag(), tt.path)
	}
}

var locales = []manifest.ModuleRef{
	{Source: "/proj/shared/locales/en-US.json", Exposed: "../locales/en-US"},
	{Source: "/proj/shared/locales/de.json", Exposed: "../locales/de"},
}

// The transport and the platform tokens are excluded for every entry,
// whatever its tag.
func TestBaseRules(t *testing.T) {
	for _, entry := range []string{"/src/devtools-entry.js", "/src/extension-entry.js", "/src/index.js"} {
		s := Compute(Entry{Path: entry}, "/proj", locales)
		require.True(t, s.Has(Transport), entry)
		require.True(t, s.Has(TransportChannel), entry)
		for _, tok := range PlatformTokens {
			require.True(t, s.Has(tok), "%s missing %s", entry, tok)
		}
	}
	require.Len(t, PlatformTokens, 6)
}

func TestDevtoolsRules(t *testing.T) {
	s := Compute(Entry{Path: "/src/devtools-entry.js"}, "/proj", locales)
	assert.True(t, s.Has(ReportAsset))
	assert.True(t, s.Has(filepath.Join("/proj", "report/html/html-report-assets.js")))
	for _, ref := range locales {
		assert.True(t, s.Has(ref.Source))
	}
}

func TestExtensionRules(t *testing.T) {
	s := Compute(Entry{Path: "/src/extension-entry.js"}, "/proj", locales)
	assert.False(t, s.Has(ReportAsset))
	for _, ref := range locales {
		assert.True(t, s.Has(ref.Source))
	}
}

func TestUntaggedRules(t *testing.T) {
	s := Compute(Entry{Path: "/src/index.js"}, "/proj", locales)
	assert.False(t, s.Has(ReportAsset))
	for _, ref := range locales {
		assert.False(t, s.Has(ref.Source))
	}
}
