// Package exclude decides which optional subsystems are pruned from the
// bundle graph for a given entry point. Different hosting environments
// provide or forbid different capabilities; one shared dependency graph
// with per-environment pruning avoids maintaining parallel entry trees.
package exclude

import (
	"path/filepath"
	"strings"

	"github.com/hauke-kiessler/lighthouse/pkg/manifest"
)

// Entry tags, derived from the entry file's base name.
const (
	TagNone      = ""
	TagDevtools  = "embedded-debugger-host"
	TagExtension = "extension"
)

// Entry describes a single bundle entry point.
type Entry struct {
	Path string
}

// Tag classifies the entry by substring tests on its base name.
func (e Entry) Tag() string {
	base := filepath.Base(e.Path)
	switch {
	case strings.Contains(base, "devtools"):
		return TagDevtools
	case strings.Contains(base, "extension"):
		return TagExtension
	}
	return TagNone
}

// Transport is the debugger connection module. The bundle always runs
// inside an environment that already has an implicit transport, so it
// must never open its own. Channel is the websocket the transport rides.
const (
	Transport        = "chrome-remote-interface"
	TransportChannel = "ws"
)

// ReportAsset is the stringified HTML report module, pruned for hosts
// that render the report themselves.
const ReportAsset = "./report/html/html-report-assets.js"

// PlatformTokens are modules with no browser-safe implementation or no
// runtime use in a bundle: the intl polyfill pair, the error-reporting
// client, two filesystem utilities and a compression sub-module.
var PlatformTokens = []string{
	"intl",
	"intl-pluralrules",
	"raven",
	"mkdirp",
	"rimraf",
	"pako/lib/zlib/inflate.js",
}

// Set is the computed exclusion set for one entry. Computed once, never
// mutated afterwards.
type Set struct {
	tokens map[string]bool
}

// Compute applies the exclusion rules for the entry against the project
// root. The rules are a set union, not an if/else chain; several can
// apply to one entry.
func Compute(entry Entry, root string, locales []manifest.ModuleRef) Set {
	s := Set{tokens: map[string]bool{
		Transport:        true,
		TransportChannel: true,
	}}
	for _, t := range PlatformTokens {
		s.tokens[t] = true
	}

	tag := entry.Tag()
	if tag == TagDevtools {
		s.tokens[ReportAsset] = true
		s.tokens[filepath.Join(root, filepath.FromSlash(ReportAsset))] = true
	}
	if tag == TagDevtools || tag == TagExtension {
		for _, ref := range locales {
			s.tokens[ref.Source] = true
		}
	}
	return s
}

// Has reports whether the module identifier or token is excluded.
func (s Set) Has(token string) bool {
	return s.tokens[token]
}

// Tokens returns the excluded identifiers in unspecified order.
func (s Set) Tokens() []string {
	out := make([]string, 0, len(s.tokens))
	for t := range s.tokens {
		out = append(out, t)
	}
	return out
}
