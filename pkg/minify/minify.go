// Package minify finalizes a written artifact in place. The existing
// side-car map is supplied to the minifier as input context so the new
// map chains original sources to minified code instead of describing the
// intermediate bundle. There is no fallback to shipping unminified code.
package minify

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/hauke-kiessler/lighthouse/pkg/bundle"
)

var ErrMinify = errors.New("minify: minification failed")

// InPlace reads dist and dist+".map", minifies with the existing map as
// input, and overwrites both files, re-appending footer. Nothing is
// overwritten unless minification succeeded.
func InPlace(dist, footer string) error {
	code, err := os.ReadFile(dist)
	if err != nil {
		return fmt.Errorf("%w: %v", bundle.ErrIO, err)
	}
	m, err := os.ReadFile(dist + ".map")
	if err != nil {
		return fmt.Errorf("%w: %v", bundle.ErrIO, err)
	}

	// Hand the existing map to the minifier as an inline data URL so it
	// produces a chained map rather than one rooted at the bundled code.
	input := string(code) + "\n" + bundle.MapMarker + base64.StdEncoding.EncodeToString(m) + "\n"

	res := api.Transform(input, api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2019,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Sourcemap:         api.SourceMapExternal,
		Sourcefile:        filepath.Base(dist),
		LogLevel:          api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		parts := make([]string, len(res.Errors))
		for i, msg := range res.Errors {
			parts[i] = msg.Text
		}
		return fmt.Errorf("%w: %s", ErrMinify, strings.Join(parts, "; "))
	}

	log.Printf("minify: %s %d -> %d bytes", dist, len(code), len(res.Code))
	if err := os.WriteFile(dist, res.Code, 0644); err != nil {
		return fmt.Errorf("%w: %v", bundle.ErrIO, err)
	}
	if err := os.WriteFile(dist+".map", res.Map, 0644); err != nil {
		return fmt.Errorf("%w: %v", bundle.ErrIO, err)
	}
	return bundle.AppendFooter(dist, footer)
}
