package build

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Config carries everything one pipeline invocation needs. The commit
// hash is injected here by whoever constructs the Config; the library
// itself never shells out during a build.
type Config struct {
	// Root is the absolute project root holding package.json, the
	// plugin trees and the locale bundles.
	Root string
	// Version is the project version, shared by the provenance footer
	// and the package-metadata stand-in.
	Version string
	// Commit is the VCS head hash stamped into the footer.
	Commit string
	// URLShim is the root-relative module exposed under the bare name
	// "url"; empty disables the shim.
	URLShim string
}

// NewConfig resolves root, reads the project version from package.json
// and injects the given commit hash.
func NewConfig(root, commit string) (Config, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return Config{}, err
	}
	version, err := packageVersion(root)
	if err != nil {
		return Config{}, err
	}
	return Config{Root: root, Version: version, Commit: commit}, nil
}

func packageVersion(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return "", fmt.Errorf("reading project metadata: %w", err)
	}
	m := struct {
		Version string `json:"version"`
	}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("parsing package.json: %w", err)
	}
	if m.Version == "" {
		return "", fmt.Errorf("package.json in %s has no version", root)
	}
	return m.Version, nil
}

// CommitHash asks git for the short head hash of dir. Callers run this
// once at startup and pass the result into NewConfig; this tool only
// ever runs inside a source checkout, so an error here is fatal to the
// process, not to the library.
func CommitHash(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
