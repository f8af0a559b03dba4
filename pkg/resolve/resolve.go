package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var Extensions = []string{"js", "cjs", "mjs", "json"}

// Resolve turns a user-supplied module name into an absolute file path.
// Relative names are rooted at root, bare names under root/node_modules.
// Missing extensions are probed, and directories are resolved through
// their package.json "main" field, defaulting to index.js.
func Resolve(root, name string) (string, error) {
	switch {
	case filepath.IsAbs(name):
	case strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../"):
		name = filepath.Join(root, name)
	default:
		name = filepath.Join(root, "node_modules", name)
	}

	st, err := os.Stat(name)
	if err != nil {
		for _, ext := range Extensions {
			st, err = os.Stat(name + "." + ext)
			if err == nil {
				name = name + "." + ext
				break
			}
		}
	}

	if st == nil {
		return "", fmt.Errorf("could not resolve: %q", name)
	}

	if st.IsDir() {
		main, err := dirMain(name)
		if err != nil {
			return "", err
		}
		name = filepath.Join(name, main)
	}

	return filepath.Abs(name)
}

// dirMain reads the "main" field from a directory's package.json, falling
// back to index.js when the file or the field is absent.
func dirMain(dir string) (string, error) {
	f, err := os.Open(filepath.Join(dir, "package.json"))
	if os.IsNotExist(err) {
		return "index.js", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	m := struct {
		Main string `json:"main"`
	}{}
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return "", fmt.Errorf("package.json in %s: %w", dir, err)
	}
	if m.Main == "" {
		return "index.js", nil
	}
	return m.Main, nil
}
