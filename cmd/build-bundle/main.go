// build-bundle produces a self-contained browser bundle from an entry
// point, with a side-car source map and a provenance footer.
//
// Usage:
//
//	build-bundle <entry> <dist>
//	build-bundle all [bundles.yaml]
//
// The commit hash is resolved from git exactly once, here; the build
// packages never shell out.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/hauke-kiessler/lighthouse/pkg/build"
)

// urlShim is exposed under the bare name "url" when present in the tree.
const urlShim = "./shims/url.js"

var rootCmd = &cobra.Command{
	Use:   "build-bundle <entry> <dist>",
	Short: "Bundle one entry point into a minified browser artifact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := newConfig()
		if err != nil {
			return err
		}
		return cfg.Build(args[0], args[1])
	},
	SilenceUsage: true,
}

var allCmd = &cobra.Command{
	Use:   "all [bundles.yaml]",
	Short: "Build every flavor defined in the flavor file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "bundles.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		cfg, err := newConfig()
		if err != nil {
			return err
		}
		flavors, err := build.LoadFlavors(path)
		if err != nil {
			return err
		}
		return cfg.BuildAll(cmd.Context(), flavors, runtime.NumCPU())
	},
	SilenceUsage: true,
}

func newConfig() (build.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return build.Config{}, err
	}
	commit, err := build.CommitHash(wd)
	if err != nil {
		return build.Config{}, err
	}
	cfg, err := build.NewConfig(wd, commit)
	if err != nil {
		return build.Config{}, err
	}
	if _, err := os.Stat(filepath.Join(wd, urlShim)); err == nil {
		cfg.URLShim = urlShim
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(allCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
