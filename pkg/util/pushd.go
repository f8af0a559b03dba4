package util

import (
	"os"
	"testing"
)

// Pushd switches the working directory for the duration of a test. Build
// requests resolve entry and destination against the CWD, so tests that
// exercise relative paths pin it here.
func Pushd(tb testing.TB, dir string) {
	tb.Helper()
	wd, err := os.Getwd()
	if err != nil {
		tb.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			tb.Fatal(err)
		}
	})
}
