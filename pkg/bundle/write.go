// Package bundle drains an assembled graph to disk: the code stream goes
// to the destination path, the trailing inline source map to a sibling
// .map file, and the provenance footer is appended once the stream has
// fully flushed. No partial-file cleanup happens on error; a failed
// build may leave a truncated artifact and the caller must treat the
// destination as invalid.
package bundle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/hauke-kiessler/lighthouse/pkg/assemble"
)

var ErrIO = errors.New("bundle: write failed")

// Write streams the handle's bundled output to dist, splitting the inline
// source map into dist+".map" and appending footer after the write stream
// completes.
func Write(h *assemble.Handle, dist, footer string) error {
	if err := os.MkdirAll(filepath.Dir(dist), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	f, err := os.Create(dist)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	log.Printf("bundle: writing %s", dist)
	w := bufio.NewWriter(f)
	sp := &splitter{w: w}
	pr, pw := io.Pipe()

	var g errgroup.Group
	g.Go(func() error {
		src := h.Open()
		_, err := io.Copy(pw, src)
		src.Close()
		pw.CloseWithError(err)
		return err
	})
	g.Go(func() error {
		if _, err := io.Copy(sp, pr); err != nil {
			pr.CloseWithError(err)
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		f.Close()
		return err
	}

	m, err := sp.finish()
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if m == nil {
		f.Close()
		return fmt.Errorf("%w: bundle stream carried no inline source map", ErrIO)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	if err := os.WriteFile(dist+".map", m, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return AppendFooter(dist, footer)
}
