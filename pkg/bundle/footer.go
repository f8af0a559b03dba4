package bundle

import (
	"fmt"
	"os"
)

// Footer is the provenance line stamped at the end of every artifact.
// The format is fixed; tooling downstream greps for it.
func Footer(version, commit string) string {
	return fmt.Sprintf("// lighthouse, browserified. %s (%s)\n", version, commit)
}

// AppendFooter appends the footer to an already written artifact. This is
// a plain synchronous append so it always lands after the write stream
// has flushed.
func AppendFooter(path, footer string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if _, err := f.WriteString(footer); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
