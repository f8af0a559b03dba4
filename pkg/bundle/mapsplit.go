package bundle

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
)

// MapMarker starts the inline source-map comment esbuild appends to a
// bundle. The Finalizer reuses it to hand the existing map back to the
// minifier.
const MapMarker = "//# sourceMappingURL=data:application/json;base64,"

// splitter forwards a bundle stream to w while diverting the trailing
// inline source-map comment. Once the marker is seen at a line start,
// everything from there to EOF is the map payload; until then a
// marker-sized tail is withheld so a marker straddling two writes is
// still caught. A marker inside a line (say, a string literal) does not
// trigger the split.
type splitter struct {
	w     io.Writer
	pend  []byte
	raw   []byte
	found bool
}

func (s *splitter) Write(p []byte) (int, error) {
	if s.found {
		s.raw = append(s.raw, p...)
		return len(p), nil
	}

	s.pend = append(s.pend, p...)
	if i := bytes.Index(s.pend, []byte("\n"+MapMarker)); i >= 0 {
		if _, err := s.w.Write(s.pend[:i+1]); err != nil {
			return 0, err
		}
		s.raw = append([]byte(nil), s.pend[i+1:]...)
		s.pend = nil
		s.found = true
		return len(p), nil
	}

	if n := len(s.pend) - len(MapMarker) - 1; n > 0 {
		if _, err := s.w.Write(s.pend[:n]); err != nil {
			return 0, err
		}
		s.pend = append(s.pend[:0:0], s.pend[n:]...)
	}
	return len(p), nil
}

// finish flushes any withheld bytes and decodes the diverted comment.
// The returned map is nil when the stream carried none.
func (s *splitter) finish() ([]byte, error) {
	if !s.found {
		if _, err := s.w.Write(s.pend); err != nil {
			return nil, err
		}
		return nil, nil
	}
	payload := bytes.TrimRight(bytes.TrimPrefix(s.raw, []byte(MapMarker)), "\n")
	m, err := base64.StdEncoding.DecodeString(string(payload))
	if err != nil {
		return nil, fmt.Errorf("decoding inline source map: %w", err)
	}
	return m, nil
}
