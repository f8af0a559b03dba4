package assemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hauke-kiessler/lighthouse/pkg/resolve"
)

const readCall = "fs.readFileSync("

// InlineFileReads rewrites static file-read calls in a module's source
// into inlined string literals so the bundled runtime has no filesystem
// dependency for those reads. dir is the directory of the module being
// transformed. Recognized forms:
//
//	fs.readFileSync(require.resolve('x'), 'utf8')
//	fs.readFileSync(__dirname + '/x', 'utf8')
//
// Reads whose argument is not a static string are left untouched. A
// static path that cannot be read is a transform error.
func InlineFileReads(src []byte, dir string) ([]byte, error) {
	s := string(src)
	if !strings.Contains(s, readCall) {
		return src, nil
	}

	var out strings.Builder
	for {
		i := strings.Index(s, readCall)
		if i < 0 {
			out.WriteString(s)
			break
		}
		out.WriteString(s[:i])
		s = s[i:]

		lit, n, err := inlineOne(s, dir)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Not a static read.
			out.WriteString(readCall)
			s = s[len(readCall):]
			continue
		}
		out.WriteString(lit)
		s = s[n:]
	}
	return []byte(out.String()), nil
}

// inlineOne parses one fs.readFileSync call at the start of s and returns
// the replacement literal plus the number of bytes consumed. n == 0 means
// the call is not statically inlinable.
func inlineOne(s, dir string) (lit string, n int, err error) {
	rest := s[len(readCall):]

	var path string
	var tail string
	switch {
	case strings.HasPrefix(rest, "require.resolve("):
		mod, after, ok := quoted(rest[len("require.resolve("):])
		if !ok || !strings.HasPrefix(after, ")") {
			return "", 0, nil
		}
		path, err = resolve.Resolve(dir, mod)
		if err != nil {
			return "", 0, fmt.Errorf("%w: inline read: %v", ErrTransform, err)
		}
		tail = after[1:]
	case strings.HasPrefix(rest, "__dirname + "):
		rel, after, ok := quoted(rest[len("__dirname + "):])
		if !ok {
			return "", 0, nil
		}
		path = filepath.Join(dir, filepath.FromSlash(rel))
		tail = after
	default:
		return "", 0, nil
	}

	// The call must end with an explicit utf8 encoding argument.
	tail = strings.TrimPrefix(tail, ",")
	enc, after, ok := quoted(strings.TrimLeft(tail, " "))
	if !ok || enc != "utf8" || !strings.HasPrefix(after, ")") {
		return "", 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: inline read %s: %v", ErrTransform, path, err)
	}
	quotedData, err := json.Marshal(string(data))
	if err != nil {
		return "", 0, fmt.Errorf("%w: inline read %s: %v", ErrTransform, path, err)
	}

	consumed := len(s) - len(after) + 1
	return string(quotedData), consumed, nil
}

// quoted reads a leading single- or double-quoted string, returning its
// contents and the remainder after the closing quote.
func quoted(s string) (val, rest string, ok bool) {
	if s == "" || (s[0] != '\'' && s[0] != '"') {
		return "", "", false
	}
	q := s[0]
	end := strings.IndexByte(s[1:], q)
	if end < 0 {
		return "", "", false
	}
	return s[1 : 1+end], s[2+end:], true
}
