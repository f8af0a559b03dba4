package assemble

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInlineRequireResolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt"), []byte("hello\nworld"), 0644))

	src := []byte("var s = fs.readFileSync(require.resolve('./data.txt'), 'utf8');\n")
	out, err := InlineFileReads(src, dir)
	require.NoError(t, err)
	require.Equal(t, "var s = \"hello\\nworld\";\n", string(out))
}

func TestInlineDirname(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tpl.html"), []byte("<b>x</b>"), 0644))

	src := []byte(`const tpl = fs.readFileSync(__dirname + '/tpl.html', 'utf8');`)
	out, err := InlineFileReads(src, dir)
	require.NoError(t, err)
	require.Equal(t, `const tpl = "<b>x</b>";`, string(out))
}

func TestInlineLeavesDynamicReads(t *testing.T) {
	src := []byte("var s = fs.readFileSync(somePath, 'utf8');")
	out, err := InlineFileReads(src, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, string(src), string(out))
}

func TestInlineLeavesOtherEncodings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.bin"), []byte{1, 2}, 0644))

	src := []byte("fs.readFileSync(require.resolve('./blob.bin'), 'base64');")
	out, err := InlineFileReads(src, dir)
	require.NoError(t, err)
	require.Equal(t, string(src), string(out))
}

func TestInlineMissingFile(t *testing.T) {
	src := []byte("fs.readFileSync(require.resolve('./gone.txt'), 'utf8');")
	_, err := InlineFileReads(src, t.TempDir())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransform))
}

func TestInlineMultiple(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("A"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("B"), 0644))

	src := []byte("var a = fs.readFileSync(require.resolve('./a.txt'), 'utf8'); var b = fs.readFileSync(require.resolve('./b.txt'), 'utf8');")
	out, err := InlineFileReads(src, dir)
	require.NoError(t, err)
	require.Equal(t, `var a = "A"; var b = "B";`, string(out))
}
