package office

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPDF_MissingBinary(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	defer func() { lookPath = orig }()

	c := NewConverter("")
	assert.Equal(t, "soffice", c.Binary)
	assert.False(t, c.Available())

	_, err := c.ToPDF(context.Background(), "/tmp/in.docx", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not installed")
}

func TestToPDF_FakeBinaryWritesOutput(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-soffice")
	// The last two arguments are "--outdir <dir> <input>"; emulate LibreOffice naming.
	body := "#!/bin/sh\nfor last; do :; done\nout=\"\"\nprev=\"\"\nfor a in \"$@\"; do if [ \"$prev\" = \"--outdir\" ]; then out=\"$a\"; fi; prev=\"$a\"; done\nbase=$(basename \"$last\")\necho '%PDF-1.4' > \"$out/${base%.*}.pdf\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	in := filepath.Join(dir, "letter.docx")
	require.NoError(t, os.WriteFile(in, []byte("PK"), 0o644))

	outDir := t.TempDir()
	c := NewConverter(script)
	assert.True(t, c.Available())

	out, err := c.ToPDF(context.Background(), in, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "letter.pdf"), out)
}

func TestToPDF_FailingBinary(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "broken-soffice")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'source file could not be loaded' >&2\nexit 1\n"), 0o755))

	_, err := NewConverter(script).ToPDF(context.Background(), filepath.Join(dir, "x.docx"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be loaded")
}
