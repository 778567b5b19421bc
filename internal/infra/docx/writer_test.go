package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphs(t *testing.T) {
	got := Paragraphs("Title\r\n\r\nfirst line\nsecond line\n\n\n\fNext page")
	assert.Equal(t, []string{"Title", "first line\nsecond line", "Next page"}, got)
	assert.Empty(t, Paragraphs(" \n\n "))
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestWrite_EscapesAndBreaks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []string{"a < b & c", "line1\nline2\x00"}))

	doc := readPart(t, buf.Bytes(), "word/document.xml")
	assert.Contains(t, doc, "a &lt; b &amp; c")
	assert.Contains(t, doc, "line1</w:t><w:br/>")
	assert.NotContains(t, doc, "\x00")
	assert.Equal(t, 2, strings.Count(doc, "<w:p>"))

	assert.Contains(t, readPart(t, buf.Bytes(), "[Content_Types].xml"), "wordprocessingml")
	assert.Contains(t, readPart(t, buf.Bytes(), "_rels/.rels"), "word/document.xml")
}

func TestWriteFile_Empty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.docx")
	require.NoError(t, WriteFile(p, ""))
}
