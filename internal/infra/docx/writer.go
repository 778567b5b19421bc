// Package docx writes minimal WordprocessingML documents: plain paragraphs,
// no styles beyond the defaults.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const docFooter = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"/></w:sectPr></w:body></w:document>`

// Paragraphs splits text into paragraphs on blank lines and form feeds.
// Single newlines inside a paragraph become line breaks.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\f", "\n\n")

	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		out = append(out, strings.Trim(block, "\n"))
	}
	return out
}

// Write encodes paragraphs as a .docx archive.
func Write(w io.Writer, paragraphs []string) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(contentTypes)},
		{"_rels/.rels", []byte(rootRels)},
		{"word/document.xml", documentXML(paragraphs)},
	}
	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("docx %s: %w", p.name, err)
		}
		if _, err := fw.Write(p.body); err != nil {
			return fmt.Errorf("docx %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

// WriteFile writes text to path as a .docx.
func WriteFile(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, Paragraphs(text)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func documentXML(paragraphs []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(docHeader)
	for _, p := range paragraphs {
		buf.WriteString("<w:p><w:r>")
		for i, line := range strings.Split(p, "\n") {
			if i > 0 {
				buf.WriteString("<w:br/>")
			}
			buf.WriteString(`<w:t xml:space="preserve">`)
			_ = xml.EscapeText(&buf, []byte(sanitize(line)))
			buf.WriteString("</w:t>")
		}
		buf.WriteString("</w:r></w:p>")
	}
	if len(paragraphs) == 0 {
		buf.WriteString("<w:p/>")
	}
	buf.WriteString(docFooter)
	return buf.Bytes()
}

// sanitize drops control characters that are illegal in XML 1.0.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r >= 0x20 {
			if r == 0xFFFE || r == 0xFFFF {
				return -1
			}
			return r
		}
		return -1
	}, s)
}
