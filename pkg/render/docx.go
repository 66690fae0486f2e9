// Package render builds the downloadable documents: the copy as DOCX and the
// design as PDF.
package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	DocxTitle       = "Generated Marketing Copy"
)

var ErrEmptyCopy = errors.New("render: no copy content provided")

type ParagraphStyle int

const (
	StyleBody ParagraphStyle = iota
	StyleHeading
	StyleSubheading
)

type Paragraph struct {
	Text  string
	Style ParagraphStyle
}

// Paragraphs splits copy on blank lines and classifies each block. Short
// upper-case blocks are headings, short blocks ending in ":" are subheadings.
func Paragraphs(copyText string) []Paragraph {
	var out []Paragraph
	for _, block := range strings.Split(strings.ReplaceAll(copyText, "\r\n", "\n"), "\n\n") {
		text := strings.TrimSpace(block)
		if text == "" {
			continue
		}
		n := len([]rune(text))
		style := StyleBody
		switch {
		case n < 100 && isUpper(text):
			style = StyleHeading
		case strings.HasSuffix(text, ":") && n < 50:
			style = StyleSubheading
		}
		out = append(out, Paragraph{Text: text, Style: style})
	}
	return out
}

// isUpper reports whether s has at least one cased letter and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// DOCX renders the copy as a Word document with the standard title and margins.
func DOCX(copyText string) ([]byte, error) {
	paragraphs := Paragraphs(copyText)
	if len(paragraphs) == 0 {
		return nil, ErrEmptyCopy
	}

	var body bytes.Buffer
	writeRun(&body, DocxTitle, "center", true, 56)
	body.WriteString("<w:p/>")
	for _, p := range paragraphs {
		switch p.Style {
		case StyleHeading:
			writeRun(&body, p.Text, "center", true, 0)
		case StyleSubheading:
			writeRun(&body, p.Text, "", true, 0)
		default:
			writeRun(&body, p.Text, "both", false, 0)
		}
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	files := []struct{ name, data string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentHeader + body.String() + documentFooter},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("render: create %s: %w", f.name, err)
		}
		if _, err := w.Write([]byte(f.data)); err != nil {
			return nil, fmt.Errorf("render: write %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("render: close docx: %w", err)
	}
	return out.Bytes(), nil
}

// writeRun writes one paragraph. Lines inside it become soft breaks.
func writeRun(b *bytes.Buffer, text, align string, bold bool, halfPoints int) {
	b.WriteString("<w:p>")
	if align != "" {
		fmt.Fprintf(b, `<w:pPr><w:jc w:val="%s"/></w:pPr>`, align)
	}
	b.WriteString("<w:r>")
	if bold || halfPoints > 0 {
		b.WriteString("<w:rPr>")
		if bold {
			b.WriteString("<w:b/>")
		}
		if halfPoints > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, halfPoints)
		}
		b.WriteString("</w:rPr>")
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("<w:br/>")
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(line))
		b.WriteString("</w:t>")
	}
	b.WriteString("</w:r></w:p>")
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

// 1in top/bottom, 1.25in left/right, in twips.
const documentFooter = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
	`<w:pgMar w:top="1440" w:right="1800" w:bottom="1440" w:left="1800" w:header="708" w:footer="708" w:gutter="0"/>` +
	`</w:sectPr></w:body></w:document>`
