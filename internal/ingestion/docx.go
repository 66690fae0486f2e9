package ingestion

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

func (e *Extractor) docx(src Source, _ Mode) (Content, error) {
	zr, err := zip.NewReader(bytes.NewReader(src.Data), src.Size())
	if err != nil {
		return Content{}, fmt.Errorf("open docx archive: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Content{}, fmt.Errorf("open %s: %w", docxBodyPart, err)
		}
		defer rc.Close()

		text, err := readDocumentXML(rc)
		if err != nil {
			return Content{}, fmt.Errorf("parse %s: %w", docxBodyPart, err)
		}
		return Content{Format: FormatText, Body: text}, nil
	}

	return Content{}, errors.New("docx archive has no " + docxBodyPart)
}

// readDocumentXML walks the WordprocessingML body in document order.
// Paragraphs become lines; each table row becomes one line of cells joined with " | ".
func readDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		lines      []string
		para       strings.Builder
		inPara     bool
		tableDepth int
		row        []string
		cell       []string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth == 1 {
					row = row[:0]
				}
			case "tc":
				if tableDepth == 1 {
					cell = cell[:0]
				}
			case "p":
				inPara = true
				para.Reset()
			case "t":
				if inPara {
					var s string
					if err := dec.DecodeElement(&s, &t); err != nil {
						return "", err
					}
					para.WriteString(s)
				}
			case "tab":
				if inPara {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					para.WriteByte('\n')
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				inPara = false
				text := strings.TrimSpace(para.String())
				if text == "" {
					continue
				}
				if tableDepth > 0 {
					cell = append(cell, text)
				} else {
					lines = append(lines, text)
				}
			case "tc":
				if tableDepth == 1 {
					row = append(row, strings.Join(cell, " "))
				}
			case "tr":
				if tableDepth == 1 && strings.TrimSpace(strings.Join(row, "")) != "" {
					lines = append(lines, strings.Join(row, " | "))
				}
			case "tbl":
				tableDepth--
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
