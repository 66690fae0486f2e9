package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jung-kurt/gofpdf"
)

const PDFContentType = "application/pdf"

var ErrEmptyDesign = errors.New("render: design has no text")

type block struct {
	level int // 0 for body text, 1-3 for headings
	text  string
}

// designBlocks flattens design markup into headings and paragraphs, in document order.
func designBlocks(html string) ([]block, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("render: parse design: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var blocks []block
	doc.Find("h1, h2, h3, h4, p, li, button, td").Each(func(_ int, s *goquery.Selection) {
		// Nested matches are reported through their innermost element.
		if s.Find("h1, h2, h3, h4, p, li, td").Length() > 0 {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		level := 0
		switch goquery.NodeName(s) {
		case "h1":
			level = 1
		case "h2":
			level = 2
		case "h3", "h4":
			level = 3
		}
		blocks = append(blocks, block{level: level, text: text})
	})

	if len(blocks) == 0 {
		if text := strings.Join(strings.Fields(doc.Text()), " "); text != "" {
			blocks = append(blocks, block{text: text})
		}
	}
	return blocks, nil
}

// DesignPDF renders the text of a design as an A4 PDF.
func DesignPDF(title, html string) ([]byte, error) {
	blocks, err := designBlocks(html)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, ErrEmptyDesign
	}
	if strings.TrimSpace(title) == "" {
		title = "Marketing Design"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("copyflow", false)
	pdf.AddPage()

	sizes := map[int]float64{1: 18, 2: 15, 3: 13}
	for _, b := range blocks {
		if b.level > 0 {
			pdf.SetFont("Helvetica", "B", sizes[b.level])
			pdf.MultiCell(0, 8, tr(b.text), "", "L", false)
			pdf.Ln(2)
			continue
		}
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 6, tr(b.text), "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
