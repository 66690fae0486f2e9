package ingestion

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func (e *Extractor) pdf(src Source, _ Mode) (content Content, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(src.Data), src.Size())
	if err != nil {
		return Content{}, fmt.Errorf("open pdf: %w", err)
	}

	total := r.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return Content{}, fmt.Errorf("read page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimRight(text, "\n"))
	}

	return Content{
		Format: FormatText,
		Body:   strings.Join(pages, "\n"),
		Pages:  len(pages),
	}, nil
}
