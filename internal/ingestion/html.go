package ingestion

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

func (e *Extractor) html(src Source, mode Mode) (Content, error) {
	switch mode {
	case ModeText:
		text, err := StripHTML(string(src.Data))
		if err != nil {
			return Content{}, err
		}
		return Content{Format: FormatText, Body: text}, nil

	case ModeArticle:
		pageURL := &url.URL{Scheme: "file", Path: "/" + src.Name}
		parser := readability.NewParser()
		article, err := parser.Parse(bytes.NewReader(src.Data), pageURL)
		if err != nil {
			return Content{}, fmt.Errorf("readability: %w", err)
		}
		text, err := StripHTML(article.Content)
		if err != nil {
			return Content{}, err
		}
		if title := strings.TrimSpace(article.Title); title != "" && !strings.HasPrefix(text, title) {
			text = title + "\n" + text
		}
		return Content{Format: FormatText, Body: text}, nil

	default:
		return Content{Format: FormatHTML, Body: string(src.Data)}, nil
	}
}

// StripHTML drops script, style and noscript elements and returns the
// remaining text with whitespace collapsed to single spaces.
func StripHTML(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	if len(parts) == 0 {
		parts = append(parts, doc.Text())
	}

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}
