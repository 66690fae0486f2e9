package ingestion

import "strings"

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\n", "<br>",
)

func (e *Extractor) text(src Source, _ Mode) (Content, error) {
	return Content{Format: FormatHTML, Body: EscapeText(string(src.Data))}, nil
}

// EscapeText escapes &, < and > and turns line breaks into <br>.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return textEscaper.Replace(s)
}
