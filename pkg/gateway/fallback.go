package gateway

import (
	"fmt"
	"html"
	"math/rand"
	"strings"
	"sync"
	"time"

	"copyflow-be/pkg/langdetect"
)

// CopyExcerptLength is how much of the briefing the fallback copy quotes.
const CopyExcerptLength = 300

type band struct{ lo, hi int }

type scoreBands struct {
	similarity, contentMatch, structure, compatibility band
}

var (
	sameTypeBands = scoreBands{
		similarity:    band{70, 95},
		contentMatch:  band{65, 95},
		structure:     band{75, 98},
		compatibility: band{90, 100},
	}
	mixedTypeBands = scoreBands{
		similarity:    band{40, 74},
		contentMatch:  band{35, 70},
		structure:     band{30, 69},
		compatibility: band{55, 84},
	}
)

// Fallback synthesizes placeholder results when the gateway call fails.
// Generated text is deterministic; scores are random within fixed bands.
type Fallback struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewFallback seeds the score generator from src, or from the clock when src is nil.
func NewFallback(src rand.Source) *Fallback {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Fallback{rnd: rand.New(src)}
}

func (f *Fallback) between(b band) int {
	return b.lo + f.rnd.Intn(b.hi-b.lo+1)
}

// Copy quotes the first CopyExcerptLength characters of the input under the file name.
func (f *Fallback) Copy(fileName, input string) Copy {
	if fileName == "" {
		fileName = "briefing"
	}
	excerpt := []rune(strings.TrimSpace(input))
	suffix := ""
	if len(excerpt) > CopyExcerptLength {
		excerpt = excerpt[:CopyExcerptLength]
		suffix = "..."
	}

	text := fmt.Sprintf("Marketing copy generated from %s\n\n%s%s", fileName, string(excerpt), suffix)
	return Copy{Text: text, Source: SourceFallback}
}

// Design wraps the copy in minimal styled markup: the first paragraph becomes
// the title, the rest the body, followed by a call-to-action footer. All
// caller text is escaped.
func (f *Fallback) Design(copyText, template, language string) Design {
	var paragraphs []string
	for _, p := range strings.Split(strings.ReplaceAll(copyText, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, html.EscapeString(strings.TrimSpace(p)))
		}
	}

	title := "Marketing Copy"
	body := html.EscapeString(strings.TrimSpace(copyText))
	if len(paragraphs) > 0 {
		title = paragraphs[0]
	}
	if len(paragraphs) > 1 {
		body = strings.Join(paragraphs[1:], "</p><p>")
	}
	if template == "" {
		template = "modern"
	}
	language = langdetect.DesignLanguage(language)

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="marketing-design" data-template="%s" data-language="%s">`,
		html.EscapeString(template), html.EscapeString(language))
	b.WriteString(`<header class="design-header"><h1 class="design-title">`)
	b.WriteString(title)
	b.WriteString(`</h1><div class="design-accent"></div></header>`)
	b.WriteString(`<main class="design-content"><p>`)
	b.WriteString(body)
	b.WriteString(`</p></main>`)
	b.WriteString(`<footer class="design-footer"><div class="cta-section">`)
	b.WriteString(`<button class="cta-button">Get Started Today</button>`)
	b.WriteString(`<p class="contact-info">Contact us for more information</p>`)
	b.WriteString(`</div></footer>`)
	b.WriteString(fallbackDesignStyle)
	b.WriteString(`</div>`)

	metrics := f.Metrics()
	return Design{HTML: b.String(), Language: language, Metrics: &metrics, Source: SourceFallback}
}

// Metrics returns placeholder design quality scores.
func (f *Fallback) Metrics() DesignMetrics {
	f.mu.Lock()
	defer f.mu.Unlock()
	return DesignMetrics{
		Layout:     f.between(band{85, 99}),
		Typography: f.between(band{88, 97}),
		Visual:     f.between(band{83, 94}),
		Brand:      f.between(band{90, 97}),
	}
}

// Comparison scores a file pair. Pairs of the same class score higher,
// with compatibility of at least 90.
func (f *Fallback) Comparison(a, b Document) Comparison {
	bands := mixedTypeBands
	if a.Class() == b.Class() {
		bands = sameTypeBands
	}
	return f.scores(bands)
}

// ContentComparison scores two texts, which are always of the same class.
func (f *Fallback) ContentComparison(req ContentComparison) Comparison {
	c := f.scores(sameTypeBands)
	c.Report = map[string]any{
		"similarity_score": c.Similarity,
		"comparison_type":  string(req.Type),
	}
	return c
}

func (f *Fallback) scores(bands scoreBands) Comparison {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Comparison{
		Similarity:    f.between(bands.similarity),
		ContentMatch:  f.between(bands.contentMatch),
		Structure:     f.between(bands.structure),
		Compatibility: f.between(bands.compatibility),
		Source:        SourceFallback,
	}
}

// FromComparison concatenates both documents under their names.
func (f *Fallback) FromComparison(a, b Document) Copy {
	text := fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s", a.Name, strings.TrimSpace(a.Content), b.Name, strings.TrimSpace(b.Content))
	return Copy{Text: text, Source: SourceFallback}
}

const fallbackDesignStyle = `<style>
.marketing-design{font-family:'Roboto',sans-serif;max-width:100%;margin:0 auto;background:linear-gradient(135deg,#f8f9fa 0%,#fff 100%);border-radius:12px;overflow:hidden;box-shadow:0 4px 6px rgba(0,0,0,.1)}
.design-header{background:linear-gradient(135deg,#ff6c00 0%,#e55a00 100%);color:#fff;padding:2rem;text-align:center}
.design-title{font-size:2rem;font-weight:700;margin:0}
.design-content{padding:2rem;line-height:1.6}
.design-footer{text-align:center;padding:1.5rem;background:#f1f3f5}
.cta-button{background:#ff6c00;color:#fff;border:none;padding:.8rem 2rem;border-radius:24px;font-weight:700}
</style>`
