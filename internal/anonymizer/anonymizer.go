// Package anonymizer replaces brand keywords and personal data with stable
// placeholders before text leaves the service, and restores them afterwards.
package anonymizer

import (
	"bytes"
	"crypto/md5"
	_ "embed"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

const (
	LabelKeyword = "MOTCLE"
	LabelAddress = "ADRESSE"
	LabelPhone   = "TEL"
	LabelDate    = "DATE"
)

var (
	placeholderRe = regexp.MustCompile(`\[[A-Z]+_[0-9a-f]{6}\]`)
	addressRe     = regexp.MustCompile(`(?i)\b([A-Z][a-z]+(?:\s[A-Z][a-z]+)?,?\s+\d+\s*,\s*\d{4}\s+[A-Z][a-z]+)\b`)
	phoneRe       = regexp.MustCompile(`(?:\+|00)\d{1,3}[\s\-]?(?:\d{1,2}[\s\-]?){4,6}\d{2,4}|\b0\d(?:[ \-]?\d{2}){4,5}`)
	dateRe        = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
)

// Mapping maps placeholders back to the text they replaced.
type Mapping map[string]string

// Restore puts the original values back into text.
func (m Mapping) Restore(text string) string {
	if len(m) == 0 || text == "" {
		return text
	}
	pairs := make([]string, 0, len(m)*2)
	for token, original := range m {
		pairs = append(pairs, token, original)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// RestoreAny walks decoded JSON values and restores every string in them.
func (m Mapping) RestoreAny(v any) any {
	switch val := v.(type) {
	case string:
		return m.Restore(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = m.RestoreAny(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = m.RestoreAny(item)
		}
		return out
	default:
		return v
	}
}

func (m Mapping) merge(other Mapping) {
	for k, v := range other {
		m[k] = v
	}
}

type keywordPattern struct {
	word string
	re   *regexp.Regexp
}

type Anonymizer struct {
	keywords []keywordPattern
}

type keywordsFile struct {
	Keywords []string `yaml:"keywords"`
}

// New builds an anonymizer for the given keywords. Longer keywords are tried first.
func New(keywords []string) *Anonymizer {
	return &Anonymizer{keywords: compileKeywords(keywords)}
}

// Default returns an anonymizer with the built-in brand keyword list.
func Default() (*Anonymizer, error) {
	return Load(bytes.NewReader(defaultKeywordsYAML))
}

func Load(r io.Reader) (*Anonymizer, error) {
	var file keywordsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("anonymizer: decode keywords: %w", err)
	}
	return New(file.Keywords), nil
}

func compileKeywords(words []string) []keywordPattern {
	seen := make(map[string]bool, len(words))
	unique := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, w)
	}
	sort.SliceStable(unique, func(i, j int) bool { return len(unique[i]) > len(unique[j]) })

	patterns := make([]keywordPattern, len(unique))
	for i, w := range unique {
		patterns[i] = keywordPattern{word: w, re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(w))}
	}
	return patterns
}

// Anonymize replaces keywords, postal addresses, phone numbers and dates.
// Extra keywords apply to this call only.
func (a *Anonymizer) Anonymize(text string, extra ...string) (string, Mapping) {
	mapping := Mapping{}

	keywords := a.keywords
	if len(extra) > 0 {
		words := make([]string, 0, len(a.keywords)+len(extra))
		for _, k := range a.keywords {
			words = append(words, k.word)
		}
		keywords = compileKeywords(append(words, extra...))
	}

	for _, kw := range keywords {
		text = outsidePlaceholders(text, func(seg string) string {
			return replaceKeyword(seg, kw.re, mapping)
		})
	}
	for _, step := range []struct {
		label string
		re    *regexp.Regexp
	}{
		{LabelAddress, addressRe},
		{LabelPhone, phoneRe},
		{LabelDate, dateRe},
	} {
		text = outsidePlaceholders(text, func(seg string) string {
			return step.re.ReplaceAllStringFunc(seg, func(found string) string {
				value := strings.TrimSpace(found)
				token := Placeholder(step.label, value)
				mapping[token] = value
				return strings.Replace(found, value, token, 1)
			})
		})
	}
	return text, mapping
}

// AnonymizeAll anonymizes several texts with one shared mapping, so the same
// value gets the same placeholder in every text.
func (a *Anonymizer) AnonymizeAll(texts []string, extra ...string) ([]string, Mapping) {
	mapping := Mapping{}
	out := make([]string, len(texts))
	for i, t := range texts {
		anon, m := a.Anonymize(t, extra...)
		out[i] = anon
		mapping.merge(m)
	}
	return out, mapping
}

// Placeholder is the token for value under label: the first six hex digits
// of the MD5 of the lower-cased value.
func Placeholder(label, value string) string {
	sum := md5.Sum([]byte(strings.ToLower(value)))
	return "[" + label + "_" + hex.EncodeToString(sum[:])[:6] + "]"
}

func replaceKeyword(text string, re *regexp.Regexp, mapping Mapping) string {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if start > 0 && isASCIILetter(text[start-1]) {
			continue
		}
		if end < len(text) && isASCIILetter(text[end]) {
			continue
		}
		found := text[start:end]
		token := Placeholder(LabelKeyword, found)
		mapping[token] = found

		b.WriteString(text[prev:start])
		b.WriteString(token)
		prev = end
	}
	b.WriteString(text[prev:])
	return b.String()
}

func outsidePlaceholders(text string, fn func(string) string) string {
	locs := placeholderRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return fn(text)
	}

	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		b.WriteString(fn(text[prev:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		prev = loc[1]
	}
	b.WriteString(fn(text[prev:]))
	return b.String()
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
