package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"copyflow-be/internal/anonymizer"
	"copyflow-be/pkg/langdetect"
	"copyflow-be/pkg/llm"
)

var templateExamples = map[string]string{
	"modern": `<div style="font-family:Roboto,sans-serif;border-radius:12px;overflow:hidden">
<header style="background:linear-gradient(135deg,#ff6c00,#e55a00);color:#fff;padding:2rem;text-align:center"><h1>[TITLE]</h1></header>
<main style="padding:2rem"><p>[BODY]</p></main>
<footer style="text-align:center;padding:1rem"><a style="background:#ff6c00;color:#fff;padding:.8rem 2rem;border-radius:24px">[CTA]</a></footer></div>`,
	"classic": `<table width="600" style="font-family:Georgia,serif"><tr><td style="border-bottom:3px solid #ff6c00"><h1>[TITLE]</h1></td></tr>
<tr><td><p>[BODY]</p></td></tr><tr><td align="center"><b>[CTA]</b></td></tr></table>`,
	"minimal": `<div style="font-family:Arial,sans-serif;max-width:600px"><h2>[TITLE]</h2><p>[BODY]</p><p><strong>[CTA]</strong></p></div>`,
}

// LLMGateway runs generation and scoring on a local model. Brand keywords and
// personal data are masked before the prompt leaves the process.
type LLMGateway struct {
	provider llm.LLMProvider
	anon     *anonymizer.Anonymizer
}

var _ Gateway = &LLMGateway{}

func NewLLMGateway(provider llm.LLMProvider, anon *anonymizer.Anonymizer) *LLMGateway {
	if anon == nil {
		anon = anonymizer.New(nil)
	}
	return &LLMGateway{provider: provider, anon: anon}
}

func (g *LLMGateway) ask(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	history := llm.WithSystem([]llm.Message{{Role: "user", Content: prompt}}, systemPrompt)
	return g.provider.Chat(ctx, history, opts...)
}

func (g *LLMGateway) GenerateCopy(ctx context.Context, req CopyRequest) (Copy, error) {
	masked, mapping := g.anon.Anonymize(req.Briefing, req.Keywords...)

	out, err := g.ask(ctx, fmt.Sprintf(copyPrompt, masked), llm.WithTemperature(0.7))
	if err != nil {
		return Copy{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	text := strings.TrimSpace(mapping.Restore(out))
	if text == "" {
		return Copy{}, fmt.Errorf("%w: empty copy", ErrMalformedResponse)
	}
	return Copy{Text: text, Source: SourceLLM}, nil
}

func (g *LLMGateway) GenerateDesign(ctx context.Context, req DesignRequest) (Design, error) {
	masked, mapping := g.anon.Anonymize(req.Copy, req.Keywords...)

	example, ok := templateExamples[req.Template]
	if !ok {
		example = templateExamples["modern"]
	}

	language := langdetect.DesignLanguage(req.Language)
	prompt := fmt.Sprintf(designPrompt, example, masked, language)
	out, err := g.ask(ctx, prompt, llm.WithTemperature(0.4))
	if err != nil {
		return Design{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	html := stripCodeFence(mapping.Restore(out))
	if html == "" {
		return Design{}, fmt.Errorf("%w: empty design", ErrMalformedResponse)
	}
	return Design{HTML: html, Language: language, Source: SourceLLM}, nil
}

func (g *LLMGateway) CompareFiles(ctx context.Context, a, b Document) (Comparison, error) {
	return g.CompareContent(ctx, ContentComparison{Briefing: a.Content, Copy: b.Content, Type: ComparisonCopyDesign})
}

func (g *LLMGateway) CompareContent(ctx context.Context, req ContentComparison) (Comparison, error) {
	texts, mapping := g.anon.AnonymizeAll([]string{req.Briefing, req.Copy}, req.Keywords...)

	prompt, err := comparisonPrompt(req.Type, texts[0], texts[1])
	if err != nil {
		return Comparison{}, err
	}

	out, err := g.ask(ctx, prompt, llm.WithTemperature(0.1), llm.WithJSON())
	if err != nil {
		return Comparison{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	report, err := parseReport(out)
	if err != nil {
		return Comparison{}, err
	}
	restored, _ := mapping.RestoreAny(report).(map[string]any)

	score, ok := scoreOf(restored, "similarity_score")
	if !ok {
		return Comparison{}, fmt.Errorf("%w: missing similarity_score", ErrMalformedResponse)
	}
	return comparisonFromReport(restored, score, SourceLLM), nil
}

func (g *LLMGateway) GenerateFromComparison(ctx context.Context, a, b Document) (Copy, error) {
	texts, mapping := g.anon.AnonymizeAll([]string{a.Content, b.Content})

	prompt := fmt.Sprintf(fromComparisonPrompt, a.Name, texts[0], b.Name, texts[1])
	out, err := g.ask(ctx, prompt, llm.WithTemperature(0.7))
	if err != nil {
		return Copy{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	text := strings.TrimSpace(mapping.Restore(out))
	if text == "" {
		return Copy{}, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}
	return Copy{Text: text, Source: SourceLLM}, nil
}

// parseReport pulls the first JSON object out of a model reply.
func parseReport(out string) (map[string]any, error) {
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedResponse)
	}

	var report map[string]any
	if err := json.Unmarshal([]byte(out[start:end+1]), &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return report, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
