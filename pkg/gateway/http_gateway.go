package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"copyflow-be/pkg/langdetect"
)

// HTTPGateway calls the remote content backend.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

var _ Gateway = &HTTPGateway{}

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type copyResponse struct {
	Copy    string `json:"copy"`
	Output  string `json:"output"`
	Content string `json:"content"`
	Error   string `json:"error"`
}

func (r copyResponse) text() string {
	for _, s := range []string{r.Copy, r.Output, r.Content} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

type designResponse struct {
	HTML         string         `json:"html"`
	Output       string         `json:"output"`
	DesignedCopy string         `json:"designed_copy"`
	Metrics      *DesignMetrics `json:"metrics"`
	Error        string         `json:"error"`
}

type filesResponse struct {
	Similarity    *int   `json:"similarity"`
	ContentMatch  *int   `json:"contentMatch"`
	Structure     *int   `json:"structure"`
	Compatibility *int   `json:"compatibility"`
	Error         string `json:"error"`
}

type contentResponse struct {
	Success bool           `json:"success"`
	Result  map[string]any `json:"result"`
	Error   string         `json:"error"`
}

func (g *HTTPGateway) GenerateCopy(ctx context.Context, req CopyRequest) (Copy, error) {
	var resp copyResponse
	if err := g.postJSON(ctx, "/api/generate-copy", map[string]any{"briefing": req.Briefing}, &resp); err != nil {
		return Copy{}, err
	}
	if resp.Error != "" {
		return Copy{}, &APIError{Status: http.StatusOK, Message: resp.Error}
	}
	text := resp.text()
	if text == "" {
		return Copy{}, fmt.Errorf("%w: no copy in response", ErrMalformedResponse)
	}
	return Copy{Text: text, Source: SourceRemote}, nil
}

func (g *HTTPGateway) GenerateDesign(ctx context.Context, req DesignRequest) (Design, error) {
	payload := map[string]any{
		"copy":     req.Copy,
		"template": req.Template,
		"language": langdetect.DesignCode(req.Language),
	}
	var resp designResponse
	if err := g.postJSON(ctx, "/api/generate-design", payload, &resp); err != nil {
		return Design{}, err
	}
	if resp.Error != "" {
		return Design{}, &APIError{Status: http.StatusOK, Message: resp.Error}
	}

	html := resp.HTML
	if html == "" {
		html = resp.Output
	}
	if html == "" {
		html = resp.DesignedCopy
	}
	if strings.TrimSpace(html) == "" {
		return Design{}, fmt.Errorf("%w: no design in response", ErrMalformedResponse)
	}
	return Design{HTML: html, Language: langdetect.DesignLanguage(req.Language), Metrics: resp.Metrics, Source: SourceRemote}, nil
}

func (g *HTTPGateway) CompareFiles(ctx context.Context, a, b Document) (Comparison, error) {
	var resp filesResponse
	if err := g.postJSON(ctx, "/api/compare-files", map[string]any{"file1": a, "file2": b}, &resp); err != nil {
		return Comparison{}, err
	}
	if resp.Error != "" {
		return Comparison{}, &APIError{Status: http.StatusOK, Message: resp.Error}
	}
	if resp.Similarity == nil || resp.ContentMatch == nil || resp.Structure == nil || resp.Compatibility == nil {
		return Comparison{}, fmt.Errorf("%w: missing comparison scores", ErrMalformedResponse)
	}
	return Comparison{
		Similarity:    *resp.Similarity,
		ContentMatch:  *resp.ContentMatch,
		Structure:     *resp.Structure,
		Compatibility: *resp.Compatibility,
		Source:        SourceRemote,
	}.clamped(), nil
}

// CompareContent posts the two texts as multipart form fields, as the backend expects.
func (g *HTTPGateway) CompareContent(ctx context.Context, req ContentComparison) (Comparison, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"text1":           req.Briefing,
		"text2":           req.Copy,
		"comparison_type": string(req.Type),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return Comparison{}, fmt.Errorf("gateway: write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return Comparison{}, fmt.Errorf("gateway: close form: %w", err)
	}

	var resp contentResponse
	if err := g.do(ctx, "/api/compare", w.FormDataContentType(), &body, &resp); err != nil {
		return Comparison{}, err
	}
	if resp.Error != "" {
		return Comparison{}, &APIError{Status: http.StatusOK, Message: resp.Error}
	}
	score, ok := scoreOf(resp.Result, "similarity_score")
	if !ok {
		return Comparison{}, fmt.Errorf("%w: missing similarity_score", ErrMalformedResponse)
	}
	return comparisonFromReport(resp.Result, score, SourceRemote), nil
}

func (g *HTTPGateway) GenerateFromComparison(ctx context.Context, a, b Document) (Copy, error) {
	var resp copyResponse
	if err := g.postJSON(ctx, "/api/generate-from-comparison", map[string]any{"file1": a, "file2": b}, &resp); err != nil {
		return Copy{}, err
	}
	if resp.Error != "" {
		return Copy{}, &APIError{Status: http.StatusOK, Message: resp.Error}
	}
	text := resp.text()
	if text == "" {
		return Copy{}, fmt.Errorf("%w: no content in response", ErrMalformedResponse)
	}
	return Copy{Text: text, Source: SourceRemote}, nil
}

func (g *HTTPGateway) postJSON(ctx context.Context, path string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gateway: marshal request: %w", err)
	}
	return g.do(ctx, path, "application/json", bytes.NewReader(data), out)
}

func (g *HTTPGateway) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gateway: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		case payload.Detail != "":
			msg = payload.Detail
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func scoreOf(report map[string]any, key string) (int, bool) {
	if report == nil {
		return 0, false
	}
	switch v := report[key].(type) {
	case float64:
		return int(v + 0.5), true
	case int:
		return v, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return int(f + 0.5), true
	}
	return 0, false
}

// comparisonFromReport fills the four scores from a model or backend report.
// Scores the report does not carry fall back to the overall similarity.
func comparisonFromReport(report map[string]any, similarity int, source string) Comparison {
	c := Comparison{
		Similarity:    similarity,
		ContentMatch:  similarity,
		Structure:     similarity,
		Compatibility: similarity,
		Report:        report,
		Source:        source,
	}
	if v, ok := scoreOf(report, "content_match"); ok {
		c.ContentMatch = v
	}
	if v, ok := scoreOf(report, "structure"); ok {
		c.Structure = v
	}
	if v, ok := scoreOf(report, "compatibility"); ok {
		c.Compatibility = v
	}
	return c.clamped()
}
