// Package gateway talks to the service that writes copy, renders designs and
// scores document pairs, and synthesizes a local substitute when it cannot.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Result sources.
const (
	SourceRemote   = "remote"
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

var (
	ErrUnavailable       = errors.New("gateway: unavailable")
	ErrMalformedResponse = errors.New("gateway: malformed response")
	ErrUnknownComparison = errors.New("gateway: unknown comparison type")
)

// APIError is a non-2xx answer from the remote backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return ErrUnavailable }

type ComparisonType string

const (
	ComparisonCopyDesign ComparisonType = "copy_design"
	ComparisonSemantic   ComparisonType = "semantic"
	ComparisonBriefCopy  ComparisonType = "brief_copy"
)

func ParseComparisonType(s string) (ComparisonType, error) {
	switch ComparisonType(strings.TrimSpace(s)) {
	case "", ComparisonCopyDesign:
		return ComparisonCopyDesign, nil
	case ComparisonSemantic:
		return ComparisonSemantic, nil
	case ComparisonBriefCopy:
		return ComparisonBriefCopy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownComparison, s)
}

// Document is one extracted input file. It is also the compare hand-off payload.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
}

// Class groups documents for fallback scoring: text, document or image.
func (d Document) Class() string {
	if strings.HasPrefix(d.Type, "image/") {
		return "image"
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(d.Name), ".")) {
	case "png", "jpg", "jpeg", "gif", "webp":
		return "image"
	case "txt":
		return "text"
	case "html", "htm":
		return "html"
	case "":
		return "text"
	}
	return "document"
}

type CopyRequest struct {
	Briefing string
	FileName string
	// Keywords masked in addition to the built-in list.
	Keywords []string
}

type DesignRequest struct {
	Copy     string
	Template string
	// Language is a two-letter code such as FR or NL.
	Language string
	Keywords []string
}

type ContentComparison struct {
	Briefing string
	Copy     string
	Type     ComparisonType
	Keywords []string
}

type Copy struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type DesignMetrics struct {
	Layout     int `json:"layout"`
	Typography int `json:"typography"`
	Visual     int `json:"visual"`
	Brand      int `json:"brand"`
}

type Design struct {
	HTML     string         `json:"html"`
	Language string         `json:"language"`
	Metrics  *DesignMetrics `json:"metrics,omitempty"`
	Source   string         `json:"source"`
}

// Comparison scores are in [0,100].
type Comparison struct {
	Similarity    int            `json:"similarity"`
	ContentMatch  int            `json:"contentMatch"`
	Structure     int            `json:"structure"`
	Compatibility int            `json:"compatibility"`
	Report        map[string]any `json:"report,omitempty"`
	Source        string         `json:"source"`
}

func (c Comparison) Scores() map[string]int {
	return map[string]int{
		"similarity":    c.Similarity,
		"contentMatch":  c.ContentMatch,
		"structure":     c.Structure,
		"compatibility": c.Compatibility,
	}
}

func (c Comparison) clamped() Comparison {
	c.Similarity = clamp(c.Similarity)
	c.ContentMatch = clamp(c.ContentMatch)
	c.Structure = clamp(c.Structure)
	c.Compatibility = clamp(c.Compatibility)
	return c
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Gateway is a single request/response call per operation, without retries.
type Gateway interface {
	GenerateCopy(ctx context.Context, req CopyRequest) (Copy, error)
	GenerateDesign(ctx context.Context, req DesignRequest) (Design, error)
	CompareFiles(ctx context.Context, a, b Document) (Comparison, error)
	CompareContent(ctx context.Context, req ContentComparison) (Comparison, error)
	GenerateFromComparison(ctx context.Context, a, b Document) (Copy, error)
}
