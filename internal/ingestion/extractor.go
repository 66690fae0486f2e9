// Package ingestion turns uploaded documents into text or HTML that the
// workflow pages can display, edit and send to the gateway.
//
// Every call returns a Result. Rendering callers show Result.Display() inline,
// upload callers use Result.Unwrap() and abort on error.
package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMaxSize matches the upload limit of the HTTP server.
const DefaultMaxSize int64 = 10 * 1024 * 1024

// Kind is the coarse class of a source document.
type Kind string

const (
	KindText     Kind = "text"
	KindDocument Kind = "document"
	KindImage    Kind = "image"
)

type Format string

const (
	FormatText    Format = "text"
	FormatHTML    Format = "html"
	FormatDataURI Format = "data-uri"
)

// Mode selects how HTML sources are handled. Other formats ignore it.
type Mode int

const (
	ModeRaw Mode = iota
	ModeText
	ModeArticle
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return ModeRaw, nil
	case "text":
		return ModeText, nil
	case "article":
		return ModeArticle, nil
	default:
		return ModeRaw, fmt.Errorf("%w %q", ErrUnknownMode, s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeArticle:
		return "article"
	default:
		return "raw"
	}
}

// Source is an uploaded file. It is never mutated after it has been read.
type Source struct {
	Name        string
	Data        []byte
	ContentType string
}

func (s Source) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(s.Name)), ".")
}

func (s Source) Size() int64 {
	return int64(len(s.Data))
}

type Content struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Format Format `json:"format"`
	Body   string `json:"body"`
	Pages  int    `json:"pages,omitempty"`
}

type Result struct {
	Content Content
	Err     *ExtractionError
}

func (r Result) OK() bool {
	return r.Err == nil
}

func (r Result) Unwrap() (Content, error) {
	if r.Err != nil {
		return Content{}, r.Err
	}
	return r.Content, nil
}

// Display returns either the extracted body or a message suitable for inline rendering.
func (r Result) Display() string {
	if r.Err == nil {
		return r.Content.Body
	}
	if r.Err.Kind == ErrorKindUnsupportedFileType {
		return "Unsupported file type: " + strings.TrimPrefix(strings.ToLower(filepath.Ext(r.Err.File)), ".")
	}
	return "Error processing file: " + r.Err.Error()
}

type handler struct {
	kind Kind
	run  func(e *Extractor, src Source, mode Mode) (Content, error)
}

type Extractor struct {
	maxSize  int64
	handlers map[string]handler
}

type Option func(*Extractor)

func WithMaxSize(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxSize = n
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(e)
	}

	e.handlers = map[string]handler{
		"docx": {kind: KindDocument, run: (*Extractor).docx},
		"pdf":  {kind: KindDocument, run: (*Extractor).pdf},
		"html": {kind: KindDocument, run: (*Extractor).html},
		"htm":  {kind: KindDocument, run: (*Extractor).html},
		"txt":  {kind: KindText, run: (*Extractor).text},
		"png":  {kind: KindImage, run: (*Extractor).image},
		"jpg":  {kind: KindImage, run: (*Extractor).image},
		"jpeg": {kind: KindImage, run: (*Extractor).image},
		"gif":  {kind: KindImage, run: (*Extractor).image},
		"webp": {kind: KindImage, run: (*Extractor).image},
	}
	return e
}

func (e *Extractor) Supported(name string) bool {
	_, ok := e.handlers[Source{Name: name}.Extension()]
	return ok
}

// KindOf reports the class of a file name, or false when it is unsupported.
func (e *Extractor) KindOf(name string) (Kind, bool) {
	h, ok := e.handlers[Source{Name: name}.Extension()]
	return h.kind, ok
}

func (e *Extractor) Extract(ctx context.Context, src Source, mode Mode) Result {
	if err := ctx.Err(); err != nil {
		return Result{Err: newExtractionError(ErrorKindCorrupt, src.Name, err)}
	}

	h, ok := e.handlers[src.Extension()]
	if !ok {
		return Result{Err: newExtractionError(ErrorKindUnsupportedFileType, src.Name, nil)}
	}
	if src.Size() > e.maxSize {
		return Result{Err: newExtractionError(ErrorKindTooLarge, src.Name,
			fmt.Errorf("%d bytes, limit %d", src.Size(), e.maxSize))}
	}
	if len(strings.TrimSpace(string(src.Data))) == 0 {
		return Result{Err: newExtractionError(ErrorKindEmptyContent, src.Name, nil)}
	}

	content, err := h.run(e, src, mode)
	if err != nil {
		return Result{Err: newExtractionError(ErrorKindCorrupt, src.Name, err)}
	}
	if strings.TrimSpace(content.Body) == "" {
		return Result{Err: newExtractionError(ErrorKindEmptyContent, src.Name, nil)}
	}

	content.Name = src.Name
	content.Kind = h.kind
	return Result{Content: content}
}
