package ingestion

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindUnsupportedFileType ErrorKind = "unsupported_file_type"
	ErrorKindEmptyContent        ErrorKind = "empty_content"
	ErrorKindTooLarge            ErrorKind = "too_large"
	ErrorKindCorrupt             ErrorKind = "corrupt"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyContent        = errors.New("document has no extractable content")
	ErrTooLarge            = errors.New("file exceeds the upload limit")
	ErrCorrupt             = errors.New("document could not be read")
	ErrUnknownMode         = errors.New("unknown extraction mode")
)

// ExtractionError is the single failure type returned by the extractor.
// errors.Is matches both the kind sentinel and the underlying library error.
type ExtractionError struct {
	Kind ErrorKind
	File string
	Err  error
}

func newExtractionError(kind ErrorKind, file string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, File: file, Err: err}
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.File, e.sentinel())
	}
	return fmt.Sprintf("%s: %v: %v", e.File, e.sentinel(), e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

func (e *ExtractionError) sentinel() error {
	switch e.Kind {
	case ErrorKindUnsupportedFileType:
		return ErrUnsupportedFileType
	case ErrorKindEmptyContent:
		return ErrEmptyContent
	case ErrorKindTooLarge:
		return ErrTooLarge
	default:
		return ErrCorrupt
	}
}
