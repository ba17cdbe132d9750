// Package ocr extracts license numbers from scanned provider documents by
// rasterizing each page, normalizing it for recognition, and running OCR.
package ocr

import (
	"context"
	"errors"
	"image"
)

// Document is an opened, paginated document. Page indexes are zero-based.
type Document interface {
	NumPages() int
	RenderPage(page int, dpi float64) (image.Image, error)
	Close() error
}

// Rasterizer opens raw document bytes for page rendering.
type Rasterizer interface {
	Open(data []byte) (Document, error)
}

// Recognizer turns an encoded PNG image into text.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// MalformedError reports a document that could not be opened or parsed.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return "ocr: malformed input: " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err, or anything in its chain, is a MalformedError.
func IsMalformed(err error) bool {
	var m *MalformedError
	return errors.As(err, &m)
}
