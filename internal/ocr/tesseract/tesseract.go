// Package tesseract recognizes page images with Tesseract through gosseract.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rotisserie/eris"
)

// Engine implements ocr.Recognizer. Each call uses its own client, so an
// Engine is safe for concurrent use.
type Engine struct {
	languages     []string
	dpi           int
	clientFactory func() *gosseract.Client
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages sets the Tesseract language packs, e.g. "eng".
func WithLanguages(langs ...string) Option {
	return func(e *Engine) { e.languages = langs }
}

// WithDPI tells Tesseract the resolution the page was rendered at.
func WithDPI(dpi int) Option {
	return func(e *Engine) { e.dpi = dpi }
}

// New creates a Tesseract engine.
func New(opts ...Option) *Engine {
	e := &Engine{clientFactory: gosseract.NewClient}
	for _, o := range opts {
		o(e)
	}
	return e
}

type recognition struct {
	text string
	err  error
}

// Recognize runs OCR over one PNG image. gosseract is not context-aware, so
// the call returns early on cancellation and the client finishes in the background.
func (e *Engine) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "tesseract: recognize")
	}

	done := make(chan recognition, 1)
	go func() {
		text, err := e.recognize(png)
		done <- recognition{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", eris.Wrap(ctx.Err(), "tesseract: recognize")
	case r := <-done:
		return r.text, r.err
	}
}

func (e *Engine) recognize(png []byte) (string, error) {
	c := e.clientFactory()
	defer c.Close() //nolint:errcheck

	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", eris.Wrap(err, "tesseract: set languages")
		}
	}
	if e.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			return "", eris.Wrap(err, "tesseract: set dpi")
		}
	}
	if err := c.SetImageFromBytes(png); err != nil {
		return "", eris.Wrap(err, "tesseract: set image")
	}

	text, err := c.Text()
	if err != nil {
		return "", eris.Wrap(err, "tesseract: recognize text")
	}
	return strings.TrimSpace(text), nil
}
