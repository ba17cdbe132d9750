// Package mupdf rasterizes PDF pages with MuPDF through go-fitz.
package mupdf

import (
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/rotisserie/eris"

	"github.com/sells-group/provider-verify/internal/ocr"
)

// Rasterizer implements ocr.Rasterizer.
type Rasterizer struct{}

// New returns a MuPDF rasterizer.
func New() Rasterizer { return Rasterizer{} }

// Open parses a PDF held in memory.
func (Rasterizer) Open(data []byte) (ocr.Document, error) {
	if len(data) == 0 {
		return nil, eris.New("mupdf: empty document")
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, eris.Wrap(err, "mupdf: open")
	}
	return &document{doc: doc}, nil
}

type document struct {
	doc *fitz.Document
}

func (d *document) NumPages() int { return d.doc.NumPage() }

func (d *document) RenderPage(page int, dpi float64) (image.Image, error) {
	img, err := d.doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, eris.Wrapf(err, "mupdf: render page %d", page+1)
	}
	return img, nil
}

func (d *document) Close() error {
	return d.doc.Close()
}
