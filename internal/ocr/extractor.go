package ocr

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/provider-verify/internal/model"
)

const defaultDPI = 300

// Options tunes the extraction pipeline.
type Options struct {
	DPI      int
	MinWidth int
	// Timeout bounds a whole extraction. Zero means no extra deadline.
	Timeout time.Duration
}

// Extraction is the text recovered from a document and the license found in it.
type Extraction struct {
	FullText string `json:"full_text"`
	License  string `json:"extracted_license,omitempty"`
	Pages    int    `json:"pages"`
}

// LicenseExtractor runs rasterize -> normalize -> recognize over every page
// in ascending order, then searches the joined text for a license number.
type LicenseExtractor struct {
	rasterizer Rasterizer
	recognizer Recognizer
	opts       Options
}

// NewLicenseExtractor wires a rasterizer and recognizer into a pipeline.
func NewLicenseExtractor(r Rasterizer, rec Recognizer, opts Options) *LicenseExtractor {
	if opts.DPI <= 0 {
		opts.DPI = defaultDPI
	}
	return &LicenseExtractor{rasterizer: r, recognizer: rec, opts: opts}
}

// ExtractText runs the pipeline. A document with no text or no license is a
// valid, empty result. Unopenable input returns a *MalformedError.
func (e *LicenseExtractor) ExtractText(ctx context.Context, data []byte) (*Extraction, error) {
	if len(data) == 0 {
		return nil, &MalformedError{Err: eris.New("ocr: empty document")}
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	doc, err := e.rasterizer.Open(data)
	if err != nil {
		return nil, &MalformedError{Err: eris.Wrap(err, "ocr: open document")}
	}
	defer doc.Close() //nolint:errcheck

	pages := doc.NumPages()
	texts := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrapf(err, "ocr: cancelled before page %d", i+1)
		}

		text, err := e.page(ctx, doc, i)
		if err != nil {
			return nil, err
		}
		if text != "" {
			texts = append(texts, text)
		}
	}

	full := strings.Join(texts, "\n")
	x := &Extraction{
		FullText: full,
		License:  FindLicense(full),
		Pages:    pages,
	}
	zap.L().Debug("ocr: extraction complete",
		zap.Int("pages", pages),
		zap.Int("chars", len(full)),
		zap.Bool("license_found", x.License != ""),
	)
	return x, nil
}

func (e *LicenseExtractor) page(ctx context.Context, doc Document, i int) (string, error) {
	img, err := doc.RenderPage(i, float64(e.opts.DPI))
	if err != nil {
		return "", &MalformedError{Err: eris.Wrapf(err, "ocr: render page %d", i+1)}
	}
	if img.Bounds().Empty() {
		return "", &MalformedError{Err: eris.Errorf("ocr: page %d rendered empty", i+1)}
	}

	encoded, err := EncodePNG(Normalize(img, e.opts.MinWidth))
	if err != nil {
		return "", eris.Wrapf(err, "ocr: page %d", i+1)
	}

	text, err := e.recognizer.Recognize(ctx, encoded)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: recognize page %d", i+1)
	}
	return strings.TrimSpace(text), nil
}

// Extract runs ExtractText and folds the outcome into a LookupResult holding
// only the license.
func (e *LicenseExtractor) Extract(ctx context.Context, data []byte) model.LookupResult {
	return ToLookupResult(e.ExtractText(ctx, data))
}

// ToLookupResult maps an extraction outcome onto the lookup taxonomy. Every
// failure, malformed input included, becomes a TransientError; use
// IsMalformed on the result's Err to tell them apart.
func ToLookupResult(x *Extraction, err error) model.LookupResult {
	if err != nil {
		return model.TransientError("", err)
	}
	return model.Success(model.ProviderRecord{License: x.License})
}
