package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/provider-verify/internal/config"
	"github.com/sells-group/provider-verify/internal/ocr"
	"github.com/sells-group/provider-verify/internal/ocr/mupdf"
	"github.com/sells-group/provider-verify/internal/ocr/tesseract"
	"github.com/sells-group/provider-verify/internal/registry"
)

func newRegistryClient(c *config.Config) *registry.Client {
	return registry.NewClient(c.Registry.BaseURL,
		registry.WithTimeout(time.Duration(c.Registry.TimeoutSecs)*time.Second),
		registry.WithRateLimit(c.Registry.RateLimit),
	)
}

func newLicenseExtractor(c *config.Config) *ocr.LicenseExtractor {
	engine := tesseract.New(
		tesseract.WithLanguages(c.OCR.Languages...),
		tesseract.WithDPI(c.OCR.DPI),
	)
	return ocr.NewLicenseExtractor(mupdf.New(), engine, ocr.Options{
		DPI:      c.OCR.DPI,
		MinWidth: c.OCR.MinWidth,
		Timeout:  time.Duration(c.OCR.TimeoutSecs) * time.Second,
	})
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "create output file")
	}
	return f, f.Close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode json")
	}
	return nil
}
