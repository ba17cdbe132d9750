package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/provider-verify/internal/model"
)

// fakeDocument renders page i as a (100+i)-pixel-wide image so the fake
// recognizer can tell pages apart after PNG encoding.
type fakeDocument struct {
	pages     int
	renderErr error
	emptyPage int // 1-based; 0 means none
	dpis      []float64
	closed    bool
}

func (d *fakeDocument) NumPages() int { return d.pages }

func (d *fakeDocument) RenderPage(page int, dpi float64) (image.Image, error) {
	d.dpis = append(d.dpis, dpi)
	if d.renderErr != nil {
		return nil, d.renderErr
	}
	if d.emptyPage == page+1 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0)), nil
	}
	img := image.NewRGBA(image.Rect(0, 0, 100+page, 20))
	for x := 0; x < img.Bounds().Dx(); x++ {
		img.Set(x, 0, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	}
	return img, nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

type fakeRasterizer struct {
	doc     *fakeDocument
	openErr error
}

func (r *fakeRasterizer) Open(_ []byte) (Document, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	return r.doc, nil
}

type fakeRecognizer struct {
	byWidth map[int]string
	err     error
	seen    []image.Image
}

func (r *fakeRecognizer) Recognize(_ context.Context, data []byte) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	r.seen = append(r.seen, img)
	return r.byWidth[img.Bounds().Dx()], nil
}

func TestExtractText_PagesInOrder(t *testing.T) {
	doc := &fakeDocument{pages: 3}
	rec := &fakeRecognizer{byWidth: map[int]string{
		100: "STATE MEDICAL COUNCIL\n",
		101: "",
		102: "  License No: MH-98765\nValid through 2027  ",
	}}
	ext := NewLicenseExtractor(&fakeRasterizer{doc: doc}, rec, Options{})

	x, err := ext.ExtractText(context.Background(), []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "STATE MEDICAL COUNCIL\nLicense No: MH-98765\nValid through 2027", x.FullText)
	assert.Equal(t, "MH-98765", x.License)
	assert.Equal(t, 3, x.Pages)
	assert.Equal(t, []float64{300, 300, 300}, doc.dpis, "default DPI")
	assert.True(t, doc.closed)

	for _, img := range rec.seen {
		_, isGray := img.(*image.Gray)
		assert.True(t, isGray, "recognizer should receive grayscale images")
	}
}

func TestExtractText_FirstMatchWins(t *testing.T) {
	doc := &fakeDocument{pages: 2}
	rec := &fakeRecognizer{byWidth: map[int]string{
		100: "license no: DL-1",
		101: "License No: DL-2",
	}}
	x, err := NewLicenseExtractor(&fakeRasterizer{doc: doc}, rec, Options{DPI: 150}).
		ExtractText(context.Background(), []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "DL-1", x.License)
	assert.Equal(t, []float64{150, 150}, doc.dpis)
}

func TestExtractText_NoTextIsValidEmptyResult(t *testing.T) {
	ext := NewLicenseExtractor(&fakeRasterizer{doc: &fakeDocument{pages: 2}}, &fakeRecognizer{}, Options{})

	x, err := ext.ExtractText(context.Background(), []byte("pdf"))
	require.NoError(t, err)
	assert.Empty(t, x.FullText)
	assert.Empty(t, x.License)

	res := ToLookupResult(x, nil)
	require.True(t, res.OK())
	assert.Empty(t, res.Record.License)
}

func TestExtractText_NoPages(t *testing.T) {
	ext := NewLicenseExtractor(&fakeRasterizer{doc: &fakeDocument{}}, &fakeRecognizer{}, Options{})
	x, err := ext.ExtractText(context.Background(), []byte("pdf"))
	require.NoError(t, err)
	assert.Zero(t, x.Pages)
	assert.Empty(t, x.License)
}

func TestExtractText_EmptyInputIsMalformed(t *testing.T) {
	ext := NewLicenseExtractor(&fakeRasterizer{doc: &fakeDocument{pages: 1}}, &fakeRecognizer{}, Options{})
	_, err := ext.ExtractText(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestExtractText_OpenFailureIsMalformed(t *testing.T) {
	ext := NewLicenseExtractor(&fakeRasterizer{openErr: errors.New("no pdf header")}, &fakeRecognizer{}, Options{})

	res := ext.Extract(context.Background(), []byte("not a pdf"))
	assert.Equal(t, model.LookupTransient, res.Status)
	assert.True(t, IsMalformed(res.Err))
	assert.Contains(t, res.Reason, "malformed input")
	assert.Contains(t, res.Reason, "no pdf header")
}

func TestExtractText_RenderFailureIsMalformed(t *testing.T) {
	doc := &fakeDocument{pages: 1, renderErr: errors.New("broken stream")}
	_, err := NewLicenseExtractor(&fakeRasterizer{doc: doc}, &fakeRecognizer{}, Options{}).
		ExtractText(context.Background(), []byte("pdf"))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.True(t, doc.closed)
}

func TestExtractText_EmptyPageIsMalformed(t *testing.T) {
	doc := &fakeDocument{pages: 2, emptyPage: 2}
	rec := &fakeRecognizer{byWidth: map[int]string{100: "License No: MH-1"}}
	_, err := NewLicenseExtractor(&fakeRasterizer{doc: doc}, rec, Options{}).
		ExtractText(context.Background(), []byte("pdf"))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.Contains(t, err.Error(), "page 2 rendered empty")
}

func TestExtractText_RecognizerFailureIsTransient(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("tessdata missing")}
	res := NewLicenseExtractor(&fakeRasterizer{doc: &fakeDocument{pages: 2}}, rec, Options{}).
		Extract(context.Background(), []byte("pdf"))

	assert.Equal(t, model.LookupTransient, res.Status)
	assert.False(t, IsMalformed(res.Err))
	assert.Contains(t, res.Reason, "recognize page 1")
}

func TestExtractText_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLicenseExtractor(&fakeRasterizer{doc: &fakeDocument{pages: 1}}, &fakeRecognizer{}, Options{Timeout: time.Second}).
		ExtractText(ctx, []byte("pdf"))
	require.Error(t, err)
	assert.False(t, IsMalformed(err))
}

func TestExtract_LicenseOnlyRecord(t *testing.T) {
	rec := &fakeRecognizer{byWidth: map[int]string{100: "Name: Dr. X\nLicense No: MH-98765"}}
	res := NewLicenseExtractor(&fakeRasterizer{doc: &fakeDocument{pages: 1}}, rec, Options{}).
		Extract(context.Background(), []byte("pdf"))

	require.True(t, res.OK())
	assert.Equal(t, model.ProviderRecord{License: "MH-98765"}, *res.Record)
}
