package ocr

import (
	"bytes"
	"image"
	"image/png"

	"github.com/rotisserie/eris"
	"golang.org/x/image/draw"
)

// Normalize converts img to 8-bit grayscale, upscaling it so it is at least
// minWidth pixels wide. Aspect ratio is preserved; minWidth <= 0 disables scaling.
func Normalize(img image.Image, minWidth int) *image.Gray {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()

	if minWidth > 0 && w > 0 && w < minWidth {
		h = h * minWidth / w
		w = minWidth
		gray := image.NewGray(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(gray, gray.Bounds(), img, src, draw.Src, nil)
		return gray
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(gray, gray.Bounds(), img, src.Min, draw.Src)
	return gray
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, eris.Wrap(err, "ocr: encode png")
	}
	return buf.Bytes(), nil
}
