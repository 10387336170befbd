package ocr

import (
	"image"

	"golang.org/x/image/draw"

	"gocv.io/x/gocv"
)

// Thumbnail renders a small RGBA copy of an image variant for diagnostic
// display. Returns nil if the mat cannot be converted.
func Thumbnail(img gocv.Mat, maxWidth int) *image.RGBA {
	if img.Empty() || maxWidth <= 0 {
		return nil
	}

	src, err := img.ToImage()
	if err != nil {
		return nil
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}

	w := b.Dx()
	h := b.Dy()
	if w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
