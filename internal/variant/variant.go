// Package variant produces preprocessed versions of a chip image for OCR.
package variant

import (
	"image"

	"gocv.io/x/gocv"
)

// Variant is one named preprocessing of the base image.
type Variant struct {
	Name  string
	Image gocv.Mat
}

// Variant names, in generation order.
const (
	NameContrast  = "contrast"
	NameSmoothed  = "smoothed"
	NameAdaptive  = "adaptive"
	NameSharpened = "sharpened"
	NameBinary    = "binary"
)

// Generate builds the fixed, ordered list of image variants from a grayscale
// base image. The order encodes which preprocessing most often yields a
// readable marking; it is a priority list, not adaptive. Every output is a
// single-channel mat with the same dimensions as the input, valid as OCR
// input on its own. The caller owns the returned mats (see CloseAll).
func Generate(gray gocv.Mat) []Variant {
	return []Variant{
		{NameContrast, contrastEqualized(gray)},
		{NameSmoothed, edgePreserving(gray)},
		{NameAdaptive, adaptiveBinarized(gray)},
		{NameSharpened, unsharpMasked(gray)},
		{NameBinary, otsuBinarized(gray)},
	}
}

// CloseAll releases every variant's mat.
func CloseAll(variants []Variant) {
	for i := range variants {
		variants[i].Image.Close()
	}
}

// contrastEqualized applies CLAHE (Contrast Limited Adaptive Histogram
// Equalization), which recovers low-contrast laser markings.
func contrastEqualized(gray gocv.Mat) gocv.Mat {
	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
	defer clahe.Close()

	out := gocv.NewMat()
	clahe.Apply(gray, &out)
	return out
}

// edgePreserving smooths surface texture while keeping character edges.
func edgePreserving(gray gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.BilateralFilter(gray, &out, 9, 75, 75)
	return out
}

// adaptiveBinarized thresholds locally, which handles uneven lighting
// across the package surface.
func adaptiveBinarized(gray gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &out, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinary, 31, 10)
	normalizePolarity(&out)
	return out
}

// unsharpMasked sharpens character edges via an unsharp mask.
func unsharpMasked(gray gocv.Mat) gocv.Mat {
	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{}, 3, 3, gocv.BorderDefault)
	defer blurred.Close()

	out := gocv.NewMat()
	gocv.AddWeighted(gray, 1.5, blurred, -0.5, 0, &out)
	return out
}

// otsuBinarized applies a global Otsu threshold.
func otsuBinarized(gray gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.Threshold(gray, &out, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	normalizePolarity(&out)
	return out
}

// normalizePolarity inverts a binary image when it is mostly white.
// IC markings are usually light text on a dark package; Tesseract expects
// dark text on a light background.
func normalizePolarity(binary *gocv.Mat) {
	white := gocv.CountNonZero(*binary)
	total := binary.Rows() * binary.Cols()
	if total > 0 && float64(white)/float64(total) < 0.5 {
		gocv.BitwiseNot(*binary, binary)
	}
}
