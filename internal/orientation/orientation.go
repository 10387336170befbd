// Package orientation finds the rotation at which package text reads upright.
package orientation

import (
	"fmt"
	"image"

	"ic-authenticator/internal/ocr"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

// Angles tried, in preference order. Ties keep the earliest, so an upright
// photo never gets rotated on equal evidence.
var Angles = []int{0, 90, 180, 270}

// Select tries the four right-angle rotations of the input image, runs a
// cheap low-threshold OCR pass on each, and returns the rotation with the
// highest weighted alphanumeric yield together with its angle. A failed OCR
// pass scores that angle zero; if every angle fails, the original image is
// returned unchanged at angle 0. The caller owns the returned mat.
func Select(img gocv.Mat, det ocr.Detector) (gocv.Mat, int) {
	bestAngle := 0
	bestScore := -1.0

	for _, angle := range Angles {
		rotated := Rotate(img, angle)
		score := scoreRotation(rotated, det)
		rotated.Close()

		if score > bestScore {
			bestScore = score
			bestAngle = angle
		}
	}

	fmt.Printf("Orientation: best angle %d (score %.1f)\n", bestAngle, bestScore)
	return Rotate(img, bestAngle), bestAngle
}

// scoreRotation runs the fragment OCR pass on a contrast-enhanced copy and
// sums alphanumericCount x confidence over detections with at least two
// alphanumeric characters (single glyphs are mostly noise).
func scoreRotation(img gocv.Mat, det ocr.Detector) float64 {
	gray := gocv.NewMat()
	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}
	defer gray.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
	defer clahe.Close()
	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	defer enhanced.Close()

	detections, err := det.DetectFragments(enhanced)
	if err != nil {
		return 0
	}

	scores := make([]float64, 0, len(detections))
	for _, d := range detections {
		n := alphanumericCount(d.Text)
		if n < 2 {
			continue
		}
		scores = append(scores, float64(n)*d.Confidence)
	}
	return floats.Sum(scores)
}

func alphanumericCount(s string) int {
	n := 0
	for _, c := range s {
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			n++
		}
	}
	return n
}

// Rotate rotates an image by the specified degrees (0, 90, 180, 270).
// The caller owns the returned mat.
func Rotate(img gocv.Mat, degrees int) gocv.Mat {
	result := gocv.NewMat()

	switch degrees {
	case 90:
		gocv.Rotate(img, &result, gocv.Rotate90Clockwise)
	case 180:
		gocv.Rotate(img, &result, gocv.Rotate180Clockwise)
	case 270:
		gocv.Rotate(img, &result, gocv.Rotate90CounterClockwise)
	default:
		result.Close()
		return img.Clone()
	}

	return result
}
