// Package imageio loads chip photographs into OpenCV mats.
package imageio

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"

	"gocv.io/x/gocv"
)

// MaxDimension caps the working image size. OCR cost grows with pixel count
// and package markings stay legible well below this size.
const MaxDimension = 1600

// Load reads an image file into a BGR mat. OpenCV's decoder is tried first;
// formats it doesn't handle (notably some TIFFs) fall back to the Go image
// decoders.
func Load(path string) (gocv.Mat, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if !mat.Empty() {
		return mat, nil
	}
	mat.Close()

	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("cannot open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("cannot decode image %s: %w", path, err)
	}

	rgb, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("cannot convert image %s: %w", path, err)
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)
	return bgr, nil
}

// CapSize returns a copy of the image downscaled so that its larger dimension
// does not exceed maxDim. Images already within the cap are cloned unchanged.
// The caller owns the returned mat.
func CapSize(img gocv.Mat, maxDim int) gocv.Mat {
	w, h := img.Cols(), img.Rows()
	larger := w
	if h > larger {
		larger = h
	}
	if larger <= maxDim || larger == 0 {
		return img.Clone()
	}

	scale := float64(maxDim) / float64(larger)
	resized := gocv.NewMat()
	gocv.Resize(img, &resized, image.Point{}, scale, scale, gocv.InterpolationArea)
	return resized
}

// ToGray converts a BGR or grayscale mat to a single-channel grayscale mat.
// The caller owns the returned mat.
func ToGray(img gocv.Mat) gocv.Mat {
	if img.Channels() == 1 {
		return img.Clone()
	}
	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	return gray
}
