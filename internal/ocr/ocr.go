// Package ocr wraps Tesseract for reading text printed on IC packages.
package ocr

import (
	"fmt"
	"strings"

	"ic-authenticator/pkg/geometry"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// MarkingChars is the character set for chip-marking OCR.
// Excludes lowercase to reduce confusion (0/O, 1/I, etc.)
const MarkingChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-/."

// Detection is a single OCR word detection.
type Detection struct {
	Text       string
	Quad       geometry.Quad
	Confidence float64 // 0..1
}

// Detector is the OCR capability consumed by the pipeline. Implementations
// must tolerate binarized, grayscale, and enhanced inputs; internal failures
// surface as an error that callers treat as zero detections.
type Detector interface {
	// Detect runs a word-level OCR pass over the image.
	Detect(img gocv.Mat) ([]Detection, error)

	// DetectFragments runs a cheap low-threshold pass that keeps partial
	// words and noise-adjacent fragments. Used by orientation scoring,
	// where raw alphanumeric yield matters more than clean tokens.
	DetectFragments(img gocv.Mat) ([]Detection, error)
}

// Engine provides OCR functionality using Tesseract.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates a new OCR engine.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Disable dictionary-based word correction - part numbers aren't English
	// words. This prevents Tesseract from "correcting" ATMEGA328P to
	// something else.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")
	_ = client.SetVariable("language_model_penalty_non_freq_dict_word", "0")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Detect runs a word-level OCR pass over the image. Confidence filtering is
// left to the caller; only empty and single-glyph words are dropped.
func (e *Engine) Detect(img gocv.Mat) ([]Detection, error) {
	return e.detect(img, 2)
}

// DetectFragments runs a low-threshold pass that keeps single characters
// and low-confidence fragments.
func (e *Engine) DetectFragments(img gocv.Mat) ([]Detection, error) {
	return e.detect(img, 1)
}

func (e *Engine) detect(img gocv.Mat, minLen int) ([]Detection, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// Sparse text: chip markings are scattered short lines, not paragraphs.
	if err := e.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetWhitelist(MarkingChars); err != nil {
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get boxes: %w", err)
	}

	var results []Detection
	for _, box := range boxes {
		text := strings.TrimSpace(strings.ToUpper(box.Word))
		if len(text) < minLen {
			continue
		}

		results = append(results, Detection{
			Text: text,
			Quad: geometry.QuadFromRect(geometry.RectInt{
				X:      box.Box.Min.X,
				Y:      box.Box.Min.Y,
				Width:  box.Box.Dx(),
				Height: box.Box.Dy(),
			}),
			Confidence: box.Confidence / 100.0,
		})
	}

	return results, nil
}
