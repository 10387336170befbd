// Package extract runs OCR over image variants and keeps the best transcript.
package extract

import (
	"fmt"
	"image"
	"strings"

	"ic-authenticator/internal/ocr"
	"ic-authenticator/internal/textnorm"
	"ic-authenticator/internal/variant"
	"ic-authenticator/pkg/geometry"

	"gonum.org/v1/gonum/stat"
)

// DetectionToken is one retained OCR detection. The text has been through
// the confusion-repair rules; the quad is untouched from the raw detection.
type DetectionToken struct {
	Text          string
	Quad          geometry.Quad
	Confidence    float64 // 0..1
	SourceVariant string
}

// VariantResult summarizes what one image variant yielded.
type VariantResult struct {
	VariantName       string
	Tokens            []DetectionToken
	TokenCount        int
	AverageConfidence float64
}

// Result is the winning variant's transcript plus diagnostics.
type Result struct {
	VariantName       string
	Tokens            []DetectionToken
	Transcript        string
	AverageConfidence float64
	State             State
	Thumbnails        []*image.RGBA
}

// minTokenConfidence drops noise glyphs before normalization.
const minTokenConfidence = 0.08

// State of the variant search.
type State int

const (
	// Searching: no variant has met the early-exit bar yet.
	Searching State = iota
	// Satisfied: a variant met the bar and the search stopped early.
	Satisfied
	// Exhausted: every variant was tried without meeting the bar.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Exhausted:
		return "exhausted"
	default:
		return "searching"
	}
}

// shouldStop is the early-termination decision: once a variant yields at
// least three tokens at better than 25% average confidence, later variants
// rarely improve identification and only add OCR latency.
func shouldStop(tokenCount int, avgConfidence float64) bool {
	return tokenCount >= 3 && avgConfidence > 0.25
}

// maxThumbnails caps how many variant images are retained for display.
const maxThumbnails = 3

// Run tries the variants in priority order and returns the richest result.
// A variant whose OCR pass fails contributes nothing and the search
// continues. If no variant meets the early-exit bar, the best by token
// count (ties by average confidence) wins.
func Run(variants []variant.Variant, det ocr.Detector) Result {
	var best VariantResult
	state := Searching

	var thumbs []*image.RGBA

	for i, v := range variants {
		if i < maxThumbnails {
			if thumb := ocr.Thumbnail(v.Image, 320); thumb != nil {
				thumbs = append(thumbs, thumb)
			}
		}

		vr := runVariant(v, det)
		fmt.Printf("Variant %s: %d tokens, avg confidence %.2f\n",
			vr.VariantName, vr.TokenCount, vr.AverageConfidence)

		if i == 0 || betterThan(vr, best) {
			best = vr
		}

		if shouldStop(vr.TokenCount, vr.AverageConfidence) {
			state = Satisfied
			best = vr
			break
		}
	}
	if state != Satisfied {
		state = Exhausted
	}

	texts := make([]string, len(best.Tokens))
	for i, tok := range best.Tokens {
		texts[i] = tok.Text
	}

	return Result{
		VariantName:       best.VariantName,
		Tokens:            best.Tokens,
		Transcript:        strings.Join(texts, " "),
		AverageConfidence: best.AverageConfidence,
		State:             state,
		Thumbnails:        thumbs,
	}
}

// runVariant performs one OCR pass and filters the detections.
func runVariant(v variant.Variant, det ocr.Detector) VariantResult {
	vr := VariantResult{VariantName: v.Name}

	detections, err := det.Detect(v.Image)
	if err != nil {
		fmt.Printf("Variant %s: OCR failed: %v\n", v.Name, err)
		return vr
	}

	var confidences []float64
	for _, d := range detections {
		if d.Confidence <= minTokenConfidence {
			continue
		}
		text := textnorm.Normalize(d.Text)
		if len(text) < 2 {
			continue
		}
		vr.Tokens = append(vr.Tokens, DetectionToken{
			Text:          text,
			Quad:          d.Quad,
			Confidence:    d.Confidence,
			SourceVariant: v.Name,
		})
		confidences = append(confidences, d.Confidence)
	}

	vr.TokenCount = len(vr.Tokens)
	if len(confidences) > 0 {
		vr.AverageConfidence = stat.Mean(confidences, nil)
	}
	return vr
}

// betterThan ranks variant results: more tokens wins, ties go to the higher
// average confidence. Strict comparison keeps the earlier variant on a full
// tie, preserving the priority order.
func betterThan(a, b VariantResult) bool {
	if a.TokenCount != b.TokenCount {
		return a.TokenCount > b.TokenCount
	}
	return a.AverageConfidence > b.AverageConfidence
}
