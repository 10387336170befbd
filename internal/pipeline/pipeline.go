// Package pipeline wires the authentication stages together.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"ic-authenticator/internal/counterfeit"
	"ic-authenticator/internal/datasheet"
	"ic-authenticator/internal/extract"
	"ic-authenticator/internal/imageio"
	"ic-authenticator/internal/ocr"
	"ic-authenticator/internal/orientation"
	"ic-authenticator/internal/partid"
	"ic-authenticator/internal/variant"
	"ic-authenticator/internal/verify"

	"gocv.io/x/gocv"
)

// Terminal pipeline failures. Everything else degrades to lower confidence
// instead of surfacing as an error.
var (
	ErrImageLoad    = errors.New("image could not be loaded")
	ErrNoPartNumber = errors.New("no part number detected")
)

// Result is the terminal artifact of one authentication run. It is never
// mutated after construction.
type Result struct {
	PartNumber     string
	Manufacturer   string
	DatasheetFound bool
	MarkingValid   bool
	Suspicion      counterfeit.Report
	Confidence     int // 0..100
	Verdict        verify.Verdict

	// Diagnostics for the consumer's display.
	Transcript       string
	Tokens           []extract.DetectionToken
	OrientationAngle int
	WinningVariant   string
	Thumbnails       []*image.RGBA
}

// Authenticator runs the pipeline. The Detector and Finder handles may be
// shared with other Authenticators; everything else is created fresh per
// call, so concurrent calls on independent images share no mutable state.
type Authenticator struct {
	Detector  ocr.Detector
	Finder    datasheet.Finder
	Library   *partid.Library
	Suspicion counterfeit.Config

	// MaxDimension caps the working image size before OCR.
	MaxDimension int
}

// New creates an Authenticator with the default library and thresholds.
func New(det ocr.Detector, finder datasheet.Finder) *Authenticator {
	if finder == nil {
		finder = datasheet.NotFoundFinder{}
	}
	return &Authenticator{
		Detector:     det,
		Finder:       finder,
		Library:      partid.DefaultLibrary(),
		Suspicion:    counterfeit.DefaultConfig(),
		MaxDimension: imageio.MaxDimension,
	}
}

// AuthenticateFile loads an image from disk and authenticates it.
func (a *Authenticator) AuthenticateFile(ctx context.Context, path string) (*Result, error) {
	img, err := imageio.Load(path)
	if err != nil {
		img.Close()
		return errorResult(""), fmt.Errorf("%w: %s: %v", ErrImageLoad, path, err)
	}
	defer img.Close()
	return a.Authenticate(ctx, img)
}

// Authenticate runs the full pipeline over one decoded image. It always
// returns a well-formed Result; the error is non-nil only for the two
// terminal failures, and the Result then carries the ERROR verdict with
// whatever transcript was recovered.
func (a *Authenticator) Authenticate(ctx context.Context, img gocv.Mat) (*Result, error) {
	if img.Empty() {
		return errorResult(""), ErrImageLoad
	}

	capped := imageio.CapSize(img, a.MaxDimension)
	defer capped.Close()

	oriented, angle := orientation.Select(capped, a.Detector)
	defer oriented.Close()

	gray := imageio.ToGray(oriented)
	defer gray.Close()

	variants := variant.Generate(gray)
	defer variant.CloseAll(variants)

	ex := extract.Run(variants, a.Detector)

	cand := a.Library.Identify(ex.Transcript, ex.Tokens)
	if cand == nil {
		res := errorResult(ex.Transcript)
		res.Tokens = ex.Tokens
		res.OrientationAngle = angle
		res.WinningVariant = ex.VariantName
		res.Thumbnails = ex.Thumbnails
		return res, ErrNoPartNumber
	}

	record := a.findDatasheet(ctx, cand)
	markingValid := datasheet.ValidateMarking(ex.Transcript, record.Marking)

	report := counterfeit.Evaluate(counterfeit.Input{
		Transcript:         ex.Transcript,
		Tokens:             ex.Tokens,
		PartNumber:         cand.PartNumber(),
		PrefixKey:          cand.PrefixKey,
		Manufacturer:       cand.Manufacturer,
		DatasheetConfirmed: record.Source.Confirmed(),
		Marking:            record.Marking,
	}, a.Suspicion)

	confidence := verify.Score(verify.Context{
		PartIdentified:  true,
		DatasheetSource: record.Source,
		MarkingValid:    markingValid,
		OCRConfidence:   ex.AverageConfidence,
		Suspicion:       report,
	})

	return &Result{
		PartNumber:       cand.PartNumber(),
		Manufacturer:     cand.Manufacturer,
		DatasheetFound:   record.Found,
		MarkingValid:     markingValid,
		Suspicion:        report,
		Confidence:       confidence,
		Verdict:          verify.Classify(confidence),
		Transcript:       ex.Transcript,
		Tokens:           ex.Tokens,
		OrientationAngle: angle,
		WinningVariant:   ex.VariantName,
		Thumbnails:       ex.Thumbnails,
	}, nil
}

// findDatasheet consults the external finder. A lookup error or timeout is
// evidence of nothing: it reads as not-found, never as a pipeline failure.
func (a *Authenticator) findDatasheet(ctx context.Context, cand *partid.Candidate) datasheet.Record {
	record, err := a.Finder.Find(ctx, cand.PartNumber(), cand.Manufacturer)
	if err != nil {
		fmt.Printf("Datasheet lookup failed for %s: %v\n", cand.PartNumber(), err)
		return datasheet.Record{Source: datasheet.SourceNone}
	}
	if !record.Found {
		record.Source = datasheet.SourceNone
	}
	return record
}

func errorResult(transcript string) *Result {
	return &Result{
		Verdict:    verify.VerdictError,
		Confidence: 0,
		Transcript: transcript,
	}
}
