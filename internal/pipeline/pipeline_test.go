package pipeline

import (
	"context"
	"errors"
	"testing"

	"ic-authenticator/internal/datasheet"
	"ic-authenticator/internal/ocr"
	"ic-authenticator/pkg/geometry"

	"gocv.io/x/gocv"
)

// staticDetector returns the same detections for every pass, regardless of
// the variant or rotation it is handed.
type staticDetector struct {
	detections []ocr.Detection
}

func (d *staticDetector) Detect(gocv.Mat) ([]ocr.Detection, error) {
	return d.detections, nil
}

func (d *staticDetector) DetectFragments(gocv.Mat) ([]ocr.Detection, error) {
	return d.detections, nil
}

type staticFinder struct {
	record datasheet.Record
	err    error
}

func (f *staticFinder) Find(context.Context, string, string) (datasheet.Record, error) {
	return f.record, f.err
}

func detection(text string, y int, conf float64) ocr.Detection {
	return ocr.Detection{
		Text:       text,
		Quad:       geometry.QuadFromRect(geometry.RectInt{X: 10, Y: y, Width: 80, Height: 12}),
		Confidence: conf,
	}
}

func testMat(t *testing.T) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(60, 60, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return m
}

func fixedClock(a *Authenticator) {
	a.Suspicion.CurrentYear = 2026
}

func TestAuthenticateGenuinePart(t *testing.T) {
	det := &staticDetector{detections: []ocr.Detection{
		detection("ATMEGA328P", 10, 0.9),
		detection("AU", 25, 0.85),
		detection("0835", 40, 0.85),
	}}
	finder := &staticFinder{record: datasheet.Record{
		Found:  true,
		URL:    "https://example.com/atmega328p.pdf",
		Source: datasheet.SourcePDFDownloaded,
	}}

	a := New(det, finder)
	fixedClock(a)

	res, err := a.Authenticate(context.Background(), testMat(t))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.PartNumber != "ATMEGA328P" {
		t.Errorf("part = %q, want ATMEGA328P", res.PartNumber)
	}
	if res.Manufacturer != "Microchip" {
		t.Errorf("manufacturer = %q, want Microchip", res.Manufacturer)
	}
	if res.Confidence < 80 {
		t.Errorf("confidence = %d, want >= 80 (suspicion %+v)", res.Confidence, res.Suspicion)
	}
	if res.Verdict.String() != "AUTHENTIC" {
		t.Errorf("verdict = %s, want AUTHENTIC", res.Verdict)
	}
	if !res.DatasheetFound || !res.MarkingValid {
		t.Errorf("datasheetFound=%v markingValid=%v, want both true", res.DatasheetFound, res.MarkingValid)
	}
}

func TestOldDateCodeOverridesBonuses(t *testing.T) {
	// CY8C with a 2007 date code: the family red flag must sink the verdict
	// even with a confirmed datasheet, valid marking, and high OCR quality.
	det := &staticDetector{detections: []ocr.Detection{
		detection("CY8C29666-24PVXI", 10, 0.9),
		detection("0710", 25, 0.9),
		detection("KOREA", 40, 0.9),
	}}
	finder := &staticFinder{record: datasheet.Record{
		Found:  true,
		Source: datasheet.SourcePDFDownloaded,
	}}

	a := New(det, finder)
	fixedClock(a)

	res, err := a.Authenticate(context.Background(), testMat(t))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.Verdict.String() != "LIKELY COUNTERFEIT" {
		t.Errorf("verdict = %s (confidence %d), want LIKELY COUNTERFEIT",
			res.Verdict, res.Confidence)
	}
	if !res.Suspicion.IsSuspicious() {
		t.Error("suspicion report not flagged suspicious")
	}
}

func TestEmptyImageIsTerminalError(t *testing.T) {
	a := New(&staticDetector{}, nil)

	empty := gocv.NewMat()
	defer empty.Close()

	res, err := a.Authenticate(context.Background(), empty)
	if !errors.Is(err, ErrImageLoad) {
		t.Fatalf("err = %v, want ErrImageLoad", err)
	}
	if res.Verdict.String() != "ERROR" || res.Confidence != 0 {
		t.Errorf("result = verdict %s confidence %d, want ERROR/0", res.Verdict, res.Confidence)
	}
}

func TestNoPartNumberIsTerminalError(t *testing.T) {
	det := &staticDetector{detections: []ocr.Detection{
		detection("KOREA", 10, 0.9),
		detection("A4QQ", 25, 0.9),
		detection("ZZTOP", 40, 0.9),
	}}

	a := New(det, nil)
	fixedClock(a)

	res, err := a.Authenticate(context.Background(), testMat(t))
	if !errors.Is(err, ErrNoPartNumber) {
		t.Fatalf("err = %v, want ErrNoPartNumber", err)
	}
	if res.Verdict.String() != "ERROR" {
		t.Errorf("verdict = %s, want ERROR", res.Verdict)
	}
	if res.Transcript == "" {
		t.Error("transcript must be preserved for diagnostics")
	}
}

func TestFinderFailureDegrades(t *testing.T) {
	det := &staticDetector{detections: []ocr.Detection{
		detection("ATMEGA328P", 10, 0.9),
		detection("AU", 25, 0.85),
		detection("0835", 40, 0.85),
	}}
	finder := &staticFinder{err: errors.New("lookup timed out")}

	a := New(det, finder)
	fixedClock(a)

	res, err := a.Authenticate(context.Background(), testMat(t))
	if err != nil {
		t.Fatalf("finder failure must not fail the pipeline: %v", err)
	}
	if res.DatasheetFound {
		t.Error("datasheetFound = true after lookup failure")
	}
	if res.Verdict.String() == "ERROR" {
		t.Error("lookup failure must degrade, not error")
	}
}

func TestAuthenticateFileMissing(t *testing.T) {
	a := New(&staticDetector{}, nil)
	res, err := a.AuthenticateFile(context.Background(), "/nonexistent/chip.png")
	if !errors.Is(err, ErrImageLoad) {
		t.Fatalf("err = %v, want ErrImageLoad", err)
	}
	if res.Verdict.String() != "ERROR" {
		t.Errorf("verdict = %s, want ERROR", res.Verdict)
	}
}
