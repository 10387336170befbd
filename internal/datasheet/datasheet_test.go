package datasheet

import (
	"context"
	"testing"
)

func TestValidateMarkingLenientDefaults(t *testing.T) {
	if !ValidateMarking("ATMEGA328P AU 0835", nil) {
		t.Error("nil marking info must pass")
	}
	if !ValidateMarking("", &MarkingInfo{}) {
		t.Error("empty marking info must pass")
	}
	if !ValidateMarking("anything", &MarkingInfo{DateCodeFormat: DateFormatYYWW}) {
		t.Error("format-only marking info must pass (no element expectations)")
	}
}

func TestValidateMarkingElements(t *testing.T) {
	mi := &MarkingInfo{ExpectedElements: []string{"ATMEGA328P", "MICROCHIP", "E3"}}

	if !ValidateMarking("MICROCHIP ATMEGA328P 0835", mi) {
		t.Error("two of three elements present must pass")
	}
	if ValidateMarking("ATMEGA328P 0835", mi) {
		t.Error("one of three elements present must fail")
	}
	if ValidateMarking("nothing relevant", mi) {
		t.Error("no elements present must fail")
	}
}

func TestSourceConfirmed(t *testing.T) {
	if !SourcePDFDownloaded.Confirmed() || !SourceLocalCache.Confirmed() {
		t.Error("downloaded/cached PDFs are confirmed evidence")
	}
	if SourceLinkOnly.Confirmed() || SourceLegacyCache.Confirmed() || SourceNone.Confirmed() {
		t.Error("links and product pages are not confirmed evidence")
	}
}

func TestNotFoundFinder(t *testing.T) {
	rec, err := NotFoundFinder{}.Find(context.Background(), "NE555P", "Texas Instruments")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if rec.Found || rec.Source != SourceNone {
		t.Errorf("record = %+v, want not found", rec)
	}
}
