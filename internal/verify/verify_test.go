package verify

import (
	"testing"

	"ic-authenticator/internal/counterfeit"
	"ic-authenticator/internal/datasheet"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		confidence int
		want       Verdict
	}{
		{100, VerdictAuthentic},
		{80, VerdictAuthentic},
		{79, VerdictLikelyAuthentic},
		{60, VerdictLikelyAuthentic},
		{59, VerdictSuspicious},
		{35, VerdictSuspicious},
		{34, VerdictLikelyCounterfeit},
		{0, VerdictLikelyCounterfeit},
	}
	for _, c := range cases {
		if got := Classify(c.confidence); got != c.want {
			t.Errorf("Classify(%d) = %s, want %s", c.confidence, got, c.want)
		}
	}
}

func TestScoreClamped(t *testing.T) {
	// Everything maxed: raw total 115, clamped to 100.
	high := Context{
		PartIdentified:  true,
		DatasheetSource: datasheet.SourcePDFDownloaded,
		MarkingValid:    true,
		OCRConfidence:   0.85,
	}
	if got := Score(high); got != 100 {
		t.Errorf("Score(max) = %d, want 100", got)
	}

	// Heavy suspicion plus both red flags: raw total far below zero.
	low := Context{
		DatasheetSource: datasheet.SourceNone,
		Suspicion: counterfeit.Report{
			Score: 200,
			Flags: []string{counterfeit.FlagOldDateCode, counterfeit.FlagMisspelledBrand},
		},
	}
	if got := Score(low); got != 0 {
		t.Errorf("Score(min) = %d, want 0", got)
	}
}

func TestScoreBaseline(t *testing.T) {
	// Nothing identified, no datasheet: 30 - 20 = 10.
	if got := Score(Context{DatasheetSource: datasheet.SourceNone}); got != 10 {
		t.Errorf("baseline = %d, want 10", got)
	}
}

func TestDatasheetEvidenceDeltas(t *testing.T) {
	base := Context{PartIdentified: true} // 30 + 15
	cases := []struct {
		source datasheet.Source
		want   int
	}{
		{datasheet.SourcePDFDownloaded, 45 + 35},
		{datasheet.SourceLocalCache, 45 + 35},
		{datasheet.SourceLinkOnly, 45 + 10},
		{datasheet.SourceLegacyCache, 45 + 5},
		{datasheet.SourceNone, 45 - 20},
	}
	for _, c := range cases {
		ctx := base
		ctx.DatasheetSource = c.source
		if got := Score(ctx); got != c.want {
			t.Errorf("source %s: score = %d, want %d", c.source, got, c.want)
		}
	}
}

func TestNoDatasheetCostsExactlyTwenty(t *testing.T) {
	withNone := Score(Context{PartIdentified: true, DatasheetSource: datasheet.SourceNone})
	if 45-withNone != 20 {
		t.Errorf("no-datasheet penalty = %d, want exactly 20", 45-withNone)
	}
}

func TestOCRConfidenceTiers(t *testing.T) {
	cases := []struct {
		conf float64
		want int
	}{
		{0.85, 15},
		{0.80, 15},
		{0.79, 10},
		{0.60, 10},
		{0.59, 5},
		{0.40, 5},
		{0.39, 0},
	}
	for _, c := range cases {
		ctx := Context{DatasheetSource: datasheet.SourceLinkOnly, OCRConfidence: c.conf}
		// 30 + 10 for the link, plus the tier bonus.
		if got := Score(ctx); got != 40+c.want {
			t.Errorf("conf %.2f: score = %d, want %d", c.conf, got, 40+c.want)
		}
	}
}

func TestRedFlagsDominateBonuses(t *testing.T) {
	// Full bonuses but a critical old date code: 115 - 60 - 30 = 25.
	ctx := Context{
		PartIdentified:  true,
		DatasheetSource: datasheet.SourcePDFDownloaded,
		MarkingValid:    true,
		OCRConfidence:   0.9,
		Suspicion: counterfeit.Report{
			Score: 60,
			Flags: []string{counterfeit.FlagOldDateCode + ": year 2007"},
		},
	}
	got := Score(ctx)
	if got != 25 {
		t.Errorf("score = %d, want 25", got)
	}
	if Classify(got) != VerdictLikelyCounterfeit {
		t.Errorf("verdict = %s, want LIKELY COUNTERFEIT", Classify(got))
	}
}

func TestVerdictStrings(t *testing.T) {
	if VerdictAuthentic.String() != "AUTHENTIC" {
		t.Error("bad AUTHENTIC string")
	}
	if VerdictLikelyCounterfeit.String() != "LIKELY COUNTERFEIT" {
		t.Error("bad LIKELY COUNTERFEIT string")
	}
	if VerdictError.String() != "ERROR" {
		t.Error("bad ERROR string")
	}
}
