// Package verify turns the collected evidence into a confidence and verdict.
package verify

import (
	"fmt"

	"ic-authenticator/internal/counterfeit"
	"ic-authenticator/internal/datasheet"
)

// Verdict is the graded authenticity classification.
type Verdict int

const (
	VerdictError Verdict = iota
	VerdictLikelyCounterfeit
	VerdictSuspicious
	VerdictLikelyAuthentic
	VerdictAuthentic
)

func (v Verdict) String() string {
	switch v {
	case VerdictAuthentic:
		return "AUTHENTIC"
	case VerdictLikelyAuthentic:
		return "LIKELY AUTHENTIC"
	case VerdictSuspicious:
		return "SUSPICIOUS"
	case VerdictLikelyCounterfeit:
		return "LIKELY COUNTERFEIT"
	default:
		return "ERROR"
	}
}

// Context is the evidence the scorer reads. All of it is gathered by the
// pipeline before scoring; rules never mutate it.
type Context struct {
	PartIdentified  bool
	DatasheetSource datasheet.Source
	MarkingValid    bool
	OCRConfidence   float64 // 0..1
	Suspicion       counterfeit.Report
}

// Rule is one named scoring step.
type Rule struct {
	Name  string
	Delta func(Context) int
}

// Rules is the fixed, ordered scoring sequence. Keeping the additive model
// as a list makes the arithmetic auditable and lets tests target a single
// rule. The two red-flag deductions at the end are deliberately non-linear:
// they can sink an otherwise high score on their own.
var Rules = []Rule{
	{"base", func(Context) int { return 30 }},
	{"part identified", func(c Context) int {
		if c.PartIdentified {
			return 15
		}
		return 0
	}},
	{"datasheet evidence", func(c Context) int {
		switch c.DatasheetSource {
		case datasheet.SourcePDFDownloaded, datasheet.SourceLocalCache:
			return 35
		case datasheet.SourceLinkOnly:
			return 10
		case datasheet.SourceLegacyCache:
			return 5
		default:
			return -20
		}
	}},
	{"marking valid", func(c Context) int {
		if c.MarkingValid {
			return 20
		}
		return 0
	}},
	{"ocr confidence", func(c Context) int {
		switch {
		case c.OCRConfidence >= 0.80:
			return 15
		case c.OCRConfidence >= 0.60:
			return 10
		case c.OCRConfidence >= 0.40:
			return 5
		default:
			return 0
		}
	}},
	{"suspicion", func(c Context) int {
		return -c.Suspicion.Score
	}},
	{"old date code red flag", func(c Context) int {
		if c.Suspicion.HasFlag(counterfeit.FlagOldDateCode) {
			return -30
		}
		return 0
	}},
	{"brand misspelling red flag", func(c Context) int {
		if c.Suspicion.HasFlag(counterfeit.FlagMisspelledBrand) {
			return -40
		}
		return 0
	}},
}

// Score applies the rules in order and clamps the total to [0,100].
func Score(ctx Context) int {
	total := 0
	for _, r := range Rules {
		d := r.Delta(ctx)
		total += d
		if d != 0 {
			fmt.Printf("Score rule %-28s %+d -> %d\n", r.Name, d, total)
		}
	}

	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

// Classify maps a confidence to a verdict. Thresholds are inclusive lower
// bounds. VerdictError is never score-derived; it is reserved for pipeline
// failures.
func Classify(confidence int) Verdict {
	switch {
	case confidence >= 80:
		return VerdictAuthentic
	case confidence >= 60:
		return VerdictLikelyAuthentic
	case confidence >= 35:
		return VerdictSuspicious
	default:
		return VerdictLikelyCounterfeit
	}
}
