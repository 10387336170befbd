// Package counterfeit evaluates heuristic remarking/refurbishment signals.
package counterfeit

import (
	"fmt"
	"strings"
	"time"

	"ic-authenticator/internal/datasheet"
	"ic-authenticator/internal/datecode"
	"ic-authenticator/internal/extract"
)

// Critical flag prefixes. The verdict scorer applies hard deductions when
// these appear, independent of the general suspicion total.
const (
	FlagOldDateCode     = "critical: implausibly old date code"
	FlagMisspelledBrand = "critical: manufacturer name misspelled"
)

// Report accumulates suspicion. Score only ever grows during an evaluation.
type Report struct {
	Score int
	Flags []string
}

// IsSuspicious reports whether the accumulated score crosses the suspicion
// threshold.
func (r *Report) IsSuspicious() bool {
	return r.Score > 20
}

// HasFlag reports whether any flag starts with the given prefix.
func (r *Report) HasFlag(prefix string) bool {
	for _, f := range r.Flags {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

func (r *Report) add(points int, format string, args ...interface{}) {
	r.Score += points
	r.Flags = append(r.Flags, fmt.Sprintf(format, args...))
}

// Config carries the heuristic thresholds. The family minimums read as
// tuned-by-example; they are surfaced here rather than buried in the checks
// so a caller can override them.
type Config struct {
	AbsoluteMinYear  int            // any year below this is implausible outright
	DefaultMinYear   int            // oldest unsurprising year for unlisted families
	FamilyMinYears   map[string]int // prefix key -> oldest plausible year
	FutureSlackYears int            // years past today before "future dated"
	CurrentYear      int            // 0 means time.Now()
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		AbsoluteMinYear: 1985,
		DefaultMinYear:  1995,
		FamilyMinYears: map[string]int{
			// Embedded-controller families that did not exist, or were not
			// in volume production, before these years.
			"CY8C":   2010,
			"PIC":    2005,
			"ATMEGA": 2005,
			"ATTINY": 2005,
			"STM32":  2010,
			"ESP":    2014,
		},
		FutureSlackYears: 2,
	}
}

func (c Config) currentYear() int {
	if c.CurrentYear > 0 {
		return c.CurrentYear
	}
	return time.Now().Year()
}

// remarkingTerms are literal markings that imply a refurbished or remarked
// part. Legitimate factory markings never contain them.
var remarkingTerms = []string{"REFURB", "REMARK", "RECYCLED", "PULLED"}

// brandVariants maps each manufacturer to the markings its parts carry.
// Short variants are matched as whole tokens; longer ones as substrings.
var brandVariants = map[string][]string{
	"Microchip":          {"MICROCHIP", "ATMEL"},
	"Texas Instruments":  {"TEXAS INSTRUMENTS", "TI"},
	"Cypress":            {"CYPRESS"},
	"STMicroelectronics": {"STMICRO", "ST"},
	"Analog Devices":     {"ANALOG DEVICES", "MAXIM", "ADI"},
	"Espressif":          {"ESPRESSIF"},
	"NXP":                {"NXP", "PHILIPS"},
}

// brandWords are the distinctive brand words checked for OCR-proof
// misspellings (edit distance 1 without being an exact match).
var brandWords = []string{
	"MICROCHIP", "ATMEL", "TEXAS", "INSTRUMENTS", "CYPRESS",
	"ESPRESSIF", "MAXIM", "PHILIPS", "INFINEON", "TOSHIBA",
}

// Input is everything the detector looks at. It is read-only; the detector
// itself is stateless.
type Input struct {
	Transcript         string
	Tokens             []extract.DetectionToken
	PartNumber         string
	PrefixKey          string
	Manufacturer       string
	DatasheetConfirmed bool // a datasheet PDF was independently confirmed
	Marking            *datasheet.MarkingInfo
}

// Evaluate runs the fixed battery of checks. Each check adds to the score
// independently; the score is never reset mid-evaluation. Check order is
// fixed because the expected-brand check reads the running total.
func Evaluate(in Input, cfg Config) Report {
	var r Report
	transcript := strings.ToUpper(in.Transcript)

	checkMarkingScheme(&r, transcript, in.Marking)
	checkRemarkingTerms(&r, transcript)
	checkDateCodes(&r, transcript, in.PrefixKey, cfg)
	checkManufacturer(&r, transcript, in.Manufacturer, in.DatasheetConfirmed)
	checkOCRQuality(&r, in.Tokens, in.DatasheetConfirmed)

	return r
}

// checkMarkingScheme compares the transcript against the manufacturer's
// documented marking expectations, when a datasheet supplied them.
func checkMarkingScheme(r *Report, transcript string, mi *datasheet.MarkingInfo) {
	if mi == nil {
		return
	}

	switch mi.DateCodeFormat {
	case datasheet.DateFormatYYWW:
		if !datecode.HasYYWW(transcript) {
			r.add(50, "expected %s date code not found in marking", mi.DateCodeFormat)
		}
	case datasheet.DateFormatYear:
		if !datecode.HasBareYear(transcript) {
			r.add(40, "expected year marking not found")
		}
	}

	if len(mi.ExpectedElements) > 0 {
		missing := 0
		for _, el := range mi.ExpectedElements {
			if !strings.Contains(transcript, strings.ToUpper(el)) {
				missing++
			}
		}
		if missing*2 >= len(mi.ExpectedElements) {
			r.add(45, "%d of %d expected marking elements missing", missing, len(mi.ExpectedElements))
		}
	}
}

func checkRemarkingTerms(r *Report, transcript string) {
	for _, term := range remarkingTerms {
		for n := strings.Count(transcript, term); n > 0; n-- {
			r.add(40, "remarking keyword %q found in marking", term)
		}
	}
}

// checkDateCodes decodes every date code in the transcript and penalizes
// implausible years and malformed weeks.
func checkDateCodes(r *Report, transcript, prefixKey string, cfg Config) {
	now := cfg.currentYear()

	for _, d := range datecode.ExtractAll(transcript) {
		if !d.WeekValid {
			r.add(25, "invalid week %d in date code %s", d.Week, d.Raw)
			continue
		}

		switch {
		case d.Year < cfg.AbsoluteMinYear:
			r.add(60, "%s: date code %s decodes to year %d", FlagOldDateCode, d.Raw, d.Year)
		case familyMinYear(prefixKey, cfg) > 0 && d.Year < familyMinYear(prefixKey, cfg):
			r.add(60, "%s: year %d predates the %s family (earliest plausible %d)",
				FlagOldDateCode, d.Year, prefixKey, familyMinYear(prefixKey, cfg))
		case d.Year < cfg.DefaultMinYear:
			r.add(20, "date code %s decodes to unusually old year %d", d.Raw, d.Year)
		case d.Year > now+cfg.FutureSlackYears:
			r.add(30, "date code %s decodes to future year %d", d.Raw, d.Year)
		}
	}
}

func familyMinYear(prefixKey string, cfg Config) int {
	return cfg.FamilyMinYears[prefixKey]
}

// checkManufacturer looks for conflicting brand markings (a remarking tell)
// and for the expected brand being absent or misspelled.
func checkManufacturer(r *Report, transcript, manufacturer string, datasheetConfirmed bool) {
	present := map[string]bool{}
	for brand, variants := range brandVariants {
		for _, v := range variants {
			if brandMarked(transcript, v) {
				present[brand] = true
				break
			}
		}
	}

	if len(present) > 1 {
		names := make([]string, 0, len(present))
		for b := range present {
			names = append(names, b)
		}
		r.add(30, "markings from multiple manufacturers present: %s", strings.Join(names, ", "))
	}

	// Misspelled brand words are a strong remarking signal: factory marking
	// equipment does not typo its own logo text.
	for _, tok := range strings.Fields(transcript) {
		if len(tok) < 5 {
			continue
		}
		for _, word := range brandWords {
			if tok != word && editDistance1(tok, word) {
				r.add(35, "%s: %q resembles %q", FlagMisspelledBrand, tok, word)
			}
		}
	}

	// An unreadable brand is only weak evidence, and nearly meaningless once
	// a datasheet match independently confirmed the part.
	if manufacturer != "" && manufacturer != "Unknown" && r.Score > 10 {
		if !present[manufacturer] {
			penalty := 10
			if datasheetConfirmed {
				penalty = 1
			}
			r.add(penalty, "expected %s brand marking not found", manufacturer)
		}
	}
}

// brandMarked matches short brand variants as whole tokens (so "TI" doesn't
// fire inside part numbers) and longer ones as substrings.
func brandMarked(transcript, v string) bool {
	if len(v) >= 4 {
		return strings.Contains(transcript, v)
	}
	for _, tok := range strings.Fields(transcript) {
		if tok == v {
			return true
		}
	}
	return false
}

// checkOCRQuality treats poor print legibility as weak counterfeit evidence,
// scaled well down once an independent datasheet match exists.
func checkOCRQuality(r *Report, tokens []extract.DetectionToken, datasheetConfirmed bool) {
	n := len(tokens)

	if n > 0 {
		low := 0
		for _, t := range tokens {
			if t.Confidence < 0.5 {
				low++
			}
		}
		frac := float64(low) / float64(n)

		switch {
		case frac >= 0.6:
			p := 25
			if datasheetConfirmed {
				p = 5 // 25 * 0.2
			}
			r.add(p, "%d%% of detected tokens below 50%% OCR confidence", int(frac*100))
		case frac >= 0.4:
			p := 15
			if datasheetConfirmed {
				p = 3 // 15 * 0.2
			}
			r.add(p, "%d%% of detected tokens below 50%% OCR confidence", int(frac*100))
		}
	}

	if n < 3 {
		p := 20
		if datasheetConfirmed {
			p = 2 // 20 * 0.1
		}
		r.add(p, "only %d tokens detected; marking mostly unreadable", n)
	}
}

// editDistance1 reports whether two strings are exactly one edit apart
// (substitution, insertion, or deletion).
func editDistance1(a, b string) bool {
	la, lb := len(a), len(b)
	if la > lb {
		a, b = b, a
		la, lb = lb, la
	}
	if lb-la > 1 {
		return false
	}

	if la == lb {
		diff := 0
		for i := 0; i < la; i++ {
			if a[i] != b[i] {
				diff++
			}
		}
		return diff == 1
	}

	// b is one longer: a must equal b with one character removed.
	i, j, skipped := 0, 0, false
	for i < la && j < lb {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		if skipped {
			return false
		}
		skipped = true
		j++
	}
	return true
}
