// Package datecode decodes IC chip date codes printed on package markings.
package datecode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Decoded represents a decoded date code.
type Decoded struct {
	Year      int    // Full year (e.g., 2007)
	Week      int    // Week number for YYWW codes, 0 for bare years
	WeekValid bool   // False when the week field is out of range (e.g., 99)
	Format    string // "YYWW" or "YYYY"
	Raw       string // Original code as found in the transcript
}

// String returns a human-readable representation.
func (d Decoded) String() string {
	if d.Format == "YYYY" {
		return fmt.Sprintf("%d", d.Year)
	}
	if !d.WeekValid {
		return fmt.Sprintf("%d, invalid week %d", d.Year, d.Week)
	}
	return fmt.Sprintf("%d, week %d", d.Year, d.Week)
}

// DecodeYYWW decodes a standard YYWW date code (2-digit year, 2-digit week).
// Century rule: YY > 50 reads as 19YY, otherwise 20YY. Week numbers outside
// 1-53 are decoded anyway with WeekValid=false so callers can flag them
// instead of silently dropping the code.
// Examples: 0710 = 2007 week 10, 8923 = 1989 week 23.
func DecodeYYWW(code string) *Decoded {
	if len(code) != 4 {
		return nil
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return nil
		}
	}

	yy, _ := strconv.Atoi(code[0:2])
	ww, _ := strconv.Atoi(code[2:4])

	year := 2000 + yy
	if yy > 50 {
		year = 1900 + yy
	}

	return &Decoded{
		Year:      year,
		Week:      ww,
		WeekValid: ww >= 1 && ww <= 53,
		Format:    "YYWW",
		Raw:       code,
	}
}

// decodeBareYear decodes a marking that is simply a 4-digit year (1990-2099).
func decodeBareYear(code string) *Decoded {
	if len(code) != 4 {
		return nil
	}
	y, err := strconv.Atoi(code)
	if err != nil || y < 1990 || y > 2099 {
		return nil
	}
	return &Decoded{
		Year:      y,
		WeekValid: true,
		Format:    "YYYY",
		Raw:       code,
	}
}

// fourDigitPattern matches isolated 4-digit runs in a transcript.
var fourDigitPattern = regexp.MustCompile(`\b(\d{4})\b`)

// ExtractAll finds every 4-digit date-code candidate in OCR text.
// Runs that read as a plausible calendar year (1990-2099) decode as bare
// years; everything else decodes as YYWW. A code like 9999 therefore comes
// back as 1999 with an invalid week rather than being discarded.
func ExtractAll(text string) []Decoded {
	text = strings.ToUpper(text)

	var out []Decoded
	for _, m := range fourDigitPattern.FindAllString(text, -1) {
		if d := decodeBareYear(m); d != nil {
			out = append(out, *d)
			continue
		}
		if d := DecodeYYWW(m); d != nil {
			out = append(out, *d)
		}
	}
	return out
}

// HasYYWW reports whether the transcript contains at least one well-formed
// YYWW code (valid week). Used by the marking-conformance check.
func HasYYWW(text string) bool {
	for _, d := range ExtractAll(text) {
		if d.Format == "YYWW" && d.WeekValid {
			return true
		}
	}
	return false
}

// HasBareYear reports whether the transcript contains a bare 4-digit year.
func HasBareYear(text string) bool {
	for _, d := range ExtractAll(text) {
		if d.Format == "YYYY" {
			return true
		}
	}
	return false
}
