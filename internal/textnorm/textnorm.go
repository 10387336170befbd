// Package textnorm corrects known OCR character confusions in chip markings.
//
// The rules are not a spell-checker: each one targets a specific confusion
// class seen in real package photos (0/O, 5/S, 1/I/L, and a few part-family
// artifacts where Tesseract reliably misreads a fixed character run). Rules
// run in a fixed order because later rules assume earlier repairs; no rule
// output is matched by an earlier rule, so the full pass is idempotent.
package textnorm

import (
	"regexp"
	"strings"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Ordered confusion-repair rules. Family-name repairs come first so the
// digit-context rules below operate on a recognizable prefix.
var rules = []rule{
	// Vendor-prefix artifacts: family names broken by a substituted character.
	{regexp.MustCompile(`ATME[C6]A`), "ATMEGA"},
	{regexp.MustCompile(`5TM32`), "STM32"},

	// Trailing P on the ATMEGA328 family reads as 2 or Z on worn packages.
	{regexp.MustCompile(`ATMEGA328[2Z]`), "ATMEGA328P"},

	// S-runs standing in for fixed numeral sequences in the timer families.
	// Only literal S runs are rewritten so genuine 555/556 markings survive.
	{regexp.MustCompile(`NESSS`), "NE555"},
	{regexp.MustCompile(`LMSSS`), "LM556"},

	// Digit/letter look-alikes, restricted to digit context.
	{regexp.MustCompile(`(\d)O`), "${1}0"},
	{regexp.MustCompile(`O(\d)`), "0${1}"},
	{regexp.MustCompile(`(\d)S(\d)`), "${1}5${2}"},
	{regexp.MustCompile(`(\d)[IL](\d)`), "${1}1${2}"},
	{regexp.MustCompile(`(\d)B(\d)`), "${1}8${2}"},
}

// maxRulePasses bounds the per-rule fixpoint loop. Overlapping matches
// (e.g. "1S2S3") need a second pass of the same rule; real markings never
// need more than two or three.
const maxRulePasses = 4

// Normalize applies the confusion-repair rules to a single OCR string.
// It rewrites text only; bounding geometry is never touched.
func Normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, r := range rules {
		for i := 0; i < maxRulePasses; i++ {
			out := r.re.ReplaceAllString(s, r.repl)
			if out == s {
				break
			}
			s = out
		}
	}
	return s
}
