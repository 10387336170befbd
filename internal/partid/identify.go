// Package partid matches OCR transcripts against known part-number families.
package partid

import (
	"fmt"
	"strings"

	"ic-authenticator/internal/extract"
)

// Candidate is one part-number match from the transcript.
// Invariants: Score >= 2 and Score equals the length of RawMatch with
// whitespace removed.
type Candidate struct {
	RawMatch     string
	PrefixKey    string
	Manufacturer string
	Score        int
}

// PartNumber returns the matched part number with whitespace stripped.
func (c *Candidate) PartNumber() string {
	return stripSpaces(c.RawMatch)
}

// confusablePrefixes maps common OCR misreads of a prefix key to the
// canonical key, for the cross-token recombination step. Whole-token repairs
// in textnorm already cover most of these; the map catches tokens that stand
// alone as a prefix and were not in digit context.
var confusablePrefixes = map[string]string{
	"ATMECA": "ATMEGA",
	"4TMEGA": "ATMEGA",
	"5TM32":  "STM32",
	"P1C":    "PIC",
	"CYBC":   "CY8C",
}

// nearbyHeightFactor defines "nearby" for recombination: two detections are
// adjacent lines of the same marking when their centers sit within this many
// text heights of each other.
const nearbyHeightFactor = 4.0

// minScore is the minimum accepted match length.
const minScore = 2

// Identify finds the best part-number candidate in the transcript.
// Cross-line recombination first rejoins part numbers that OCR split across
// two bounding boxes (prefix token + digit token); then every prefix pattern
// runs over the transcript and the synthesized strings. The highest-scoring
// match wins, ties broken by library order then discovery order. Returns nil
// when nothing scores at least 2.
func (lib *Library) Identify(transcript string, tokens []extract.DetectionToken) *Candidate {
	pool := []string{normalizeTranscript(transcript)}
	pool = append(pool, lib.recombine(tokens)...)

	var best *Candidate
	for i := range lib.Entries {
		entry := &lib.Entries[i]
		for _, text := range pool {
			for _, m := range entry.re.FindAllString(text, -1) {
				score := len(stripSpaces(m))
				if score < minScore {
					continue
				}
				if best == nil || score > best.Score {
					best = &Candidate{
						RawMatch:     m,
						PrefixKey:    entry.Key,
						Manufacturer: entry.Manufacturer,
						Score:        score,
					}
				}
			}
		}
	}

	if best != nil {
		if best.Manufacturer == "" {
			best.Manufacturer = "Unknown"
		}
		fmt.Printf("Part match: %s (%s, %s) score %d\n",
			best.PartNumber(), best.PrefixKey, best.Manufacturer, best.Score)
	}
	return best
}

// recombine synthesizes candidate strings from pairs of nearby detections
// where one token is a recognized prefix key (or a confusable variant of
// one) and the other starts with a digit. This recovers markings like
// "ATMEGA" / "328P" printed on two lines.
func (lib *Library) recombine(tokens []extract.DetectionToken) []string {
	var out []string
	for i := range tokens {
		key := lib.canonicalPrefix(tokens[i].Text)
		if key == "" {
			continue
		}
		for j := range tokens {
			if i == j {
				continue
			}
			text := strings.TrimSpace(tokens[j].Text)
			if text == "" || text[0] < '0' || text[0] > '9' {
				continue
			}
			if !nearby(tokens[i], tokens[j]) {
				continue
			}
			out = append(out, key+stripSpaces(text))
		}
	}
	return out
}

// canonicalPrefix returns the library prefix key a lone token stands for,
// or "" if it is not a prefix.
func (lib *Library) canonicalPrefix(text string) string {
	text = strings.ToUpper(strings.TrimSpace(text))
	if lib.hasKey(text) {
		return text
	}
	if canon, ok := confusablePrefixes[text]; ok && lib.hasKey(canon) {
		return canon
	}
	return ""
}

// nearby reports whether two detections are close enough to be consecutive
// lines of one marking.
func nearby(a, b extract.DetectionToken) bool {
	maxHeight := a.Quad.Height()
	if h := b.Quad.Height(); h > maxHeight {
		maxHeight = h
	}
	if maxHeight <= 0 {
		return false
	}
	return a.Quad.Center().Distance(b.Quad.Center()) <= nearbyHeightFactor*maxHeight
}

// normalizeTranscript uppercases and collapses whitespace.
func normalizeTranscript(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
