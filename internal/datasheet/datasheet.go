// Package datasheet defines the contract with the external datasheet finder.
//
// The finder itself (web search, scraping, PDF download) lives outside this
// system; the pipeline only reads the record it produces and never retries,
// caches, or validates network responses.
package datasheet

import (
	"context"
	"strings"
)

// Source describes how the datasheet evidence was obtained.
type Source int

const (
	SourceNone Source = iota
	SourcePDFDownloaded
	SourceLocalCache
	SourceLinkOnly
	SourceLegacyCache
)

func (s Source) String() string {
	switch s {
	case SourcePDFDownloaded:
		return "PDF Downloaded"
	case SourceLocalCache:
		return "Local Cache"
	case SourceLinkOnly:
		return "Link Only"
	case SourceLegacyCache:
		return "Legacy Cache"
	default:
		return "None"
	}
}

// Confirmed reports whether the datasheet PDF itself was obtained, as
// opposed to a bare link or product page.
func (s Source) Confirmed() bool {
	return s == SourcePDFDownloaded || s == SourceLocalCache
}

// Date-code formats a marking scheme can prescribe.
const (
	DateFormatYYWW = "YYWW"
	DateFormatYear = "YYYY"
)

// MarkingInfo is the marking-scheme detail extracted from a datasheet.
// Any field may be empty; absence of detail must never count against a part.
type MarkingInfo struct {
	DateCodeFormat   string   `json:"date_code_format,omitempty"`
	ExpectedElements []string `json:"expected_elements,omitempty"`
}

// Record is the read-only evidence produced by the finder.
type Record struct {
	Found     bool         `json:"found"`
	URL       string       `json:"url,omitempty"`
	LocalFile string       `json:"local_file,omitempty"`
	Marking   *MarkingInfo `json:"marking,omitempty"`
	Source    Source       `json:"source"`
}

// Finder locates a datasheet for a part. Implementations own their retries,
// caching, and timeouts; a caller wanting to bound a slow lookup applies a
// context deadline and treats the timeout as not-found.
type Finder interface {
	Find(ctx context.Context, partNumber, manufacturer string) (Record, error)
}

// NotFoundFinder is a Finder that never finds anything. Used when the
// surrounding application has no datasheet subsystem wired up.
type NotFoundFinder struct{}

// Find always reports no datasheet.
func (NotFoundFinder) Find(context.Context, string, string) (Record, error) {
	return Record{Source: SourceNone}, nil
}

// ValidateMarking checks the transcript against the marking scheme.
// It is deliberately lenient: nil or under-specified marking info passes,
// because a missing datasheet detail must not manufacture a false negative.
func ValidateMarking(transcript string, mi *MarkingInfo) bool {
	if mi == nil {
		return true
	}
	transcript = strings.ToUpper(transcript)

	if len(mi.ExpectedElements) > 0 {
		present := 0
		for _, el := range mi.ExpectedElements {
			if strings.Contains(transcript, strings.ToUpper(el)) {
				present++
			}
		}
		// A majority of documented elements must be readable.
		return present*2 > len(mi.ExpectedElements)
	}

	return true
}
