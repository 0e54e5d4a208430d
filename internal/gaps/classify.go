// Package gaps classifies cell and paragraph text as missing, placeholder,
// or resolved data.
package gaps

import "strings"

// Flags holds the independent gap category bits for a piece of text.
// HasGap is the OR of the bits, except when explicit prior flags force it.
type Flags struct {
	IsPending bool `json:"is_pending"`
	IsNull    bool `json:"is_null"`
	IsMissing bool `json:"is_missing"`
	IsEmpty   bool `json:"is_empty"`
	HasGap    bool `json:"has_gap"`
}

// pendingSubstrings match anywhere in the lowercased text; "pending" alone
// must match the whole trimmed value.
var pendingSubstrings = []string{"(pending)", "pending)", "(pending"}

var nullTokens = map[string]struct{}{
	"null": {},
	"none": {},
	"nil":  {},
	"n/a":  {},
	"na":   {},
	"n.a.": {},
}

var missingTokens = map[string]struct{}{
	"missing":          {},
	"not provided":     {},
	"not available":    {},
	"unavailable":      {},
	"tbd":              {},
	"t.b.d.":           {},
	"to be determined": {},
	"tba":              {},
	"to be announced":  {},
	"unknown":          {},
	"unk":              {},
	"":                 {},
}

// Classify derives gap flags from the current text alone. It is total: text
// that matches no token set classifies as "no gap".
func Classify(text string) Flags {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	var f Flags
	if lower == "pending" {
		f.IsPending = true
	} else {
		for _, pattern := range pendingSubstrings {
			if strings.Contains(lower, pattern) {
				f.IsPending = true
				break
			}
		}
	}
	if _, ok := nullTokens[lower]; ok {
		f.IsNull = true
	}
	if _, ok := missingTokens[lower]; ok {
		f.IsMissing = true
	}
	if trimmed == "" {
		f.IsEmpty = true
	}
	f.HasGap = f.IsPending || f.IsNull || f.IsMissing || f.IsEmpty
	return f
}

// ClassifyWithPrior classifies text, letting explicit prior flags
// short-circuit HasGap to true. The category bits still reflect only the
// current text.
func ClassifyWithPrior(text string, prior *Flags) Flags {
	f := Classify(text)
	if prior != nil && prior.HasGap {
		f.HasGap = true
	}
	return f
}

// Filled reports whether a cell qualifies for the "fixed by the user" visual
// state: it previously had a gap, its current classification is clean, and
// the trimmed text is non-empty. Gap state is sticky only forward from the
// first observed gap; cells that never had one are never "filled".
func Filled(wasGap bool, text string, f Flags) bool {
	return wasGap && !f.HasGap && strings.TrimSpace(text) != ""
}
