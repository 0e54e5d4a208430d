// Package cursor restores the caret after a view reload. Given an anchor
// captured at save time it finds the best-matching node in the fresh view,
// or reports that no safe match exists.
package cursor

import (
	"strings"
	"unicode/utf8"

	"docufix/api/internal/render"
)

const fingerprintLen = 50

// Anchor is the ephemeral record captured on every caret move or edit.
// EditedText is the node's text at save time (the post-edit fingerprint),
// PriorText its text before the edit, ParentText the text of the node
// preceding it in the view.
type Anchor struct {
	CellID     string `json:"cell_id,omitempty"`
	Kind       string `json:"kind"`
	EditedText string `json:"edited_text,omitempty"`
	PriorText  string `json:"prior_text,omitempty"`
	ParentText string `json:"parent_text,omitempty"`
	Table      int    `json:"table"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Para       int    `json:"para"`
	Caret      int    `json:"caret"`
}

// Position is a resolved caret target in the fresh view.
type Position struct {
	NodeID string `json:"node_id"`
	Caret  int    `json:"caret"`
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// fingerprintMatch compares the first fingerprintLen bytes in either
// direction, tolerating minor reflow on one side.
func fingerprintMatch(anchor, text string) bool {
	if anchor == "" || text == "" {
		return false
	}
	return strings.HasPrefix(text, prefix(anchor, fingerprintLen)) ||
		strings.HasPrefix(anchor, prefix(text, fingerprintLen))
}

func clamp(caret int, text string) int {
	if caret < 0 {
		return 0
	}
	if n := utf8.RuneCountInString(text); caret > n {
		return n
	}
	return caret
}

// Locate resolves an anchor against a fresh view. Strategies run in order;
// the first success wins, and within a strategy ties resolve to the earliest
// node in view order, so the result is deterministic. A false return means
// no node matched safely: the caller restores scroll only and abandons the
// caret rather than guessing into the wrong node.
func Locate(a Anchor, view render.View) (Position, bool) {
	// 1. Exact identity.
	if a.CellID != "" {
		for _, n := range view.Nodes {
			if n.CellID == a.CellID {
				return Position{NodeID: n.ID, Caret: clamp(a.Caret, n.Text)}, true
			}
		}
	}

	// 2. Post-edit text is now the authoritative content.
	if a.EditedText != "" {
		for _, n := range view.Nodes {
			if n.Text == a.EditedText {
				return Position{NodeID: n.ID, Caret: clamp(a.Caret, n.Text)}, true
			}
		}
	}

	// 3. Prefix/suffix fingerprint against the pre-edit text. When several
	// nodes qualify, a parent-text match picks among them before view order
	// does.
	if a.PriorText != "" {
		var candidates []int
		for i, n := range view.Nodes {
			if fingerprintMatch(a.PriorText, n.Text) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) > 0 {
			pick := candidates[0]
			if a.ParentText != "" {
				for _, i := range candidates {
					if i > 0 && fingerprintMatch(a.ParentText, view.Nodes[i-1].Text) {
						pick = i
						break
					}
				}
			}
			n := view.Nodes[pick]
			return Position{NodeID: n.ID, Caret: clamp(a.Caret, n.Text)}, true
		}
	}

	// 4. Positional fallback.
	var id string
	if a.Kind == render.KindParagraph {
		id = render.ParagraphNodeID(a.Para)
	} else {
		id = render.CellNodeID(a.Table, a.Row, a.Col)
	}
	if n, ok := view.Lookup(id); ok {
		return Position{NodeID: n.ID, Caret: clamp(a.Caret, n.Text)}, true
	}

	return Position{}, false
}
