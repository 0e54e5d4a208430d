// Package render projects a structure model into a flat, identity-tagged view
// for display and in-place editing. Node identities are assigned at projection
// time and treated as opaque keys by everything downstream.
package render

import (
	"fmt"
	"strings"

	"docufix/api/internal/docmodel"
)

const (
	KindParagraph = "paragraph"
	KindCell      = "cell"
)

// Visual markers appended to Display for flagged and recently-filled cells.
// They never appear in Text, which is what identity and fingerprint
// comparisons run on.
const (
	markGap    = "⚠" // warning sign
	markFilled = "✓" // check mark
)

type Node struct {
	ID      string `json:"id"`                // positional identity, reconstructible
	CellID  string `json:"cell_id,omitempty"` // stable model cell id, empty for paragraphs
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Display string `json:"display"`
	Table   int    `json:"table"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Para    int    `json:"para"`
}

type View struct {
	Nodes []Node `json:"nodes"`
}

// Lookup returns the node with the given positional identity.
func (v View) Lookup(id string) (Node, bool) {
	for _, n := range v.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func CellNodeID(table, row, col int) string {
	return fmt.Sprintf("table-%d-row-%d-cell-%d", table, row, col)
}

func ParagraphNodeID(index int) string {
	return fmt.Sprintf("para-%d", index)
}

// Location is a parsed positional identity.
type Location struct {
	Kind  string
	Table int
	Row   int
	Col   int
	Para  int
}

// ParseNodeID reconstructs a location from an identity string. The round-trip
// check rejects trailing garbage and negative indexes.
func ParseNodeID(id string) (Location, error) {
	var loc Location
	if strings.HasPrefix(id, "para-") {
		if _, err := fmt.Sscanf(id, "para-%d", &loc.Para); err != nil || ParagraphNodeID(loc.Para) != id || loc.Para < 0 {
			return Location{}, fmt.Errorf("render: bad paragraph id %q", id)
		}
		loc.Kind = KindParagraph
		return loc, nil
	}
	if strings.HasPrefix(id, "table-") {
		if _, err := fmt.Sscanf(id, "table-%d-row-%d-cell-%d", &loc.Table, &loc.Row, &loc.Col); err != nil ||
			CellNodeID(loc.Table, loc.Row, loc.Col) != id || loc.Table < 0 || loc.Row < 0 || loc.Col < 0 {
			return Location{}, fmt.Errorf("render: bad cell id %q", id)
		}
		loc.Kind = KindCell
		return loc, nil
	}
	return Location{}, fmt.Errorf("render: unrecognized node id %q", id)
}

// StripMarkers removes the gap/filled markers so edited text can be compared
// against stored text.
func StripMarkers(s string) string {
	if !strings.Contains(s, markGap) && !strings.Contains(s, markFilled) {
		return s
	}
	s = strings.ReplaceAll(s, markGap, "")
	s = strings.ReplaceAll(s, markFilled, "")
	return strings.TrimRight(s, " ")
}

// Project flattens the model into view nodes in document order: paragraphs
// first, then every table row by row. Header row 0 always displays the
// table's ColumnHeaders text, never the stored cell text.
func Project(m *docmodel.Model) View {
	var nodes []Node
	for _, p := range m.Paragraphs {
		nodes = append(nodes, Node{
			ID:      ParagraphNodeID(p.Index),
			Kind:    KindParagraph,
			Text:    p.Text,
			Display: p.Text,
			Para:    p.Index,
		})
	}
	for ti, t := range m.Tables {
		for ri, row := range t.Rows {
			for ci, cell := range row.Cells {
				text := cell.Text
				if ri == 0 && ci < len(t.ColumnHeaders) {
					text = t.ColumnHeaders[ci]
				}
				display := text
				if ri > 0 {
					if cell.Flags.HasGap {
						display = text + " " + markGap
					} else if cell.Filled() {
						display = text + " " + markFilled
					}
				}
				nodes = append(nodes, Node{
					ID:      CellNodeID(ti, ri, ci),
					CellID:  cell.ID,
					Kind:    KindCell,
					Text:    text,
					Display: display,
					Table:   ti,
					Row:     ri,
					Col:     ci,
				})
			}
		}
	}
	return View{Nodes: nodes}
}
