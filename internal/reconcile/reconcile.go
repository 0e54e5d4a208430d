// Package reconcile merges the current text of an edited rendered view back
// into the structure model. Text is the only thing an edit can change; table
// metadata, headers, and identities are carried over verbatim from the prior
// model.
package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"docufix/api/internal/docmodel"
	"docufix/api/internal/gaps"
	"docufix/api/internal/render"
	"docufix/api/internal/util"
)

// ErrUnparsableView means the view contained no identifiable nodes. The
// caller gets the prior model back unchanged.
var ErrUnparsableView = errors.New("reconcile: no identifiable nodes in view")

type Changes struct {
	Updated      []string `json:"updated,omitempty"`       // node IDs whose text changed
	AppendedRows []string `json:"appended_rows,omitempty"` // node IDs of first cell in each new row
	Rejected     []string `json:"rejected,omitempty"`      // protected nodes whose replacement was refused
}

func (c Changes) Empty() bool {
	return len(c.Updated) == 0 && len(c.AppendedRows) == 0 && len(c.Rejected) == 0
}

// Summary renders a short human-readable account for audit records.
func (c Changes) Summary() string {
	if c.Empty() {
		return "no changes"
	}
	parts := []string{}
	if n := len(c.Updated); n > 0 {
		parts = append(parts, fmt.Sprintf("%d node(s) updated", n))
	}
	if n := len(c.AppendedRows); n > 0 {
		parts = append(parts, fmt.Sprintf("%d row(s) added", n))
	}
	if n := len(c.Rejected); n > 0 {
		parts = append(parts, fmt.Sprintf("%d protected node(s) left unchanged", n))
	}
	return strings.Join(parts, ", ")
}

type pendingCell struct {
	loc  render.Location
	text string
}

// Apply merges view into a copy of prior and reports what changed. It never
// mutates prior: on any error the prior model is returned as-is.
//
// Rules, in order of application per node:
//   - header row 0 and table metadata are copied verbatim from prior;
//   - section-heading paragraphs refuse replacements that look like internal
//     header identifiers;
//   - a body cell or paragraph whose marker-stripped text differs is
//     rewritten and reclassified, capturing WasGap on its first edit;
//   - nodes absent from the view are left untouched;
//   - cells addressed one past the current row or column count append a new
//     row or cell with fresh identities and empty gap state.
func Apply(prior *docmodel.Model, view render.View) (*docmodel.Model, Changes, error) {
	var changes Changes

	identifiable := 0
	for _, n := range view.Nodes {
		if _, err := render.ParseNodeID(n.ID); err == nil {
			identifiable++
		}
	}
	if identifiable == 0 {
		return prior, changes, ErrUnparsableView
	}

	next := prior.Clone()
	var appends []pendingCell

	for _, n := range view.Nodes {
		loc, err := render.ParseNodeID(n.ID)
		if err != nil {
			continue
		}
		text := render.StripMarkers(n.Text)
		switch loc.Kind {
		case render.KindParagraph:
			if loc.Para >= len(next.Paragraphs) {
				continue
			}
			p := &next.Paragraphs[loc.Para]
			if text == p.Text {
				continue
			}
			if p.IsSectionHeading && docmodel.IsHeaderIdentifier(text) {
				changes.Rejected = append(changes.Rejected, n.ID)
				continue
			}
			p.Text = text
			changes.Updated = append(changes.Updated, n.ID)
		case render.KindCell:
			if loc.Table >= len(next.Tables) {
				continue
			}
			t := &next.Tables[loc.Table]
			if loc.Row == 0 {
				continue
			}
			if loc.Row >= len(t.Rows) {
				appends = append(appends, pendingCell{loc: loc, text: text})
				continue
			}
			row := &t.Rows[loc.Row]
			if loc.Col >= len(row.Cells) {
				if loc.Col == len(row.Cells) {
					row.Cells = append(row.Cells, newCell(loc.Row, loc.Col, text))
					changes.Updated = append(changes.Updated, n.ID)
				}
				continue
			}
			cell := &row.Cells[loc.Col]
			if text == cell.Text {
				continue
			}
			if !cell.Edited {
				cell.WasGap = cell.Flags.HasGap
				cell.Edited = true
			}
			cell.Text = text
			cell.Flags = gaps.Classify(text)
			changes.Updated = append(changes.Updated, n.ID)
		}
	}

	applyAppends(next, appends, &changes)
	return next, changes, nil
}

func newCell(row, col int, text string) docmodel.Cell {
	return docmodel.Cell{
		ID:       util.NewID("cell"),
		RowIndex: row,
		ColIndex: col,
		Text:     text,
		Flags:    gaps.Classify(text),
	}
}

// applyAppends adds explicitly appended rows. Rows must extend the table
// contiguously; anything beyond a gap in row numbering is dropped.
func applyAppends(m *docmodel.Model, cells []pendingCell, changes *Changes) {
	byTable := map[int][]pendingCell{}
	for _, pc := range cells {
		byTable[pc.loc.Table] = append(byTable[pc.loc.Table], pc)
	}
	tables := make([]int, 0, len(byTable))
	for ti := range byTable {
		tables = append(tables, ti)
	}
	sort.Ints(tables)

	for _, ti := range tables {
		t := &m.Tables[ti]
		byRow := map[int][]pendingCell{}
		for _, pc := range byTable[ti] {
			byRow[pc.loc.Row] = append(byRow[pc.loc.Row], pc)
		}
		for len(byRow) > 0 {
			ri := len(t.Rows)
			rowCells, ok := byRow[ri]
			if !ok {
				break
			}
			delete(byRow, ri)
			sort.Slice(rowCells, func(i, j int) bool { return rowCells[i].loc.Col < rowCells[j].loc.Col })
			row := docmodel.Row{}
			for _, pc := range rowCells {
				for len(row.Cells) < pc.loc.Col {
					row.Cells = append(row.Cells, newCell(ri, len(row.Cells), ""))
				}
				row.Cells = append(row.Cells, newCell(ri, pc.loc.Col, pc.text))
			}
			t.Rows = append(t.Rows, row)
			changes.AppendedRows = append(changes.AppendedRows, render.CellNodeID(ti, ri, 0))
		}
	}
}
