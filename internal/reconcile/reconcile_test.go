package reconcile

import (
	"testing"

	"docufix/api/internal/docmodel"
	"docufix/api/internal/render"
)

func buildModel() *docmodel.Model {
	return docmodel.Build(docmodel.RawDocument{
		Paragraphs: []string{"Overview", "3.Equipment Configuration", "Notes"},
		Tables: []docmodel.RawTable{{
			Name: "Materials",
			Rows: [][]string{
				{"Name", "Catalog #"},
				{"Buffer", "(Pending)"},
				{"Resin", "CAT-77"},
			},
		}},
	}, nil)
}

func editNode(view render.View, id, text string) render.View {
	out := render.View{Nodes: append([]render.Node(nil), view.Nodes...)}
	for i := range out.Nodes {
		if out.Nodes[i].ID == id {
			out.Nodes[i].Text = text
		}
	}
	return out
}

func TestRoundTripNoEdits(t *testing.T) {
	prior := buildModel()
	next, changes, err := Apply(prior, render.Project(prior))
	if err != nil {
		t.Fatal(err)
	}
	if !changes.Empty() {
		t.Errorf("changes = %+v, want none", changes)
	}
	if len(next.Tables[0].Rows) != 3 || len(next.Paragraphs) != 3 {
		t.Error("round trip altered structure")
	}
	for ri, row := range next.Tables[0].Rows {
		for ci, cell := range row.Cells {
			want := prior.Tables[0].Rows[ri].Cells[ci]
			if cell.Text != want.Text || cell.ID != want.ID || cell.Flags != want.Flags {
				t.Errorf("cell (%d,%d) changed: %+v != %+v", ri, ci, cell, want)
			}
		}
	}
}

func TestCellEditReclassifiesAndCapturesWasGap(t *testing.T) {
	prior := buildModel()
	view := editNode(render.Project(prior), "table-0-row-1-cell-1", "CAT-123")
	next, changes, err := Apply(prior, view)
	if err != nil {
		t.Fatal(err)
	}
	cell := next.Tables[0].Rows[1].Cells[1]
	if cell.Text != "CAT-123" {
		t.Fatalf("text = %q", cell.Text)
	}
	if cell.Flags.IsPending || cell.Flags.HasGap {
		t.Errorf("flags = %+v, want clean", cell.Flags)
	}
	if !cell.WasGap || !cell.Filled() {
		t.Errorf("WasGap = %v, Filled = %v, want both true", cell.WasGap, cell.Filled())
	}
	if len(changes.Updated) != 1 || changes.Updated[0] != "table-0-row-1-cell-1" {
		t.Errorf("updated = %v", changes.Updated)
	}
	// The prior model is untouched.
	if prior.Tables[0].Rows[1].Cells[1].Text != "(Pending)" {
		t.Error("prior model mutated")
	}
}

func TestWasGapNotSetForCleanCell(t *testing.T) {
	prior := buildModel()
	view := editNode(render.Project(prior), "table-0-row-2-cell-1", "CAT-78")
	next, _, err := Apply(prior, view)
	if err != nil {
		t.Fatal(err)
	}
	cell := next.Tables[0].Rows[2].Cells[1]
	if cell.WasGap {
		t.Error("WasGap set for a cell that never had a gap")
	}
	if cell.Filled() {
		t.Error("cell without prior gap reported as filled")
	}
}

func TestWasGapSticky(t *testing.T) {
	prior := buildModel()
	view := editNode(render.Project(prior), "table-0-row-1-cell-1", "CAT-123")
	next, _, err := Apply(prior, view)
	if err != nil {
		t.Fatal(err)
	}
	// Second edit keeps the snapshot even though the gap is long gone.
	view = editNode(render.Project(next), "table-0-row-1-cell-1", "CAT-456")
	next, _, err = Apply(next, view)
	if err != nil {
		t.Fatal(err)
	}
	if !next.Tables[0].Rows[1].Cells[1].WasGap {
		t.Error("WasGap lost on subsequent edit")
	}
}

func TestHeaderRowNeverOverwritten(t *testing.T) {
	prior := buildModel()
	view := editNode(render.Project(prior), "table-0-row-0-cell-1", "BG_ATN")
	next, changes, err := Apply(prior, view)
	if err != nil {
		t.Fatal(err)
	}
	tbl := next.Tables[0]
	if tbl.ColumnHeaders[1] != "Catalog #" {
		t.Errorf("ColumnHeaders = %v, want unchanged", tbl.ColumnHeaders)
	}
	if tbl.Rows[0].Cells[1].Text != "Catalog #" {
		t.Errorf("header cell text = %q, want unchanged", tbl.Rows[0].Cells[1].Text)
	}
	if tbl.ID != prior.Tables[0].ID || tbl.Name != prior.Tables[0].Name {
		t.Error("table identity changed")
	}
	if !changes.Empty() {
		t.Errorf("changes = %+v, want none", changes)
	}
}

func TestProtectedHeadingRejectsIdentifierReplacement(t *testing.T) {
	prior := buildModel()
	view := editNode(render.Project(prior), "para-1", "Material_CTG #")
	next, changes, err := Apply(prior, view)
	if err != nil {
		t.Fatal(err)
	}
	if next.Paragraphs[1].Text != "3.Equipment Configuration" {
		t.Errorf("heading = %q, want unchanged", next.Paragraphs[1].Text)
	}
	if len(changes.Rejected) != 1 || changes.Rejected[0] != "para-1" {
		t.Errorf("rejected = %v", changes.Rejected)
	}
}

func TestProtectedHeadingAcceptsProseEdit(t *testing.T) {
	prior := buildModel()
	view := editNode(render.Project(prior), "para-1", "3.Equipment Setup and Checks")
	next, _, err := Apply(prior, view)
	if err != nil {
		t.Fatal(err)
	}
	if next.Paragraphs[1].Text != "3.Equipment Setup and Checks" {
		t.Errorf("heading = %q, want edited", next.Paragraphs[1].Text)
	}
	if !next.Paragraphs[1].IsSectionHeading {
		t.Error("heading lost its protected status after edit")
	}
}

func TestPartialViewIsAdditiveSafe(t *testing.T) {
	prior := buildModel()
	full := render.Project(prior)
	partial := render.View{Nodes: full.Nodes[:2]} // paragraphs only
	next, _, err := Apply(prior, partial)
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Tables) != 1 || len(next.Tables[0].Rows) != 3 {
		t.Error("nodes absent from the view were truncated")
	}
}

func TestMarkersStrippedBeforeComparison(t *testing.T) {
	prior := buildModel()
	view := render.Project(prior)
	// Send back Display (with marker) as the current text; no change expected.
	for i := range view.Nodes {
		view.Nodes[i].Text = view.Nodes[i].Display
	}
	_, changes, err := Apply(prior, view)
	if err != nil {
		t.Fatal(err)
	}
	if !changes.Empty() {
		t.Errorf("changes = %+v, want none", changes)
	}
}

func TestRowAppend(t *testing.T) {
	prior := buildModel()
	view := render.Project(prior)
	view.Nodes = append(view.Nodes,
		render.Node{ID: "table-0-row-3-cell-0", Kind: render.KindCell, Text: "Glycerol"},
		render.Node{ID: "table-0-row-3-cell-1", Kind: render.KindCell, Text: ""},
	)
	next, changes, err := Apply(prior, view)
	if err != nil {
		t.Fatal(err)
	}
	tbl := next.Tables[0]
	if len(tbl.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(tbl.Rows))
	}
	added := tbl.Rows[3]
	if len(added.Cells) != 2 || added.Cells[0].Text != "Glycerol" {
		t.Errorf("appended row = %+v", added)
	}
	if added.Cells[0].ID == "" || added.Cells[0].ID == added.Cells[1].ID {
		t.Error("appended cells need fresh distinct identities")
	}
	if added.Cells[0].WasGap || added.Cells[1].WasGap {
		t.Error("appended cells must start with empty gap history")
	}
	if !added.Cells[1].Flags.IsEmpty {
		t.Error("empty appended cell should classify as a gap")
	}
	if len(changes.AppendedRows) != 1 {
		t.Errorf("appended rows = %v", changes.AppendedRows)
	}
}

func TestNonContiguousRowAppendDropped(t *testing.T) {
	prior := buildModel()
	view := render.Project(prior)
	view.Nodes = append(view.Nodes,
		render.Node{ID: "table-0-row-5-cell-0", Kind: render.KindCell, Text: "stray"},
	)
	next, changes, err := Apply(prior, view)
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Tables[0].Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(next.Tables[0].Rows))
	}
	if len(changes.AppendedRows) != 0 {
		t.Errorf("appended = %v", changes.AppendedRows)
	}
}

func TestUnparsableViewFailsClosed(t *testing.T) {
	prior := buildModel()
	view := render.View{Nodes: []render.Node{
		{ID: "garbage", Text: "x"},
		{ID: "also-garbage", Text: "y"},
	}}
	next, changes, err := Apply(prior, view)
	if err != ErrUnparsableView {
		t.Fatalf("err = %v, want ErrUnparsableView", err)
	}
	if next != prior {
		t.Error("fail-closed must return the prior model")
	}
	if !changes.Empty() {
		t.Errorf("changes = %+v, want none", changes)
	}
}

func TestChangesSummary(t *testing.T) {
	if got := (Changes{}).Summary(); got != "no changes" {
		t.Errorf("Summary = %q", got)
	}
	c := Changes{Updated: []string{"a", "b"}, AppendedRows: []string{"r"}}
	if got := c.Summary(); got != "2 node(s) updated, 1 row(s) added" {
		t.Errorf("Summary = %q", got)
	}
}
