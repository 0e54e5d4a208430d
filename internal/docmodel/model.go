// Package docmodel holds the authoritative structured representation of a
// document: paragraphs and tables of rows and cells, each carrying identity,
// text, and gap flags. The model is built once per parse and mutated only
// through reconciliation.
package docmodel

import (
	"fmt"
	"strings"
	"unicode"

	"docufix/api/internal/gaps"
	"docufix/api/internal/util"
)

type Cell struct {
	ID       string     `json:"id"`
	RowIndex int        `json:"row_index"`
	ColIndex int        `json:"col_index"`
	Text     string     `json:"text"`
	Flags    gaps.Flags `json:"gap_flags"`
	// WasGap is captured the first time the cell is edited and never
	// overwritten once set. It distinguishes "always was fine" from
	// "fixed by the user".
	WasGap bool `json:"was_gap,omitempty"`
	Edited bool `json:"edited,omitempty"`
}

// Filled reports whether the cell qualifies for the fixed-by-user state.
func (c Cell) Filled() bool {
	return gaps.Filled(c.WasGap, c.Text, c.Flags)
}

type Row struct {
	Cells []Cell `json:"cells"`
}

// Table metadata (ID, Name, ColumnHeaders) is captured at parse time and is
// never overwritten by edits. Row 0 is the header row; its display text is
// always sourced from ColumnHeaders.
type Table struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ColumnHeaders []string `json:"column_headers"`
	Rows          []Row    `json:"rows"`
}

type Paragraph struct {
	Index            int    `json:"index"`
	Text             string `json:"text"`
	IsSectionHeading bool   `json:"is_section_heading"`
}

type Model struct {
	Paragraphs []Paragraph `json:"paragraphs"`
	Tables     []Table     `json:"tables"`
}

// RawTable is the parser-facing input for one table. ID, Name and
// ColumnHeaders are optional preserved metadata from a previous parse of the
// same document; when absent they are derived during Build.
type RawTable struct {
	ID            string
	Name          string
	ColumnHeaders []string
	Rows          [][]string
}

// RawDocument is what a parser hands to Build.
type RawDocument struct {
	Paragraphs []string
	Tables     []RawTable
}

// HeadingPredicate decides whether a paragraph is a protected section
// heading. The pattern set varies between document families, so callers may
// supply their own.
type HeadingPredicate func(text string) bool

var headingKeywords = []string{
	"introduction", "scope", "purpose", "materials", "equipment",
	"method", "procedure", "results", "summary", "references",
	"verification", "configuration", "requirements", "specification",
}

// DefaultHeading matches numbered section titles ("3.Equipment
// Configuration") and longer keyword-bearing titles.
func DefaultHeading(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	limit := 5
	if len(trimmed) < limit {
		limit = len(trimmed)
	}
	for i := 0; i < limit; i++ {
		if trimmed[i] == '.' && i > 0 {
			if unicode.IsDigit(rune(trimmed[0])) {
				return true
			}
			break
		}
		if !unicode.IsDigit(rune(trimmed[i])) {
			break
		}
	}
	if len(trimmed) > 10 {
		lower := strings.ToLower(trimmed)
		for _, kw := range headingKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

var headerTokenPatterns = []string{
	"_", "#", "atn", "attn", "ctg", "bg_", "bg ", "material_", "material ",
}

// IsHeaderIdentifier reports whether text looks like an internal column
// identifier (e.g. "BG_ATN", "Material_CTG #") rather than prose. Used to
// refuse suspicious replacements for protected headings.
func IsHeaderIdentifier(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, p := range headerTokenPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Build constructs a Model from parsed raw content: headers frozen from row 0
// (unless preserved metadata supplies them), every body cell classified,
// paragraphs tagged with the heading predicate. A nil predicate means
// DefaultHeading.
func Build(raw RawDocument, heading HeadingPredicate) *Model {
	if heading == nil {
		heading = DefaultHeading
	}
	m := &Model{}
	for i, text := range raw.Paragraphs {
		m.Paragraphs = append(m.Paragraphs, Paragraph{
			Index:            i,
			Text:             text,
			IsSectionHeading: heading(text),
		})
	}
	for ti, rt := range raw.Tables {
		t := Table{ID: rt.ID, Name: rt.Name}
		if t.ID == "" {
			t.ID = util.NewID("tbl")
		}
		if t.Name == "" {
			t.Name = fmt.Sprintf("Table %d", ti+1)
		}
		t.ColumnHeaders = append([]string(nil), rt.ColumnHeaders...)
		if len(t.ColumnHeaders) == 0 && len(rt.Rows) > 0 {
			t.ColumnHeaders = append([]string(nil), rt.Rows[0]...)
		}
		for ri, rawRow := range rt.Rows {
			row := Row{Cells: make([]Cell, 0, len(rawRow))}
			for ci, text := range rawRow {
				cell := Cell{
					ID:       util.NewID("cell"),
					RowIndex: ri,
					ColIndex: ci,
					Text:     text,
				}
				if ri > 0 {
					cell.Flags = gaps.Classify(text)
				}
				row.Cells = append(row.Cells, cell)
			}
			t.Rows = append(t.Rows, row)
		}
		m.Tables = append(m.Tables, t)
	}
	return m
}

// Clone deep-copies the model so reconciliation can fail without mutating
// the prior state.
func (m *Model) Clone() *Model {
	out := &Model{
		Paragraphs: append([]Paragraph(nil), m.Paragraphs...),
		Tables:     make([]Table, len(m.Tables)),
	}
	for i, t := range m.Tables {
		ct := Table{
			ID:            t.ID,
			Name:          t.Name,
			ColumnHeaders: append([]string(nil), t.ColumnHeaders...),
			Rows:          make([]Row, len(t.Rows)),
		}
		for j, r := range t.Rows {
			ct.Rows[j] = Row{Cells: append([]Cell(nil), r.Cells...)}
		}
		out.Tables[i] = ct
	}
	return out
}
