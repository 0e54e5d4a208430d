package docmodel

import "fmt"

// GapRecord is derived, never stored: a re-scan of the model materializes the
// current list on demand so it can never go stale.
type GapRecord struct {
	Kind        string `json:"kind"` // table_cell, material, equipment
	TableID     string `json:"table_id,omitempty"`
	TableName   string `json:"table_name,omitempty"`
	FieldName   string `json:"field_name"`
	Row         int    `json:"row,omitempty"`
	Col         int    `json:"col,omitempty"`
	Text        string `json:"text,omitempty"`
	Issue       string `json:"issue"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

func gapIssue(f Cell) (issue, status string) {
	switch {
	case f.Flags.IsPending:
		return "Pending", "pending"
	case f.Flags.IsNull:
		return "Null value", "null"
	case f.Flags.IsMissing && !f.Flags.IsEmpty:
		return "Missing value", "missing"
	case f.Flags.IsEmpty:
		return "Empty cell", "empty"
	}
	return "Data quality gap", "gap"
}

// GapRecords re-scans the model: every flagged body cell (header row 0 is
// excluded) plus materials missing a catalog number and equipment missing a
// usable configuration.
func (m *Model) GapRecords() []GapRecord {
	var out []GapRecord
	for _, t := range m.Tables {
		for ri, row := range t.Rows {
			if ri == 0 {
				continue
			}
			for ci, cell := range row.Cells {
				if !cell.Flags.HasGap {
					continue
				}
				field := fmt.Sprintf("Column %d", ci+1)
				if ci < len(t.ColumnHeaders) && t.ColumnHeaders[ci] != "" {
					field = t.ColumnHeaders[ci]
				}
				issue, status := gapIssue(cell)
				text := cell.Text
				if text == "" {
					text = "(empty)"
				}
				out = append(out, GapRecord{
					Kind:        "table_cell",
					TableID:     t.ID,
					TableName:   t.Name,
					FieldName:   field,
					Row:         ri,
					Col:         ci,
					Text:        text,
					Issue:       issue,
					Status:      status,
					Description: fmt.Sprintf("%s - Row %d, Field: %s - %s", t.Name, ri+1, field, issue),
				})
			}
		}
	}
	for _, mat := range m.Materials() {
		if mat.CatalogNumber != "" {
			continue
		}
		out = append(out, GapRecord{
			Kind:        "material",
			FieldName:   "catalog_number",
			Issue:       "Missing value",
			Status:      "missing",
			Description: fmt.Sprintf("Material %q - missing catalog number", mat.Name),
		})
	}
	for _, eq := range m.Equipment() {
		if eq.Configuration != "" {
			continue
		}
		out = append(out, GapRecord{
			Kind:        "equipment",
			FieldName:   "configuration",
			Issue:       "Invalid value",
			Status:      "invalid",
			Description: fmt.Sprintf("Equipment %q - missing or invalid configuration", eq.Name),
		})
	}
	return out
}

// GapCount is the number of records GapRecords would return.
func (m *Model) GapCount() int {
	return len(m.GapRecords())
}
