package export

import (
	"fmt"
	"html"
	"strings"

	"docufix/api/internal/docmodel"
)

// ModelToHTML renders a document model as an HTML fragment. Section headings
// become <h2>, other paragraphs <p>. Table header rows come from the frozen
// column headers; body cells with unresolved gaps get the "gap" class and
// resolved ones the "filled" class so the stylesheet can highlight them.
func ModelToHTML(m *docmodel.Model) string {
	if m == nil {
		return ""
	}

	var b strings.Builder

	for _, p := range m.Paragraphs {
		text := html.EscapeString(p.Text)
		if p.IsSectionHeading {
			fmt.Fprintf(&b, "<h2>%s</h2>\n", text)
		} else {
			fmt.Fprintf(&b, "<p>%s</p>\n", text)
		}
	}

	for _, t := range m.Tables {
		fmt.Fprintf(&b, "<h3>%s</h3>\n", html.EscapeString(t.Name))
		b.WriteString("<table>\n<tr>\n")
		for _, h := range t.ColumnHeaders {
			fmt.Fprintf(&b, "<th>%s</th>\n", html.EscapeString(h))
		}
		b.WriteString("</tr>\n")
		for ri, row := range t.Rows {
			if ri == 0 {
				continue
			}
			b.WriteString("<tr>\n")
			for _, cell := range row.Cells {
				b.WriteString(renderCell(cell))
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</table>\n")
	}

	return b.String()
}

func renderCell(c docmodel.Cell) string {
	text := html.EscapeString(c.Text)
	switch {
	case c.Flags.HasGap:
		return fmt.Sprintf(`<td class="gap">%s</td>`+"\n", text)
	case c.Filled():
		return fmt.Sprintf(`<td class="filled">%s</td>`+"\n", text)
	default:
		return fmt.Sprintf("<td>%s</td>\n", text)
	}
}

// GapSummaryHTML renders the unresolved-gap list appended to exports when
// the caller asks for it.
func GapSummaryHTML(m *docmodel.Model) string {
	records := m.GapRecords()
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<h2>Unresolved Items</h2>\n<ul>\n")
	for _, r := range records {
		fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(r.Description))
	}
	b.WriteString("</ul>\n")
	return b.String()
}
