package parser

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"

	"docufix/api/internal/docmodel"
)

const documentTitle = "Document Content"

// Canonical structural XML:
//
//	<document><title>...</title><content>
//	  <paragraph>...</paragraph>
//	  <table><row><cell>...</cell></row></table>
//	</content></document>
type xmlDocument struct {
	XMLName xml.Name   `xml:"document"`
	Title   string     `xml:"title"`
	Content xmlContent `xml:"content"`
}

type xmlContent struct {
	Paragraphs []string   `xml:"paragraph"`
	Tables     []xmlTable `xml:"table"`
}

type xmlTable struct {
	Rows []xmlRow `xml:"row"`
}

type xmlRow struct {
	Cells []string `xml:"cell"`
}

// XML decodes and encodes the canonical structural format. Heading overrides
// the section-heading predicate used when building models; nil means the
// default.
type XML struct {
	Heading docmodel.HeadingPredicate
}

var _ Parser = (*XML)(nil)

func (p *XML) Parse(ctx context.Context, r io.Reader) (*docmodel.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document xml: %w", err)
	}
	raw := docmodel.RawDocument{Paragraphs: doc.Content.Paragraphs}
	for _, t := range doc.Content.Tables {
		rt := docmodel.RawTable{}
		for _, row := range t.Rows {
			rt.Rows = append(rt.Rows, row.Cells)
		}
		raw.Tables = append(raw.Tables, rt)
	}
	return docmodel.Build(raw, p.Heading), nil
}

// Render writes the model back out. The header row is sourced from
// ColumnHeaders, the authoritative header text.
func (p *XML) Render(m *docmodel.Model) ([]byte, error) {
	doc := xmlDocument{Title: documentTitle}
	for _, para := range m.Paragraphs {
		doc.Content.Paragraphs = append(doc.Content.Paragraphs, para.Text)
	}
	for _, t := range m.Tables {
		xt := xmlTable{}
		for ri, row := range t.Rows {
			xr := xmlRow{}
			for ci, cell := range row.Cells {
				text := cell.Text
				if ri == 0 && ci < len(t.ColumnHeaders) {
					text = t.ColumnHeaders[ci]
				}
				xr.Cells = append(xr.Cells, text)
			}
			xt.Rows = append(xt.Rows, xr)
		}
		doc.Content.Tables = append(doc.Content.Tables, xt)
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document xml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
