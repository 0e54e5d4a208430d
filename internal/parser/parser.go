// Package parser is the boundary to document codecs. The binary
// word-processing conversion is an external concern; what crosses this
// boundary is the canonical structural XML.
package parser

import (
	"context"
	"io"

	"docufix/api/internal/docmodel"
)

// Parser converts between source bytes and the structure model.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) (*docmodel.Model, error)
	Render(m *docmodel.Model) ([]byte, error)
}
