package export

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"docufix/api/internal/docmodel"
)

// DataStore defines the interface for data access
type DataStore interface {
	GetDocument(ctx context.Context, id string) (DocumentInfo, error)
	GetDocumentModel(ctx context.Context, id string) (*docmodel.Model, error)
}

// DocumentInfo holds basic document metadata
type DocumentInfo struct {
	ID         string
	Filename   string
	Status     string
	UploadedBy string
	UpdatedAt  time.Time
}

// Service provides document export functionality
type Service struct {
	store      DataStore
	chromePath string
	pandocPath string
}

// NewService creates a new export service. chromePath and pandocPath may be
// empty to discover the binaries on PATH.
func NewService(store DataStore, chromePath, pandocPath string) *Service {
	return &Service{store: store, chromePath: chromePath, pandocPath: pandocPath}
}

// Export generates an export in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	docInfo, err := s.store.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	model, err := s.store.GetDocumentModel(ctx, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}

	data := TemplateData{
		Title:       docInfo.Filename,
		Status:      docInfo.Status,
		ContentHTML: template.HTML(ModelToHTML(model)),
		GapCount:    model.GapCount(),
		UploadedBy:  docInfo.UploadedBy,
		UpdatedAt:   docInfo.UpdatedAt,
	}
	if req.IncludeGaps {
		data.GapsHTML = template.HTML(GapSummaryHTML(model))
	}

	html, err := RenderDocumentHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch req.Format {
	case FormatPDF:
		return exportPDF(html, docInfo.Filename, s.chromePath)
	case FormatDOCX:
		return exportDOCX(html, docInfo.Filename, s.pandocPath)
	default:
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}
}
