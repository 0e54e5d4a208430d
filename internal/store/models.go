package store

import (
	"encoding/json"
	"time"
)

type Document struct {
	ID               string
	Filename         string
	OriginalFilename string
	ObjectKey        string
	Status           string
	IsLocked         bool
	UploadedBy       string
	UploadedAt       time.Time
	UpdatedAt        time.Time
	Structure        json.RawMessage
}

type Submission struct {
	ID             string
	DocumentID     string
	Status         string
	SubmittedBy    string
	SubmittedAt    time.Time
	ReviewedBy     string
	ReviewedAt     *time.Time
	ReviewNotes    string
	DocumentXML    string
	Structure      json.RawMessage
	ChangesSummary string
}

// ApprovedDocument has at most one row per document. Re-approval updates the
// row in place and bumps Version.
type ApprovedDocument struct {
	ID            string
	DocumentID    string
	SectionID     string
	Version       int
	XMLObjectKey  string
	JSONObjectKey string
	ApprovedBy    string
	ApprovedAt    time.Time
	ApprovalNotes string
}

type AuditRecord struct {
	ID             int64
	DocumentID     string
	SubmissionID   *string
	Action         string
	PerformedBy    string
	PerformedAt    time.Time
	Notes          string
	Version        int
	PreviousStatus string
	NewStatus      string
}
