package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const documentColumns = `id, filename, original_filename, object_key, status, is_locked, uploaded_by, uploaded_at, updated_at, structure`

func scanDocument(row interface{ Scan(...any) error }) (Document, error) {
	var d Document
	var structure []byte
	err := row.Scan(&d.ID, &d.Filename, &d.OriginalFilename, &d.ObjectKey, &d.Status, &d.IsLocked, &d.UploadedBy, &d.UploadedAt, &d.UpdatedAt, &structure)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("scan document: %w", err)
	}
	d.Structure = structure
	return d, nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, d Document) (Document, error) {
	query := `
		INSERT INTO documents (id, filename, original_filename, object_key, status, is_locked, uploaded_by, structure)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + documentColumns
	row := s.db.QueryRowContext(ctx, query,
		d.ID, d.Filename, d.OriginalFilename, d.ObjectKey, d.Status, d.IsLocked, d.UploadedBy, []byte(d.Structure))
	out, err := scanDocument(row)
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id=$1`, id)
	return scanDocument(row)
}

func (s *PostgresStore) ListDocuments(ctx context.Context, status string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY uploaded_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) UpdateDocumentStructure(ctx context.Context, id string, structure json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET structure=$2, updated_at=NOW() WHERE id=$1`, id, []byte(structure))
	if err != nil {
		return fmt.Errorf("update document structure: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdateDocumentState(ctx context.Context, id, status string, locked bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status=$2, is_locked=$3, updated_at=NOW() WHERE id=$1`, id, status, locked)
	if err != nil {
		return fmt.Errorf("update document state: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const submissionColumns = `id, document_id, status, submitted_by, submitted_at, reviewed_by, reviewed_at, review_notes, document_xml, structure, changes_summary`

func scanSubmission(row interface{ Scan(...any) error }) (Submission, error) {
	var sub Submission
	var structure []byte
	var reviewedBy, reviewNotes, changesSummary sql.NullString
	err := row.Scan(&sub.ID, &sub.DocumentID, &sub.Status, &sub.SubmittedBy, &sub.SubmittedAt,
		&reviewedBy, &sub.ReviewedAt, &reviewNotes, &sub.DocumentXML, &structure, &changesSummary)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	sub.ReviewedBy = reviewedBy.String
	sub.ReviewNotes = reviewNotes.String
	sub.ChangesSummary = changesSummary.String
	sub.Structure = structure
	return sub, nil
}

func (s *PostgresStore) CreateSubmission(ctx context.Context, sub Submission) (Submission, error) {
	query := `
		INSERT INTO submissions (id, document_id, status, submitted_by, document_xml, structure, changes_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + submissionColumns
	row := s.db.QueryRowContext(ctx, query,
		sub.ID, sub.DocumentID, sub.Status, sub.SubmittedBy, sub.DocumentXML, []byte(sub.Structure), sub.ChangesSummary)
	out, err := scanSubmission(row)
	if err != nil {
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=$1`, id)
	return scanSubmission(row)
}

func (s *PostgresStore) ListSubmissions(ctx context.Context, status string) ([]Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()
	var subs []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *PostgresStore) UpdateSubmissionStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	return requireRow(res)
}

const approvedColumns = `id, document_id, section_id, version, xml_object_key, json_object_key, approved_by, approved_at, approval_notes`

func scanApproved(row interface{ Scan(...any) error }) (ApprovedDocument, error) {
	var a ApprovedDocument
	var notes sql.NullString
	err := row.Scan(&a.ID, &a.DocumentID, &a.SectionID, &a.Version, &a.XMLObjectKey, &a.JSONObjectKey, &a.ApprovedBy, &a.ApprovedAt, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return ApprovedDocument{}, ErrNotFound
	}
	if err != nil {
		return ApprovedDocument{}, fmt.Errorf("scan approved document: %w", err)
	}
	a.ApprovalNotes = notes.String
	return a, nil
}

func (s *PostgresStore) GetApproved(ctx context.Context, id string) (ApprovedDocument, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+approvedColumns+` FROM approved_documents WHERE id=$1`, id)
	return scanApproved(row)
}

func (s *PostgresStore) GetApprovedByDocument(ctx context.Context, documentID string) (ApprovedDocument, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+approvedColumns+` FROM approved_documents WHERE document_id=$1`, documentID)
	return scanApproved(row)
}

func (s *PostgresStore) ListApproved(ctx context.Context) ([]ApprovedDocument, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+approvedColumns+` FROM approved_documents ORDER BY approved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list approved documents: %w", err)
	}
	defer rows.Close()
	var out []ApprovedDocument
	for rows.Next() {
		a, err := scanApproved(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ApproveParams carries everything the approval transaction writes.
type ApproveParams struct {
	ApprovedID    string // used only when this is the document's first approval
	SubmissionID  string
	DocumentID    string
	SectionID     string
	XMLObjectKey  string
	JSONObjectKey string
	ApprovedBy    string
	ApprovalNotes string
}

// ApproveTx runs the approval upsert in one transaction: the submission is
// marked approved, the approved_documents row is created at version 1 or
// updated in place with version+1, and the document is moved to
// approved+locked. It returns the new row and the previous artifact keys so
// the caller can delete the stale files after commit. A second row for the
// same document is never inserted.
func (s *PostgresStore) ApproveTx(ctx context.Context, p ApproveParams) (ApprovedDocument, []string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ApprovedDocument{}, nil, fmt.Errorf("begin approve tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prevStatus string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM documents WHERE id=$1 FOR UPDATE`, p.DocumentID).Scan(&prevStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ApprovedDocument{}, nil, ErrNotFound
		}
		return ApprovedDocument{}, nil, fmt.Errorf("lock document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE submissions SET status='approved', reviewed_by=$2, reviewed_at=NOW(), review_notes=$3
		WHERE id=$1
	`, p.SubmissionID, p.ApprovedBy, p.ApprovalNotes); err != nil {
		return ApprovedDocument{}, nil, fmt.Errorf("update submission: %w", err)
	}

	var prevKeys []string
	var prevXML, prevJSON string
	err = tx.QueryRowContext(ctx,
		`SELECT xml_object_key, json_object_key FROM approved_documents WHERE document_id=$1 FOR UPDATE`,
		p.DocumentID).Scan(&prevXML, &prevJSON)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return ApprovedDocument{}, nil, fmt.Errorf("lookup previous approval: %w", err)
	default:
		prevKeys = append(prevKeys, prevXML, prevJSON)
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO approved_documents (id, document_id, section_id, version, xml_object_key, json_object_key, approved_by, approval_notes)
		VALUES ($1, $2, $3, 1, $4, $5, $6, $7)
		ON CONFLICT (document_id) DO UPDATE SET
			section_id=EXCLUDED.section_id,
			version=approved_documents.version + 1,
			xml_object_key=EXCLUDED.xml_object_key,
			json_object_key=EXCLUDED.json_object_key,
			approved_by=EXCLUDED.approved_by,
			approved_at=NOW(),
			approval_notes=EXCLUDED.approval_notes
		RETURNING `+approvedColumns,
		p.ApprovedID, p.DocumentID, p.SectionID, p.XMLObjectKey, p.JSONObjectKey, p.ApprovedBy, p.ApprovalNotes)
	approved, err := scanApproved(row)
	if err != nil {
		return ApprovedDocument{}, nil, fmt.Errorf("upsert approved document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET status='approved', is_locked=TRUE, updated_at=NOW() WHERE id=$1`,
		p.DocumentID); err != nil {
		return ApprovedDocument{}, nil, fmt.Errorf("update document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_history (document_id, submission_id, action, performed_by, notes, version, previous_status, new_status)
		VALUES ($1, $2, 'approved', $3, $4, $5, $6, 'approved')
	`, p.DocumentID, p.SubmissionID, p.ApprovedBy, p.ApprovalNotes, approved.Version, prevStatus); err != nil {
		return ApprovedDocument{}, nil, fmt.Errorf("insert audit record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ApprovedDocument{}, nil, fmt.Errorf("commit approve tx: %w", err)
	}
	return approved, prevKeys, nil
}

func (s *PostgresStore) InsertAudit(ctx context.Context, rec AuditRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_history (document_id, submission_id, action, performed_by, notes, version, previous_status, new_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.DocumentID, rec.SubmissionID, rec.Action, rec.PerformedBy, rec.Notes, rec.Version, rec.PreviousStatus, rec.NewStatus)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAudit(ctx context.Context, documentID string) ([]AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, submission_id, action, performed_by, performed_at, notes, version, previous_status, new_status
		FROM audit_history WHERE document_id=$1 ORDER BY performed_at DESC, id DESC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list audit history: %w", err)
	}
	defer rows.Close()
	var out []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		var notes, prevStatus, newStatus sql.NullString
		var version sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.SubmissionID, &rec.Action, &rec.PerformedBy,
			&rec.PerformedAt, &notes, &version, &prevStatus, &newStatus); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Notes = notes.String
		rec.Version = int(version.Int64)
		rec.PreviousStatus = prevStatus.String
		rec.NewStatus = newStatus.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
