package app

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docufix/api/internal/artifact"
	"docufix/api/internal/config"
	"docufix/api/internal/cursor"
	"docufix/api/internal/docmodel"
	"docufix/api/internal/editsession"
	"docufix/api/internal/export"
	"docufix/api/internal/lifecycle"
	"docufix/api/internal/parser"
	"docufix/api/internal/reconcile"
	"docufix/api/internal/render"
	"docufix/api/internal/search"
	"docufix/api/internal/store"
)

type dataStore interface {
	CreateDocument(context.Context, store.Document) (store.Document, error)
	GetDocument(context.Context, string) (store.Document, error)
	ListDocuments(context.Context, string) ([]store.Document, error)
	UpdateDocumentStructure(context.Context, string, json.RawMessage) error
	UpdateDocumentState(context.Context, string, string, bool) error
	DeleteDocument(context.Context, string) error
	CreateSubmission(context.Context, store.Submission) (store.Submission, error)
	GetSubmission(context.Context, string) (store.Submission, error)
	ListSubmissions(context.Context, string) ([]store.Submission, error)
	UpdateSubmissionStatus(context.Context, string, string) error
	GetApproved(context.Context, string) (store.ApprovedDocument, error)
	GetApprovedByDocument(context.Context, string) (store.ApprovedDocument, error)
	ListApproved(context.Context) ([]store.ApprovedDocument, error)
	ApproveTx(context.Context, store.ApproveParams) (store.ApprovedDocument, []string, error)
	InsertAudit(context.Context, store.AuditRecord) error
	ListAudit(context.Context, string) ([]store.AuditRecord, error)
	Ping(context.Context) error
}

type leaseStore interface {
	Acquire(ctx context.Context, documentID, editor string) (editsession.Lease, error)
	Release(ctx context.Context, documentID, editor string) error
	ForceRelease(ctx context.Context, documentID string) error
	Holder(ctx context.Context, documentID string) (string, error)
}

type searchIndex interface {
	Search(q search.Query) search.Response
	IndexDocument(doc search.DocumentRecord)
	IndexGaps(removed []string, gaps []search.GapEntry)
	DeleteDocument(id string, gapIDs []string)
}

type Service struct {
	cfg       config.Config
	store     dataStore
	artifacts artifact.Store
	leases    leaseStore
	search    searchIndex
	parser    parser.Parser
	exports   *export.Service
}

func New(cfg config.Config, dataStore *store.PostgresStore, artifacts artifact.Store, leases *editsession.RedisStore, searchSvc *search.Service) *Service {
	s := &Service{
		cfg:       cfg,
		store:     dataStore,
		artifacts: artifacts,
		leases:    leases,
		search:    searchSvc,
		parser:    &parser.XML{},
	}
	s.exports = export.NewService(exportStore{s}, cfg.ChromePath, cfg.PandocPath)
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// exportStore adapts the service so the export package can load documents.
type exportStore struct {
	s *Service
}

func (e exportStore) GetDocument(ctx context.Context, id string) (export.DocumentInfo, error) {
	doc, err := e.s.store.GetDocument(ctx, id)
	if err != nil {
		return export.DocumentInfo{}, err
	}
	return export.DocumentInfo{
		ID:         doc.ID,
		Filename:   doc.OriginalFilename,
		Status:     doc.Status,
		UploadedBy: doc.UploadedBy,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

func (e exportStore) GetDocumentModel(ctx context.Context, id string) (*docmodel.Model, error) {
	doc, err := e.s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return modelOf(doc)
}

func modelOf(doc store.Document) (*docmodel.Model, error) {
	if len(doc.Structure) == 0 {
		return nil, fmt.Errorf("document %s has no structure", doc.ID)
	}
	var m docmodel.Model
	if err := json.Unmarshal(doc.Structure, &m); err != nil {
		return nil, fmt.Errorf("decode structure: %w", err)
	}
	return &m, nil
}

func stateOf(doc store.Document) lifecycle.State {
	return lifecycle.State{Status: lifecycle.Status(doc.Status), Locked: doc.IsLocked}
}

// gapEntryID is deterministic so re-indexing a document replaces its gap
// entries instead of accumulating duplicates.
func gapEntryID(docID string, r docmodel.GapRecord) string {
	if r.TableID != "" {
		return fmt.Sprintf("%s-%s-%d-%d", docID, r.TableID, r.Row, r.Col)
	}
	sum := sha1.Sum([]byte(r.Kind + "|" + r.Description))
	return fmt.Sprintf("%s-%s-%s", docID, r.Kind, hex.EncodeToString(sum[:8]))
}

func gapEntries(docID string, m *docmodel.Model) []search.GapEntry {
	records := m.GapRecords()
	entries := make([]search.GapEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, search.GapEntry{
			ID:          gapEntryID(docID, r),
			DocumentID:  docID,
			TableName:   r.TableName,
			FieldName:   r.FieldName,
			Description: r.Description,
			Status:      r.Status,
		})
	}
	return entries
}

func removedGapIDs(prior, next []search.GapEntry) []string {
	keep := make(map[string]struct{}, len(next))
	for _, e := range next {
		keep[e.ID] = struct{}{}
	}
	var removed []string
	for _, e := range prior {
		if _, ok := keep[e.ID]; !ok {
			removed = append(removed, e.ID)
		}
	}
	return removed
}

func (s *Service) indexDocument(doc store.Document, m *docmodel.Model) {
	gapCount := 0
	if m != nil {
		gapCount = m.GapCount()
	}
	s.search.IndexDocument(search.DocumentRecord{
		ID:       doc.ID,
		Filename: doc.OriginalFilename,
		Status:   doc.Status,
		GapCount: gapCount,
	})
}

func (s *Service) audit(ctx context.Context, rec store.AuditRecord) {
	if err := s.store.InsertAudit(ctx, rec); err != nil {
		log.Printf("app: audit %s %s: %v", rec.Action, rec.DocumentID, err)
	}
}

// UploadDocument parses the source, classifies it, stores both the raw bytes
// and the structure snapshot, and leaves the document in the locked
// post-upload state.
func (s *Service) UploadDocument(ctx context.Context, originalFilename, uploadedBy string, r io.Reader) (store.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return store.Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return store.Document{}, domainError(http.StatusUnprocessableEntity, "EMPTY_UPLOAD", "uploaded file is empty", nil)
	}

	model, err := s.parser.Parse(ctx, bytes.NewReader(data))
	if err != nil {
		return store.Document{}, domainError(http.StatusUnprocessableEntity, "UNPARSABLE_DOCUMENT", "document could not be parsed", map[string]any{"reason": err.Error()})
	}

	structure, err := json.Marshal(model)
	if err != nil {
		return store.Document{}, fmt.Errorf("encode structure: %w", err)
	}

	id := uuid.NewString()
	baseName := filepath.Base(strings.TrimSpace(originalFilename))
	if baseName == "" || baseName == "." || baseName == "/" {
		baseName = "document.xml"
	}
	objectKey := fmt.Sprintf("uploads/%s/%s", id, baseName)
	if err := s.artifacts.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), "application/xml"); err != nil {
		return store.Document{}, fmt.Errorf("store upload: %w", err)
	}

	state := lifecycle.Upload()
	doc, err := s.store.CreateDocument(ctx, store.Document{
		ID:               id,
		Filename:         baseName,
		OriginalFilename: baseName,
		ObjectKey:        objectKey,
		Status:           string(state.Status),
		IsLocked:         state.Locked,
		UploadedBy:       uploadedBy,
		Structure:        structure,
	})
	if err != nil {
		return store.Document{}, err
	}

	s.audit(ctx, store.AuditRecord{
		DocumentID:  doc.ID,
		Action:      "upload",
		PerformedBy: uploadedBy,
		Notes:       fmt.Sprintf("%d unresolved item(s) detected", model.GapCount()),
		NewStatus:   doc.Status,
	})
	s.indexDocument(doc, model)
	s.search.IndexGaps(nil, gapEntries(doc.ID, model))
	return doc, nil
}

func (s *Service) ListDocuments(ctx context.Context, status string) ([]store.Document, error) {
	if status != "" && !lifecycle.ValidStatus(lifecycle.Status(status)) {
		return nil, validationError("invalid status filter")
	}
	return s.store.ListDocuments(ctx, status)
}

func (s *Service) GetDocument(ctx context.Context, id string) (store.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// ContentResult bundles everything an editor needs to display a document.
type ContentResult struct {
	Document store.Document
	Model    *docmodel.Model
	View     render.View
	Gaps     []docmodel.GapRecord
}

func (s *Service) GetContent(ctx context.Context, id string) (ContentResult, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return ContentResult{}, err
	}
	model, err := modelOf(doc)
	if err != nil {
		return ContentResult{}, err
	}
	return ContentResult{
		Document: doc,
		Model:    model,
		View:     render.Project(model),
		Gaps:     model.GapRecords(),
	}, nil
}

func (s *Service) GetGaps(ctx context.Context, id string) ([]docmodel.GapRecord, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	model, err := modelOf(doc)
	if err != nil {
		return nil, err
	}
	return model.GapRecords(), nil
}

// transition applies a lifecycle step, persists the resulting state, and
// records the action in the audit history.
func (s *Service) transition(ctx context.Context, id, actor, action string, step func(lifecycle.State) (lifecycle.State, error)) (store.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return store.Document{}, err
	}
	next, err := step(stateOf(doc))
	if err != nil {
		return store.Document{}, err
	}
	if err := s.store.UpdateDocumentState(ctx, id, string(next.Status), next.Locked); err != nil {
		return store.Document{}, err
	}
	s.audit(ctx, store.AuditRecord{
		DocumentID:     id,
		Action:         action,
		PerformedBy:    actor,
		PreviousStatus: doc.Status,
		NewStatus:      string(next.Status),
	})
	prev := doc.Status
	doc.Status = string(next.Status)
	doc.IsLocked = next.Locked
	if prev != doc.Status {
		if model, err := modelOf(doc); err == nil {
			s.indexDocument(doc, model)
		}
	}
	return doc, nil
}

func (s *Service) LockDocument(ctx context.Context, id, actor string) (store.Document, error) {
	return s.transition(ctx, id, actor, "lock", lifecycle.Lock)
}

func (s *Service) UnlockDocument(ctx context.Context, id, actor string, force bool) (store.Document, error) {
	doc, err := s.transition(ctx, id, actor, "unlock", func(st lifecycle.State) (lifecycle.State, error) {
		return lifecycle.Unlock(st, force)
	})
	if err != nil {
		return store.Document{}, err
	}
	if force {
		if err := s.leases.ForceRelease(ctx, id); err != nil {
			log.Printf("app: force release lease %s: %v", id, err)
		}
	}
	return doc, nil
}

func (s *Service) ResetDocument(ctx context.Context, id, actor string) (store.Document, error) {
	doc, err := s.transition(ctx, id, actor, "reset", func(st lifecycle.State) (lifecycle.State, error) {
		return lifecycle.Reset(st), nil
	})
	if err != nil {
		return store.Document{}, err
	}
	if err := s.leases.ForceRelease(ctx, id); err != nil {
		log.Printf("app: force release lease %s: %v", id, err)
	}
	return doc, nil
}

// UpdateResult reports the outcome of a reconciliation pass.
type UpdateResult struct {
	Document store.Document
	Changes  reconcile.Changes
	View     render.View
	GapCount int
}

// UpdateDocument reconciles an edited rendered view against the stored
// structure. The caller must hold (or be able to acquire) the edit lease.
func (s *Service) UpdateDocument(ctx context.Context, id, editor string, nodes []render.Node) (UpdateResult, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}
	if doc.IsLocked {
		return UpdateResult{}, domainError(http.StatusConflict, "DOCUMENT_LOCKED", "unlock the document before editing", nil)
	}

	if _, err := s.leases.Acquire(ctx, id, editor); err != nil {
		return UpdateResult{}, err
	}

	prior, err := modelOf(doc)
	if err != nil {
		return UpdateResult{}, err
	}

	next, changes, err := reconcile.Apply(prior, render.View{Nodes: nodes})
	if errors.Is(err, reconcile.ErrUnparsableView) {
		return UpdateResult{}, domainError(http.StatusUnprocessableEntity, "UNPARSABLE_VIEW", "edited view has no identifiable nodes; document left unchanged", nil)
	}
	if err != nil {
		return UpdateResult{}, err
	}

	structure, err := json.Marshal(next)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("encode structure: %w", err)
	}
	if err := s.store.UpdateDocumentStructure(ctx, id, structure); err != nil {
		return UpdateResult{}, err
	}

	priorEntries := gapEntries(id, prior)
	nextEntries := gapEntries(id, next)
	s.search.IndexGaps(removedGapIDs(priorEntries, nextEntries), nextEntries)
	doc.Structure = structure
	s.indexDocument(doc, next)

	if !changes.Empty() {
		s.audit(ctx, store.AuditRecord{
			DocumentID:  id,
			Action:      "update",
			PerformedBy: editor,
			Notes:       changes.Summary(),
			NewStatus:   doc.Status,
		})
	}

	return UpdateResult{
		Document: doc,
		Changes:  changes,
		View:     render.Project(next),
		GapCount: next.GapCount(),
	}, nil
}

// LocateCursor resolves a caret anchor against the current rendered view.
func (s *Service) LocateCursor(ctx context.Context, id string, anchor cursor.Anchor) (cursor.Position, bool, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return cursor.Position{}, false, err
	}
	model, err := modelOf(doc)
	if err != nil {
		return cursor.Position{}, false, err
	}
	pos, ok := cursor.Locate(anchor, render.Project(model))
	return pos, ok, nil
}

func (s *Service) DeleteDocument(ctx context.Context, id, actor string) error {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	var gapIDs []string
	if model, err := modelOf(doc); err == nil {
		for _, e := range gapEntries(id, model) {
			gapIDs = append(gapIDs, e.ID)
		}
	}

	var artifactKeys []string
	if doc.ObjectKey != "" {
		artifactKeys = append(artifactKeys, doc.ObjectKey)
	}
	if approved, err := s.store.GetApprovedByDocument(ctx, id); err == nil {
		artifactKeys = append(artifactKeys, approved.XMLObjectKey, approved.JSONObjectKey)
	}

	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}

	for _, key := range artifactKeys {
		if key == "" {
			continue
		}
		if err := s.artifacts.Delete(ctx, key); err != nil {
			log.Printf("app: delete artifact %s: %v", key, err)
		}
	}
	s.search.DeleteDocument(id, gapIDs)
	return nil
}

// CreateSubmission snapshots the document for review. Submission is refused
// while unresolved gaps remain.
func (s *Service) CreateSubmission(ctx context.Context, documentID, submittedBy, notes string) (store.Submission, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return store.Submission{}, err
	}
	model, err := modelOf(doc)
	if err != nil {
		return store.Submission{}, err
	}

	next, err := lifecycle.Submit(stateOf(doc), model.GapCount())
	if err != nil {
		return store.Submission{}, err
	}

	xmlData, err := s.parser.Render(model)
	if err != nil {
		return store.Submission{}, fmt.Errorf("render document: %w", err)
	}

	sub, err := s.store.CreateSubmission(ctx, store.Submission{
		ID:             uuid.NewString(),
		DocumentID:     documentID,
		Status:         string(lifecycle.StatusSubmitted),
		SubmittedBy:    submittedBy,
		ReviewNotes:    notes,
		DocumentXML:    string(xmlData),
		Structure:      doc.Structure,
		ChangesSummary: fmt.Sprintf("%d paragraph(s), %d table(s)", len(model.Paragraphs), len(model.Tables)),
	})
	if err != nil {
		return store.Submission{}, err
	}

	if err := s.store.UpdateDocumentState(ctx, documentID, string(next.Status), next.Locked); err != nil {
		return store.Submission{}, err
	}
	s.audit(ctx, store.AuditRecord{
		DocumentID:     documentID,
		SubmissionID:   &sub.ID,
		Action:         "submit",
		PerformedBy:    submittedBy,
		PreviousStatus: doc.Status,
		NewStatus:      string(next.Status),
	})
	doc.Status = string(next.Status)
	s.indexDocument(doc, model)
	return sub, nil
}

func (s *Service) ListSubmissions(ctx context.Context, status string) ([]store.Submission, error) {
	return s.store.ListSubmissions(ctx, status)
}

func (s *Service) GetSubmission(ctx context.Context, id string) (store.Submission, error) {
	return s.store.GetSubmission(ctx, id)
}

// ReviewResult is the outcome of an approve or reject review.
type ReviewResult struct {
	Submission store.Submission
	Approved   *store.ApprovedDocument
}

// ReviewSubmission approves or rejects a submitted document. Approval
// upserts the single approved row per document and replaces the stored
// artifacts; rejection returns the document to the editable draft state.
func (s *Service) ReviewSubmission(ctx context.Context, submissionID, action, reviewer, notes string) (ReviewResult, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return ReviewResult{}, err
	}
	if sub.Status != string(lifecycle.StatusSubmitted) && sub.Status != string(lifecycle.StatusUnderReview) {
		return ReviewResult{}, domainError(http.StatusConflict, "SUBMISSION_ALREADY_REVIEWED", fmt.Sprintf("submission is %s", sub.Status), nil)
	}
	doc, err := s.store.GetDocument(ctx, sub.DocumentID)
	if err != nil {
		return ReviewResult{}, err
	}

	switch action {
	case "approve":
		return s.approve(ctx, sub, doc, reviewer, notes)
	case "reject":
		return s.reject(ctx, sub, doc, reviewer, notes)
	default:
		return ReviewResult{}, validationError("action must be 'approve' or 'reject'")
	}
}

func (s *Service) approve(ctx context.Context, sub store.Submission, doc store.Document, reviewer, notes string) (ReviewResult, error) {
	if _, err := lifecycle.Approve(stateOf(doc)); err != nil {
		return ReviewResult{}, err
	}

	now := time.Now().UTC()
	base := fmt.Sprintf("approved/%s/%s", doc.ID, uuid.NewString())
	xmlKey := base + ".xml"
	jsonKey := base + ".json"

	// Stage the new artifacts before touching the database so a failed
	// commit leaves the previous approval intact.
	if err := s.artifacts.Put(ctx, xmlKey, strings.NewReader(sub.DocumentXML), int64(len(sub.DocumentXML)), "application/xml"); err != nil {
		return ReviewResult{}, fmt.Errorf("store xml artifact: %w", err)
	}
	if err := s.artifacts.Put(ctx, jsonKey, bytes.NewReader(sub.Structure), int64(len(sub.Structure)), "application/json"); err != nil {
		_ = s.artifacts.Delete(ctx, xmlKey)
		return ReviewResult{}, fmt.Errorf("store json artifact: %w", err)
	}

	approved, prevKeys, err := s.store.ApproveTx(ctx, store.ApproveParams{
		ApprovedID:    uuid.NewString(),
		SubmissionID:  sub.ID,
		DocumentID:    doc.ID,
		SectionID:     fmt.Sprintf("DOC-%s-%s", doc.ID, now.Format("20060102150405")),
		XMLObjectKey:  xmlKey,
		JSONObjectKey: jsonKey,
		ApprovedBy:    reviewer,
		ApprovalNotes: notes,
	})
	if err != nil {
		_ = s.artifacts.Delete(ctx, xmlKey)
		_ = s.artifacts.Delete(ctx, jsonKey)
		return ReviewResult{}, err
	}

	// Previous artifacts are orphaned by the upsert; removal is best-effort.
	for _, key := range prevKeys {
		if key == "" || key == xmlKey || key == jsonKey {
			continue
		}
		if err := s.artifacts.Delete(ctx, key); err != nil {
			log.Printf("app: delete superseded artifact %s: %v", key, err)
		}
	}

	doc.Status = string(lifecycle.StatusApproved)
	doc.IsLocked = true
	if model, err := modelOf(doc); err == nil {
		s.indexDocument(doc, model)
	}

	sub.Status = string(lifecycle.StatusApproved)
	sub.ReviewedBy = reviewer
	return ReviewResult{Submission: sub, Approved: &approved}, nil
}

func (s *Service) reject(ctx context.Context, sub store.Submission, doc store.Document, reviewer, notes string) (ReviewResult, error) {
	if _, err := lifecycle.Reject(stateOf(doc)); err != nil {
		return ReviewResult{}, err
	}

	if err := s.store.UpdateSubmissionStatus(ctx, sub.ID, string(lifecycle.StatusRejected)); err != nil {
		return ReviewResult{}, err
	}
	// The document goes back to editable draft; only the submission record
	// keeps the rejected status.
	if err := s.store.UpdateDocumentState(ctx, doc.ID, string(lifecycle.StatusDraft), false); err != nil {
		return ReviewResult{}, err
	}
	s.audit(ctx, store.AuditRecord{
		DocumentID:     doc.ID,
		SubmissionID:   &sub.ID,
		Action:         "reject",
		PerformedBy:    reviewer,
		Notes:          notes,
		PreviousStatus: doc.Status,
		NewStatus:      string(lifecycle.StatusDraft),
	})

	doc.Status = string(lifecycle.StatusDraft)
	doc.IsLocked = false
	if model, err := modelOf(doc); err == nil {
		s.indexDocument(doc, model)
	}

	sub.Status = string(lifecycle.StatusRejected)
	sub.ReviewedBy = reviewer
	return ReviewResult{Submission: sub}, nil
}

func (s *Service) ListApproved(ctx context.Context) ([]store.ApprovedDocument, error) {
	return s.store.ListApproved(ctx)
}

func (s *Service) GetApproved(ctx context.Context, id string) (store.ApprovedDocument, error) {
	return s.store.GetApproved(ctx, id)
}

func (s *Service) approvedArtifact(ctx context.Context, id, key string) ([]byte, error) {
	rc, err := s.artifacts.Get(ctx, key)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "ARTIFACT_MISSING", fmt.Sprintf("artifact for approved document %s is unavailable", id), nil)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Service) ApprovedXML(ctx context.Context, id string) ([]byte, store.ApprovedDocument, error) {
	rec, err := s.store.GetApproved(ctx, id)
	if err != nil {
		return nil, store.ApprovedDocument{}, err
	}
	data, err := s.approvedArtifact(ctx, id, rec.XMLObjectKey)
	return data, rec, err
}

func (s *Service) ApprovedJSON(ctx context.Context, id string) ([]byte, store.ApprovedDocument, error) {
	rec, err := s.store.GetApproved(ctx, id)
	if err != nil {
		return nil, store.ApprovedDocument{}, err
	}
	data, err := s.approvedArtifact(ctx, id, rec.JSONObjectKey)
	return data, rec, err
}

// DownloadApproved renders the approved document as PDF or DOCX.
func (s *Service) DownloadApproved(ctx context.Context, id string, format export.Format) (*export.Result, error) {
	rec, err := s.store.GetApproved(ctx, id)
	if err != nil {
		return nil, err
	}
	if format != export.FormatPDF && format != export.FormatDOCX {
		return nil, validationError("format must be 'pdf' or 'docx'")
	}
	return s.exports.Export(ctx, export.Request{DocumentID: rec.DocumentID, Format: format})
}

func (s *Service) AuditHistory(ctx context.Context, documentID string) ([]store.AuditRecord, error) {
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.store.ListAudit(ctx, documentID)
}

func (s *Service) Search(q search.Query) search.Response {
	return s.search.Search(q)
}
