package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*PostgresStore, context.Context) {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("DOCUFIX_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("DOCUFIX_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := resetPublicSchema(ctx, db); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	if err := ApplyMigrations(ctx, db, filepath.Join("..", "..", "db", "migrations")); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return NewPostgresStore(db), ctx
}

func TestApproveTxUpsert(t *testing.T) {
	s, ctx := openTestStore(t)

	doc, err := s.CreateDocument(ctx, Document{
		ID:               "doc-1",
		Filename:         "plan.xml",
		OriginalFilename: "plan.docx",
		Status:           "submitted",
		IsLocked:         true,
		UploadedBy:       "alice",
		Structure:        []byte(`{}`),
	})
	if err != nil {
		t.Fatal(err)
	}

	approveOnce := func(n int) ApprovedDocument {
		sub, err := s.CreateSubmission(ctx, Submission{
			ID:          "sub-" + string(rune('0'+n)),
			DocumentID:  doc.ID,
			Status:      "pending",
			SubmittedBy: "alice",
			DocumentXML: "<document/>",
			Structure:   []byte(`{}`),
		})
		if err != nil {
			t.Fatal(err)
		}
		approved, prev, err := s.ApproveTx(ctx, ApproveParams{
			ApprovedID:    "appr-" + sub.ID,
			SubmissionID:  sub.ID,
			DocumentID:    doc.ID,
			SectionID:     "DOC-doc-1-" + sub.ID,
			XMLObjectKey:  "approved/" + sub.ID + ".xml",
			JSONObjectKey: "approved/" + sub.ID + ".json",
			ApprovedBy:    "bob",
		})
		if err != nil {
			t.Fatal(err)
		}
		if n == 1 && len(prev) != 0 {
			t.Errorf("first approval returned previous keys %v", prev)
		}
		if n > 1 && len(prev) != 2 {
			t.Errorf("re-approval returned %d previous keys, want 2", len(prev))
		}
		return approved
	}

	first := approveOnce(1)
	if first.Version != 1 {
		t.Errorf("version = %d, want 1", first.Version)
	}

	second := approveOnce(2)
	if second.Version != 2 {
		t.Errorf("version = %d, want 2", second.Version)
	}
	if second.ID != first.ID {
		t.Error("re-approval created a second row instead of updating in place")
	}
	if second.SectionID == first.SectionID {
		t.Error("section id was not regenerated")
	}

	all, err := s.ListApproved(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("approved rows = %d, want exactly 1", len(all))
	}

	d, err := s.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != "approved" || !d.IsLocked {
		t.Errorf("document = %s locked=%v, want approved locked", d.Status, d.IsLocked)
	}

	audit, err := s.ListAudit(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(audit) != 2 {
		t.Errorf("audit records = %d, want 2", len(audit))
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	s, ctx := openTestStore(t)
	if _, err := s.GetDocument(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
