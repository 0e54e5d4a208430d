package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"docufix/api/internal/cursor"
	"docufix/api/internal/editsession"
	"docufix/api/internal/export"
	"docufix/api/internal/lifecycle"
	"docufix/api/internal/render"
	"docufix/api/internal/search"
	"docufix/api/internal/store"
)

const maxUploadBytes = 32 << 20

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		s.handleSearch(w, r)
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "api" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch parts[1] {
	case "documents":
		s.handleDocuments(w, r, parts[2:])
	case "submissions":
		s.handleSubmissions(w, r, parts[2:])
	case "approved":
		s.handleApproved(w, r, parts[2:])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleDocuments(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		docs, err := s.service.ListDocuments(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(docs))
		for _, doc := range docs {
			payload = append(payload, documentPayload(doc))
		}
		writeJSON(w, http.StatusOK, map[string]any{"documents": payload})

	case len(parts) == 1 && parts[0] == "upload" && r.Method == http.MethodPost:
		s.handleUpload(w, r)

	case len(parts) == 1 && r.Method == http.MethodGet:
		doc, err := s.service.GetDocument(r.Context(), parts[0])
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, documentPayload(doc))

	case len(parts) == 1 && r.Method == http.MethodDelete:
		if err := s.service.DeleteDocument(r.Context(), parts[0], actor(r)); err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})

	case len(parts) == 2 && parts[1] == "content" && r.Method == http.MethodGet:
		content, err := s.service.GetContent(r.Context(), parts[0])
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"document": documentPayload(content.Document),
			"model":    content.Model,
			"view":     content.View,
			"gaps":     content.Gaps,
			"gapCount": len(content.Gaps),
		})

	case len(parts) == 2 && parts[1] == "gaps" && r.Method == http.MethodGet:
		gaps, err := s.service.GetGaps(r.Context(), parts[0])
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"documentId": parts[0], "gaps": gaps, "count": len(gaps)})

	case len(parts) == 2 && parts[1] == "lock" && r.Method == http.MethodPost:
		doc, err := s.service.LockDocument(r.Context(), parts[0], actor(r))
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, documentPayload(doc))

	case len(parts) == 2 && parts[1] == "unlock" && r.Method == http.MethodPost:
		force := r.URL.Query().Get("force") == "true"
		doc, err := s.service.UnlockDocument(r.Context(), parts[0], actor(r), force)
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, documentPayload(doc))

	case len(parts) == 2 && parts[1] == "reset" && r.Method == http.MethodPost:
		doc, err := s.service.ResetDocument(r.Context(), parts[0], actor(r))
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, documentPayload(doc))

	case len(parts) == 2 && parts[1] == "update" && r.Method == http.MethodPut:
		var body struct {
			Nodes []render.Node `json:"nodes"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		result, err := s.service.UpdateDocument(r.Context(), parts[0], actor(r), body.Nodes)
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"document": documentPayload(result.Document),
			"changes":  result.Changes,
			"summary":  result.Changes.Summary(),
			"view":     result.View,
			"gapCount": result.GapCount,
		})

	case len(parts) == 2 && parts[1] == "audit-history" && r.Method == http.MethodGet:
		records, err := s.service.AuditHistory(r.Context(), parts[0])
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			payload = append(payload, auditPayload(rec))
		}
		writeJSON(w, http.StatusOK, map[string]any{"documentId": parts[0], "history": payload})

	case len(parts) == 3 && parts[1] == "cursor" && parts[2] == "locate" && r.Method == http.MethodPost:
		var anchor cursor.Anchor
		if err := decodeBody(r, &anchor); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		pos, found, err := s.service.LocateCursor(r.Context(), parts[0], anchor)
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		if !found {
			writeJSON(w, http.StatusOK, map[string]any{"found": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"found": true, "position": pos})

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "expected multipart form with a 'file' field", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "missing 'file' field", nil)
		return
	}
	defer file.Close()

	doc, err := s.service.UploadDocument(r.Context(), header.Filename, actor(r), file)
	if err != nil {
		s.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentPayload(doc))
}

func (s *HTTPServer) handleSubmissions(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0 && r.Method == http.MethodPost:
		var body struct {
			DocumentID string `json:"documentId"`
			Notes      string `json:"notes"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.DocumentID) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "documentId is required", nil)
			return
		}
		sub, err := s.service.CreateSubmission(r.Context(), body.DocumentID, actor(r), body.Notes)
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, submissionPayload(sub))

	case len(parts) == 0 && r.Method == http.MethodGet:
		subs, err := s.service.ListSubmissions(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(subs))
		for _, sub := range subs {
			payload = append(payload, submissionPayload(sub))
		}
		writeJSON(w, http.StatusOK, map[string]any{"submissions": payload})

	case len(parts) == 1 && r.Method == http.MethodGet:
		sub, err := s.service.GetSubmission(r.Context(), parts[0])
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, submissionPayload(sub))

	case len(parts) == 2 && parts[1] == "review" && r.Method == http.MethodPost:
		var body struct {
			Action string `json:"action"`
			Notes  string `json:"notes"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		result, err := s.service.ReviewSubmission(r.Context(), parts[0], body.Action, actor(r), body.Notes)
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		payload := map[string]any{"submission": submissionPayload(result.Submission)}
		if result.Approved != nil {
			payload["approved"] = approvedPayload(*result.Approved)
		}
		writeJSON(w, http.StatusOK, payload)

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleApproved(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch {
	case len(parts) == 0:
		records, err := s.service.ListApproved(r.Context())
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			payload = append(payload, approvedPayload(rec))
		}
		writeJSON(w, http.StatusOK, map[string]any{"approved": payload})

	case len(parts) == 1:
		rec, err := s.service.GetApproved(r.Context(), parts[0])
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, approvedPayload(rec))

	case len(parts) == 2 && parts[1] == "xml":
		data, rec, err := s.service.ApprovedXML(r.Context(), parts[0])
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeRaw(w, "application/xml", rec.SectionID+".xml", data)

	case len(parts) == 2 && parts[1] == "json":
		data, rec, err := s.service.ApprovedJSON(r.Context(), parts[0])
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeRaw(w, "application/json", rec.SectionID+".json", data)

	case len(parts) == 2 && parts[1] == "download":
		format := export.Format(r.URL.Query().Get("format"))
		if format == "" {
			format = export.FormatPDF
		}
		result, err := s.service.DownloadApproved(r.Context(), parts[0], format)
		if err != nil {
			s.writeMappedError(w, err)
			return
		}
		writeRaw(w, result.MimeType, result.Filename, result.Data)

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	filterType := search.ResultType(query.Get("type"))
	if filterType != "" && filterType != search.ResultDocument && filterType != search.ResultGap {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "type must be 'document' or 'gap'", nil)
		return
	}

	response := s.service.Search(search.Query{
		Text:         query.Get("q"),
		FilterType:   filterType,
		FilterStatus: query.Get("status"),
		Limit:        limit,
		Offset:       offset,
	})
	writeJSON(w, http.StatusOK, response)
}

func (s *HTTPServer) writeMappedError(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func documentPayload(d store.Document) map[string]any {
	return map[string]any{
		"id":               d.ID,
		"filename":         d.Filename,
		"originalFilename": d.OriginalFilename,
		"status":           d.Status,
		"isLocked":         d.IsLocked,
		"uploadedBy":       d.UploadedBy,
		"uploadedAt":       d.UploadedAt,
		"updatedAt":        d.UpdatedAt,
	}
}

func submissionPayload(sub store.Submission) map[string]any {
	payload := map[string]any{
		"id":             sub.ID,
		"documentId":     sub.DocumentID,
		"status":         sub.Status,
		"submittedBy":    sub.SubmittedBy,
		"submittedAt":    sub.SubmittedAt,
		"reviewNotes":    sub.ReviewNotes,
		"changesSummary": sub.ChangesSummary,
	}
	if sub.ReviewedBy != "" {
		payload["reviewedBy"] = sub.ReviewedBy
	}
	if sub.ReviewedAt != nil {
		payload["reviewedAt"] = *sub.ReviewedAt
	}
	return payload
}

func approvedPayload(rec store.ApprovedDocument) map[string]any {
	return map[string]any{
		"id":            rec.ID,
		"documentId":    rec.DocumentID,
		"sectionId":     rec.SectionID,
		"version":       rec.Version,
		"approvedBy":    rec.ApprovedBy,
		"approvedAt":    rec.ApprovedAt,
		"approvalNotes": rec.ApprovalNotes,
	}
}

func auditPayload(rec store.AuditRecord) map[string]any {
	payload := map[string]any{
		"id":          rec.ID,
		"documentId":  rec.DocumentID,
		"action":      rec.Action,
		"performedBy": rec.PerformedBy,
		"performedAt": rec.PerformedAt,
	}
	if rec.SubmissionID != nil {
		payload["submissionId"] = *rec.SubmissionID
	}
	if rec.Notes != "" {
		payload["notes"] = rec.Notes
	}
	if rec.Version > 0 {
		payload["version"] = rec.Version
	}
	if rec.PreviousStatus != "" {
		payload["previousStatus"] = rec.PreviousStatus
	}
	if rec.NewStatus != "" {
		payload["newStatus"] = rec.NewStatus
	}
	return payload
}

// actor identifies the acting user. Authentication is out of scope; the
// frontend passes the display name through this header.
func actor(r *http.Request) string {
	name := strings.TrimSpace(r.Header.Get("X-User"))
	if name == "" {
		return "anonymous"
	}
	return name
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-User")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func writeRaw(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	var transitionErr *lifecycle.TransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusConflict, "INVALID_TRANSITION", transitionErr.Error(), map[string]any{
			"current": string(transitionErr.Current),
			"action":  transitionErr.Action,
		}
	}
	var gapsErr *lifecycle.GapsError
	if errors.As(err, &gapsErr) {
		return http.StatusUnprocessableEntity, "UNRESOLVED_GAPS", gapsErr.Error(), map[string]any{
			"count": gapsErr.Count,
		}
	}
	var heldErr *editsession.ErrHeld
	if errors.As(err, &heldErr) {
		return http.StatusLocked, "EDIT_LEASE_HELD", heldErr.Error(), map[string]any{
			"holder": heldErr.Holder,
		}
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
