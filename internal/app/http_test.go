package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docufix/api/internal/lifecycle"
	"docufix/api/internal/store"
)

func newTestServer(fs *fakeStore) *httptest.Server {
	svc := newTestService(fs, nil, nil, nil)
	return httptest.NewServer(NewHTTPServer(svc, "*").Handler())
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["ok"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestPreflightReturnsNoContentWithoutBody(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/documents", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(body) != 0 {
		t.Errorf("body = %q, want empty", body)
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Error("missing CORS headers on preflight")
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/search?q=x&type=thread")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "VALIDATION_ERROR" {
		t.Errorf("code = %v", body["code"])
	}
	if msg, ok := body["error"].(string); !ok || msg == "" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGetDocumentNotFoundMapsTo404(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/documents/missing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "NOT_FOUND" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestLockEndpointAppliesTransition(t *testing.T) {
	fs := &fakeStore{
		getDocumentFn: func(_ context.Context, id string) (store.Document, error) {
			return store.Document{ID: id, Status: string(lifecycle.StatusDraft), IsLocked: false}, nil
		},
	}
	srv := newTestServer(fs)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/documents/doc-1/lock", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != string(lifecycle.StatusLocked) || body["isLocked"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestSubmitApprovedDocumentReturnsConflict(t *testing.T) {
	fs := &fakeStore{
		getDocumentFn: func(_ context.Context, id string) (store.Document, error) {
			return store.Document{
				ID: id, Status: string(lifecycle.StatusApproved), IsLocked: true,
				Structure: structureFor(t, cleanXML),
			}, nil
		},
	}
	srv := newTestServer(fs)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/submissions", "application/json",
		strings.NewReader(`{"documentId":"doc-1"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "INVALID_TRANSITION" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestSearchEndpointRejectsUnknownType(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/search?q=buffer&type=thread")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
