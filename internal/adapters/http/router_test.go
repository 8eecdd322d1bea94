package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
)

type fakeResolver struct {
	resolution *domain.Resolution
	err        error
	lastQuery  string
	lastLang   string
}

func (f *fakeResolver) Resolve(_ context.Context, query, language string) (*domain.Resolution, error) {
	f.lastQuery = query
	f.lastLang = language
	return f.resolution, f.err
}

type fakeIngestor struct {
	results map[string]domain.IngestResult
	calls   []string
}

func (f *fakeIngestor) Upload(_ context.Context, filename string, body io.Reader) domain.IngestResult {
	_, _ = io.Copy(io.Discard, body)
	f.calls = append(f.calls, filename)
	if res, ok := f.results[filename]; ok {
		return res
	}
	return domain.IngestResult{DocumentID: "doc-" + filename, Filename: filename, Processed: true}
}

type fakeAdmin struct {
	docs    []domain.Document
	byID    map[string]*domain.Document
	deleted []string
}

func (f *fakeAdmin) List(_ context.Context, _ int) ([]domain.Document, error) {
	return f.docs, nil
}

func (f *fakeAdmin) Get(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (f *fakeAdmin) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestRouter(resolver *fakeResolver, ingestor *fakeIngestor, admin *fakeAdmin, adminToken string) http.Handler {
	if resolver == nil {
		resolver = &fakeResolver{resolution: &domain.Resolution{Response: "ok", Stage: domain.StageGeneral}}
	}
	if ingestor == nil {
		ingestor = &fakeIngestor{}
	}
	if admin == nil {
		admin = &fakeAdmin{}
	}
	return NewRouter(resolver, ingestor, admin, nil, adminToken).Handler()
}

func TestAskReturnsResolution(t *testing.T) {
	resolver := &fakeResolver{resolution: &domain.Resolution{
		Response: "Tuition is due on September 1. (Source: handbook.pdf)",
		Source:   &domain.SourceRef{ID: "doc-1", Title: "handbook.pdf"},
		Stage:    domain.StageDocument,
	}}
	handler := newTestRouter(resolver, nil, nil, "")

	body := strings.NewReader(`{"query":"when is tuition due","language":"auto"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ask", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Response string            `json:"response"`
		Source   *domain.SourceRef `json:"source"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Source == nil || resp.Source.ID != "doc-1" {
		t.Fatalf("expected provenance in the payload, got %+v", resp.Source)
	}
	if resolver.lastLang != "auto" {
		t.Fatalf("language not forwarded: %q", resolver.lastLang)
	}
}

func TestAskBlankQueryReturnsPrompt(t *testing.T) {
	resolver := &fakeResolver{err: domain.WrapError(domain.ErrInvalidInput, "resolve query", errors.New("empty query"))}
	handler := newTestRouter(resolver, nil, nil, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"query":"  "}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), emptyQueryMessage) {
		t.Fatalf("expected the empty-query prompt, got %s", rec.Body.String())
	}
}

func TestAskRejectsInvalidJSON(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"query":`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAskRejectsGet(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ask", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func multipartUpload(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4 fake")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadProcessesEveryFile(t *testing.T) {
	ingestor := &fakeIngestor{results: map[string]domain.IngestResult{
		"broken.pdf": {Filename: "broken.pdf", Error: "no extractable text"},
	}}
	handler := newTestRouter(nil, ingestor, nil, "")

	body, contentType := multipartUpload(t, "handbook.pdf", "broken.pdf")
	req := httptest.NewRequest(http.MethodPost, "/admin/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []domain.IngestResult `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if !resp.Results[0].Processed || resp.Results[1].Processed {
		t.Fatalf("per-file outcomes wrong: %+v", resp.Results)
	}
	if len(ingestor.calls) != 2 {
		t.Fatalf("a failing file must not stop the batch: %v", ingestor.calls)
	}
}

func TestUploadWithoutFilesIsRejected(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, "")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("note", "no files here")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAdminTokenGuardsAdminSurface(t *testing.T) {
	admin := &fakeAdmin{}
	handler := newTestRouter(nil, nil, admin, "secret-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/documents", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/documents", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", rec.Code)
	}
}

func TestAdminTokenDoesNotGuardAsk(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, "secret-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"query":"hi"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("ask must stay public: status = %d", rec.Code)
	}
}

func TestGetDocumentNotFoundMapsTo404(t *testing.T) {
	handler := newTestRouter(nil, nil, &fakeAdmin{}, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/documents/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	admin := &fakeAdmin{}
	handler := newTestRouter(nil, nil, admin, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/documents/doc-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(admin.deleted) != 1 || admin.deleted[0] != "doc-1" {
		t.Fatalf("delete not forwarded: %v", admin.deleted)
	}
}

func TestListDocumentsRejectsBadLimit(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/documents?limit=nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRequestIDHeaderIsEchoed(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("request id not echoed: %q", got)
	}
}
