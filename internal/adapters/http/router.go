package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
	"github.com/mkozhevin/campus-helpdesk/internal/core/ports"
	"github.com/mkozhevin/campus-helpdesk/internal/observability/metrics"
)

const serviceName = "api"

// emptyQueryMessage is shown verbatim for a blank query so clients can
// render it without their own error copy.
const emptyQueryMessage = "Please enter a query."

const maxUploadBytes = 64 << 20

type Router struct {
	resolver ports.QueryResolver
	ingestor ports.DocumentIngestor
	admin    ports.DocumentAdmin
	metrics  *metrics.HTTPServerMetrics

	adminToken string
}

func NewRouter(
	resolver ports.QueryResolver,
	ingestor ports.DocumentIngestor,
	admin ports.DocumentAdmin,
	m *metrics.HTTPServerMetrics,
	adminToken string,
) *Router {
	return &Router{
		resolver:   resolver,
		ingestor:   ingestor,
		admin:      admin,
		metrics:    m,
		adminToken: adminToken,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ask", rt.ask)

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("/admin/upload", rt.uploadDocuments)
	adminMux.HandleFunc("/admin/documents", rt.listDocuments)
	adminMux.HandleFunc("/admin/documents/", rt.documentByID)
	mux.Handle("/admin/", adminAuthMiddleware(rt.adminToken, adminMux))

	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		return requestIDMiddleware(accessLogMiddleware(rt.metrics.Middleware(serviceName, mux)))
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	var req struct {
		Query    string `json:"query"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}

	start := time.Now()
	resolution, err := rt.resolver.Resolve(r.Context(), req.Query, req.Language)
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"response": emptyQueryMessage})
			return
		}
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordResolution(serviceName, string(resolution.Stage), time.Since(start))
	}
	writeJSON(w, http.StatusOK, resolution)
}

func (rt *Router) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart request"))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'files' is required"))
		return
	}

	results := make([]domain.IngestResult, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			results = append(results, domain.IngestResult{Filename: header.Filename, Error: "failed to read file"})
			continue
		}
		res := rt.ingestor.Upload(r.Context(), header.Filename, file)
		file.Close()
		results = append(results, res)
		if rt.metrics != nil {
			rt.metrics.RecordIngest(serviceName, "upload", res.Processed)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	docs, err := rt.admin.List(r.Context(), limit)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody("failed to list documents"))
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/admin/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, errorBody("document id is required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := rt.admin.Get(r.Context(), id)
		if err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), errorBody("document not found"))
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := rt.admin.Delete(r.Context(), id); err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), errorBody("failed to delete document"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
