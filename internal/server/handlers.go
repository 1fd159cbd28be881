package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"annotext/internal/analysis"
	"annotext/internal/annotated"
	"annotext/internal/engine"
	"annotext/internal/indexing"
	"annotext/internal/query"
)

// Handler holds HTTP handlers for the annotext API.
type Handler struct {
	svc      *Service
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	version  string
}

// NewHandler creates a new Handler backed by svc. Metrics are served from
// gatherer when it is not nil.
func NewHandler(svc *Service, gatherer prometheus.Gatherer, logger *slog.Logger, version string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, gatherer: gatherer, logger: logger, version: version}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /analyze", h.handleAnalyze)

	// Document ingestion and lookup.
	mux.HandleFunc("POST /documents", h.handleIngestDocuments)
	mux.HandleFunc("GET /fields/{field}/terms/{term}", h.handleTerm)

	mux.HandleFunc("POST /search", h.handleSearch)
	mux.HandleFunc("POST /highlight", h.handleHighlight)

	mux.HandleFunc("GET /health", h.handleHealth)
	if h.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
}

// Routes returns the API wrapped in the request logging middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return withRequestID(h.logger, mux)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   h.version,
		"documents": h.svc.DocCount(),
	})
}

// tokenJSON is the wire form of an analysis.Token.
type tokenJSON struct {
	Term              string `json:"term"`
	Type              string `json:"type"`
	Start             int    `json:"start"`
	End               int    `json:"end"`
	Position          int    `json:"position"`
	PositionIncrement int    `json:"position_increment"`
	PositionLength    int    `json:"position_length"`
}

func toTokenJSON(tokens []analysis.Token) []tokenJSON {
	out := make([]tokenJSON, len(tokens))
	for i, t := range tokens {
		out[i] = tokenJSON{
			Term:              t.Term,
			Type:              t.Type,
			Start:             t.StartByte,
			End:               t.EndByte,
			Position:          t.Position,
			PositionIncrement: t.PositionIncrement,
			PositionLength:    t.PositionLength,
		}
	}
	return out
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Analyzer string `json:"analyzer"`
		Field    string `json:"field"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tokens, err := h.svc.Analyze(req.Analyzer, req.Field, req.Text)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tokens": toTokenJSON(tokens),
	})
}

func (h *Handler) handleIngestDocuments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Documents []map[string]interface{} `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "no documents provided")
		return
	}

	docs := make([]indexing.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = indexing.Document{Fields: d}
	}

	n, err := h.svc.IndexDocuments(docs)
	if err != nil {
		writeJSON(w, statusFor(err), map[string]interface{}{
			"error": map[string]string{
				"message": err.Error(),
			},
			"documents_indexed": n,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "indexed",
		"documents_indexed": n,
	})
}

func (h *Handler) handleTerm(w http.ResponseWriter, r *http.Request) {
	field, term := r.PathValue("field"), r.PathValue("term")

	postings, err := h.svc.Postings(field, term)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if postings == nil {
		postings = []indexing.PostingEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"field":    field,
		"term":     term,
		"doc_freq": len(postings),
		"postings": postings,
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query json.RawMessage `json:"query"`
		Size  int             `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Query) == 0 {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Size <= 0 {
		req.Size = 10
	}

	q, err := query.Parse(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	res, err := h.svc.Search(q, req.Size)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"took_ms":    time.Since(start).Milliseconds(),
		"total_hits": res.Total,
		"hits":       res.Hits,
	})
}

func (h *Handler) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Analyzer string   `json:"analyzer"`
		Values   []string `json:"values"`
		ID       string   `json:"id"`
		Field    string   `json:"field"`
		Start    int      `json:"start"`
		End      *int     `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var (
		hl  *annotated.Highlighter
		err error
	)
	switch {
	case req.Values != nil && req.ID != "":
		writeError(w, http.StatusBadRequest, "provide either values or id and field, not both")
		return
	case req.Values != nil:
		hl, err = h.svc.Highlighter(req.Analyzer, req.Values)
	case req.ID != "" && req.Field != "":
		hl, err = h.svc.StoredHighlighter(req.ID, req.Field)
	default:
		writeError(w, http.StatusBadRequest, "values or id and field are required")
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	plain := hl.PlainTextValues()
	end := len(hl.PlainText(' '))
	if req.End != nil {
		end = *req.End
	}
	if req.Start < 0 || end < req.Start {
		writeError(w, http.StatusBadRequest, "invalid window: start must be non-negative and not after end")
		return
	}

	annotations := hl.IntersectingAnnotations(req.Start, end)
	if annotations == nil {
		annotations = []annotated.Annotation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"values":      plain,
		"annotations": annotations,
	})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrFieldNotFound), errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, indexing.ErrDuplicateDoc):
		return http.StatusConflict
	case errors.Is(err, indexing.ErrBufferFull), errors.Is(err, indexing.ErrWriterNotActive),
		errors.Is(err, engine.ErrQueryTimeout),
		errors.Is(err, engine.ErrPositionLimitExceeded),
		errors.Is(err, engine.ErrMatchLimitExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, analysis.ErrUnknownAnalyzer),
		errors.Is(err, annotated.ErrMalformedEscape),
		errors.Is(err, ErrNotAnnotated),
		errors.Is(err, ErrNoPositions),
		errors.Is(err, query.ErrInvalidQuery),
		errors.Is(err, indexing.ErrUnknownField),
		errors.Is(err, indexing.ErrFieldNotMultiValued),
		errors.Is(err, indexing.ErrInvalidFieldValue),
		errors.Is(err, indexing.ErrMissingID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := encodeJSON(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"message": message,
		},
	})
}
