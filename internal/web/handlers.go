package web

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arturomorarioja/csv-parser-api/internal/audit"
	"github.com/arturomorarioja/csv-parser-api/internal/core"
	"github.com/arturomorarioja/csv-parser-api/internal/logging"
)

const (
	routeParseQuery = "/parse"
	routeParsePath  = "/parse/*"
	routePreview    = "/preview"
)

// handleParseQuery serves GET /parse?file=<path>.
func (s *Server) handleParseQuery(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("file")
	if input == "" {
		err := core.NewInvalidInput("parse", "Missing ?file= query parameter.")
		status := respondError(w, r, err)
		s.recordParse(r, routeParseQuery, input, nil, status, err, 0)
		return
	}
	s.serveParse(w, r, routeParseQuery, input)
}

// handleParsePath serves GET /parse/<path>. The wildcard may span several
// segments; percent-escapes are decoded so "a%2Fb.csv" means "a/b.csv".
func (s *Server) handleParsePath(w http.ResponseWriter, r *http.Request) {
	input := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(input); err == nil {
			input = decoded
		}
	}
	s.serveParse(w, r, routeParsePath, input)
}

// serveParse runs a parse and writes the records or the error envelope.
func (s *Server) serveParse(w http.ResponseWriter, r *http.Request, route, input string) {
	start := time.Now()
	result, err := s.service.Parse(r.Context(), input)
	if err != nil {
		status := respondError(w, r, err)
		s.recordParse(r, route, input, nil, status, err, time.Since(start))
		return
	}

	logging.FromContext(r.Context()).Debug("parsed file",
		"path", result.Path,
		"rows", len(result.Records),
		"duration_ms", result.Duration.Milliseconds(),
	)
	writeJSON(w, http.StatusOK, result.Records)
	s.recordParse(r, route, input, result, http.StatusOK, nil, time.Since(start))
}

// handlePreview serves GET /preview?file=<path> as an HTML table.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	input := r.URL.Query().Get("file")

	var (
		result *core.ParseResult
		err    error
	)
	if input == "" {
		err = core.NewInvalidInput("preview", "Missing ?file= query parameter.")
	} else {
		result, err = s.service.Parse(r.Context(), input)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		status, msg := logError(r, err)
		w.WriteHeader(status)
		if rerr := ErrorPage(msg, status).Render(r.Context(), w); rerr != nil {
			logging.FromContext(r.Context()).Error("render error page", "error", rerr)
		}
		s.recordParse(r, routePreview, input, nil, status, err, time.Since(start))
		return
	}

	var buf bytes.Buffer
	if rerr := PreviewPage(input, result).Render(r.Context(), &buf); rerr != nil {
		status := respondError(w, r, rerr)
		s.recordParse(r, routePreview, input, result, status, rerr, time.Since(start))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	s.recordParse(r, routePreview, input, result, http.StatusOK, nil, time.Since(start))
}

// HealthResponse is the JSON form of GET /healthz.
type HealthResponse struct {
	Status string             `json:"status"`
	Parses core.LimiterStatus `json:"parses"`
}

// handleHealth answers "ok", or a JSON body with limiter usage when the
// client accepts JSON.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Parses: s.service.LimiterStatus()})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// recordParse queues an audit entry. It is a no-op when auditing is off.
func (s *Server) recordParse(r *http.Request, route, input string, result *core.ParseResult, status int, err error, elapsed time.Duration) {
	if s.audit == nil {
		return
	}
	ip, ua := audit.ClientFromContext(r.Context())
	entry := audit.Entry{
		RequestID: middleware.GetReqID(r.Context()),
		Route:     route,
		Input:     input,
		Status:    status,
		IPAddress: ip,
		UserAgent: ua,
		Duration:  elapsed,
	}
	if result != nil {
		entry.ResolvedPath = result.Path
		entry.Rows = len(result.Records)
	}
	if err != nil {
		entry.ErrorCode = core.ErrorCode(err)
	}
	s.audit.Record(entry)
}

// writeJSON encodes v with two-space indentation and without HTML escaping.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"status":500,"message":"Internal Server Error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
