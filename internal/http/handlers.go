package http

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"timesheet/internal/core"
	applog "timesheet/internal/log"
)

type indexData struct {
	Today          string
	MaxDescription int
	Entries        []core.Entry
	LoadError      string
}

type invoicesData struct {
	Rate  string
	Start string
	End   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Today:          core.FormatDate(s.now()),
		MaxDescription: core.MaxDescriptionLen,
	}
	entries, err := s.entries.Recent(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentEntry).
			ErrorContext(r.Context(), "Failed to load recent entries", applog.FieldError, err)
		data.LoadError = "Could not load recent entries."
	}
	data.Entries = entries
	s.render(w, r, "index.html", data)
}

// handleInvoicesPage pre-fills a range covering the current month. Bounds
// are exclusive, so the range runs from the last day of the previous month
// to the first day of the next.
func (s *Server) handleInvoicesPage(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	s.render(w, r, "invoices.html", invoicesData{
		Rate:  s.invoices.Rate().StringFixed(2),
		Start: core.FormatDate(first.AddDate(0, 0, -1)),
		End:   core.FormatDate(first.AddDate(0, 1, 0)),
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template render failed",
			"template", name, applog.FieldError, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) ping(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.health.Ping(ctx)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.ping(r.Context()); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
			applog.FieldBackend, s.backend, applog.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type debugInfo struct {
	Message     string            `json:"message"`
	Backend     string            `json:"backend"`
	Environment map[string]string `json:"environment"`
	Timestamp   string            `json:"timestamp"`
}

// handleDebug reports which settings are present. Values are never echoed.
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	env := make(map[string]string, len(s.settings))
	for k, present := range s.settings {
		env[k] = "MISSING"
		if present {
			env[k] = "SET"
		}
	}
	NewJSONResponse().Body(debugInfo{
		Message:     "Debug endpoint",
		Backend:     s.backend,
		Environment: env,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
	}).Write(w)
}

type connectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Backend string `json:"backend"`
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	name := s.backend
	if name == "" {
		name = "storage"
	}
	if err := s.ping(r.Context()); err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentBackend).ErrorContext(r.Context(),
			"Connection test failed", applog.FieldBackend, name, applog.FieldError, err)
		InternalServerError(titleCase(name)+" connection failed", err).Write(w)
		return
	}
	NewJSONResponse().Body(connectionResult{
		Success: true,
		Message: titleCase(name) + " connection successful",
		Backend: name,
	}).Write(w)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
