package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"budgeter/internal/format"
	"budgeter/internal/log"
	"budgeter/internal/services"
)

var errTemplatesNotLoaded = errors.New("templates not loaded")

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the server can render pages and hold sessions.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: " + errTemplatesNotLoaded.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.sessions == nil || s.service == nil {
		checks["sessions"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["sessions"] = map[string]any{
			"active": s.sessions.Len(),
			"status": "ok",
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics exposes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	sessions := 0
	if s.sessions != nil {
		sessions = s.sessions.Len()
	}

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", s.metrics.requests.Load())

	fmt.Fprintf(w, "# HELP ledger_entries_added_total Entries added across all sessions\n")
	fmt.Fprintf(w, "# TYPE ledger_entries_added_total counter\n")
	fmt.Fprintf(w, "ledger_entries_added_total %d\n\n", s.metrics.added.Load())

	fmt.Fprintf(w, "# HELP ledger_entries_deleted_total Entries deleted across all sessions\n")
	fmt.Fprintf(w, "# TYPE ledger_entries_deleted_total counter\n")
	fmt.Fprintf(w, "ledger_entries_deleted_total %d\n\n", s.metrics.deleted.Load())

	fmt.Fprintf(w, "# HELP sessions_active Live budget sessions\n")
	fmt.Fprintf(w, "# TYPE sessions_active gauge\n")
	fmt.Fprintf(w, "sessions_active %d\n\n", sessions)

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", s.rateLimiter.Hits())

	fmt.Fprintf(w, "# HELP suspicious_requests_total Requests matching attack patterns\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", s.metrics.suspicious.Load())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.metrics.started).Seconds())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if fail := RequireMethod(r, http.MethodGet, http.MethodHead); fail != nil {
		fail.Write(w)
		return
	}

	snap := s.service.Snapshot(s.session(w, r))
	body, err := s.render(r.Context(), "index.html", pageView{
		MonthTitle: format.MonthTitle(s.now()),
		Ledger:     newLedgerView(snap),
	})
	if err != nil {
		s.renderFailed(w, r, err)
		return
	}
	NewHTMXResponse().BodyHTML(string(body)).Write(w)
}

// handleLedgerPartial renders the summary and both lists for htmx swaps.
func (s *Server) handleLedgerPartial(w http.ResponseWriter, r *http.Request) {
	if fail := RequireMethod(r, http.MethodGet); fail != nil {
		fail.Write(w)
		return
	}
	s.writeLedger(w, r, s.service.Snapshot(s.session(w, r)), NewHTMXResponse())
}

// handleSummary returns the current summary and expense percentages as JSON.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if fail := RequireMethod(r, http.MethodGet); fail != nil {
		fail.Write(w)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(s.service.Snapshot(s.session(w, r))))
}

func (s *Server) writeLedger(w http.ResponseWriter, r *http.Request, snap services.Snapshot, resp *HTMXResponseBuilder) {
	body, err := s.render(r.Context(), "ledger", newLedgerView(snap))
	if err != nil {
		s.renderFailed(w, r, err)
		return
	}
	resp.BodyHTML(string(body)).Write(w)
}

func (s *Server) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errTemplatesNotLoaded) {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			"error_type", log.ErrorTypeConfiguration)
	}
	InternalServerError("Unable to render page").Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
