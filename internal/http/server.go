package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"budgeter/internal/cache"
	"budgeter/internal/log"
	"budgeter/internal/services"
	"budgeter/internal/session"
	appweb "budgeter/web"
)

type requestIDKey struct{}

// Options tunes a Server. Zero values fall back to sensible defaults.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger

	// Now drives the month shown in the page header.
	Now func() time.Time
}

// Server serves the budget UI. Each browser session gets its own ledger.
type Server struct {
	http.Server
	templates   *template.Template
	service     *services.BudgetService
	sessions    *session.Store
	rateLimiter *rateLimiter
	logger      *log.Logger
	now         func() time.Time
	metrics     appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	started    time.Time
	requests   atomic.Int64
	added      atomic.Int64
	deleted    atomic.Int64
	suspicious atomic.Int64
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.BudgetService, sessions *session.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		service:     svc,
		sessions:    sessions,
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		logger:      logger.WithComponent(log.ComponentHTTP),
		now:         now,
	}
	s.metrics.started = time.Now()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err.Error())
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.Handle("/", s.chain(s.handleIndex))
	mux.Handle("/entries", s.chain(s.handleEntries))
	mux.Handle("/entries/delete", s.chain(s.handleDeleteEntry))
	mux.Handle("/ui/ledger", s.chain(s.handleLedgerPartial))
	mux.Handle("/api/summary", s.chain(s.handleSummary))

	return s
}

// RateLimiter exposes the limiter so a cache.Manager can sweep idle clients.
func (s *Server) RateLimiter() cache.Cleaner {
	return s.rateLimiter
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// chain wraps an application handler with request ids, the request logger and instrumentation.
func (s *Server) chain(h http.HandlerFunc) http.Handler {
	var handler http.Handler = s.instrument(h)
	handler = log.RequestIDMiddleware(requestIDFromContext)(handler)
	handler = log.Middleware(s.logger)(handler)
	return withRequestID(handler)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// instrument applies rate limiting to mutating requests, sets security headers
// and logs the request.
func (s *Server) instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		clientIP := extractClientIP(r)
		sl := log.NewStructuredLogger(log.FromContext(ctx))
		s.metrics.requests.Add(1)
		sl.LogHTTPStart(ctx, r, clientIP)

		if reason := suspiciousReason(r); reason != "" {
			s.metrics.suspicious.Add(1)
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				"reason", reason)
		}

		setSecurityHeaders(w.Header())
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			log.FromContext(ctx).WithComponent(log.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			notifyHTMX(r, TooManyRequestsError(s.rateLimiter.retryAfter()), tooManyRequestsMessage).Write(rw)
		} else {
			next(rw, r)
		}

		sl.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodDelete
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// session returns the caller's session, creating it and setting the cookie on first use.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(session.CookieName); err == nil {
		id = c.Value
	}

	sess, created := s.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// render executes a template into a buffer so a failing template never sends a partial page.
func (s *Server) render(ctx context.Context, name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, errTemplatesNotLoaded
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.NewFields().WithTemplate(name))
		return nil, err
	}
	return buf.Bytes(), nil
}
