// Package http serves the defect reports as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"invdefects/internal/amqp"
	"invdefects/internal/core"
	applog "invdefects/internal/log"
)

// ReportProvider returns the cached report bundle and can drop it.
type ReportProvider interface {
	Reports(ctx context.Context) (core.ReportBundle, error)
	Invalidate()
}

// RefreshRequester asks the worker to republish the reports.
type RefreshRequester interface {
	PublishRefresh(ctx context.Context, reason string) (*amqp.RefreshRequest, error)
}

// Options wires the optional collaborators of the server.
type Options struct {
	// Refresher, when set, forwards POST /refresh to the worker queue.
	Refresher RefreshRequester
	// Ready reports whether the data source is reachable.
	Ready func(ctx context.Context) error
	// Logger is injected into every request context.
	Logger *applog.Logger
	// RefreshLimit caps refresh calls per client per minute.
	RefreshLimit int
	// ReportTimeout bounds one report computation.
	ReportTimeout time.Duration
}

type Server struct {
	http.Server
	reports       ReportProvider
	refresher     RefreshRequester
	ready         func(ctx context.Context) error
	rateLimiter   *rateLimiter
	metrics       *securityMetrics
	reportTimeout time.Duration

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, reports ReportProvider, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}
	if opts.RefreshLimit <= 0 {
		opts.RefreshLimit = 10
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = 30 * time.Second
	}

	s := &Server{
		reports:       reports,
		refresher:     opts.Refresher,
		ready:         opts.Ready,
		rateLimiter:   newRateLimiter(opts.RefreshLimit, time.Minute),
		metrics:       &securityMetrics{},
		reportTimeout: opts.ReportTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/v1/reports", s.handleBundle)
	mux.HandleFunc("GET /api/v1/reports/export.xlsx", s.handleExportXLSX)
	mux.HandleFunc("GET /api/v1/reports/{name}", s.handleReport)
	mux.HandleFunc("POST /api/v1/reports/refresh", s.handleRefresh)

	var handler http.Handler = mux
	handler = s.withSecurity(handler)
	handler = applog.AccessLogMiddleware(extractClientIP)(handler)
	handler = applog.RequestIDMiddleware(requestID)(handler)
	handler = withRequestID(handler)
	handler = applog.Middleware(opts.Logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

type requestIDKey struct{}

// withRequestID reuses an incoming X-Request-ID or mints a UUID, echoes it
// back and stores it in the request context.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// withSecurity sets security headers, rejects probing requests and rate
// limits POST requests.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w.Header())

		if isSuspicious(r, s.metrics) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request rejected",
				applog.FieldClientIP, extractClientIP(r), applog.FieldPath, r.URL.Path)
			writeError(w, http.StatusBadRequest, "bad request")
			return
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(extractClientIP(r), s.metrics) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
