// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"hisab/internal/cache"
	applog "hisab/internal/log"
	"hisab/internal/middleware/ratelimit"
	"hisab/internal/middleware/security"
	"hisab/internal/middleware/trace"
	"hisab/internal/report"
	"hisab/internal/services"
)

type Options struct {
	Logger          *applog.Logger
	ReportCacheSize int
	ReportCacheTTL  time.Duration
	// RequestsPerMinute limits writes per client; zero uses the limiter default.
	RequestsPerMinute int
	// Ready reports whether backing services are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger  *services.LedgerService
	reports *cache.LRUCache[report.Report]
	caches  *cache.Manager
	limiter *ratelimit.Limiter
	ready   func(ctx context.Context) error

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = 32
	}

	s := &Server{
		ledger:  ledger,
		reports: cache.NewLRUCache[report.Report](opts.ReportCacheSize, opts.ReportCacheTTL),
		caches:  cache.NewManager(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		ready:   opts.Ready,
	}
	s.caches.Register(s.reports)
	if opts.ReportCacheTTL > 0 {
		s.caches.StartCleanup(opts.ReportCacheTTL)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /history", s.handleHistory)

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /categories/{name}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /categories/{name}", s.handleDeleteCategory)

	mux.HandleFunc("POST /suggest", s.handleSuggest)
	mux.HandleFunc("POST /amount", s.handleAmount)

	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /report/chart", s.handleReportChart)
	mux.HandleFunc("POST /report/exports", s.handleCreateExport)

	detector := security.NewDetector()
	tracer := trace.NewMiddleware(opts.Logger.WithComponent(applog.ComponentHTTP), detector.ClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ClientIP)(h)
	h = headers.Middleware(h)
	h = detector.Middleware(h)
	h = tracer.Handler(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			ErrorResponse(http.StatusServiceUnavailable, "not ready: "+err.Error()).Write(w)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
