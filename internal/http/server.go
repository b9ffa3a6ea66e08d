package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"budgetplanner/internal/core"
	"budgetplanner/internal/dashboard"
	"budgetplanner/internal/log"
	"budgetplanner/internal/middleware/ratelimit"
	"budgetplanner/internal/middleware/security"
	"budgetplanner/internal/middleware/trace"
	"budgetplanner/internal/query"
	"budgetplanner/internal/render"
	"budgetplanner/internal/window"
)

// Store is the transaction store the API reads and mutates.
type Store interface {
	List() []core.Transaction
	Get(id string) (core.Transaction, bool)
	Len() int
	Revision() uint64
	Add(ctx context.Context, n core.NewTransaction) (core.Transaction, error)
	Update(ctx context.Context, id string, p core.Patch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Config holds the server settings taken from the application config.
// TrustedProxies are CIDRs, besides loopback and private ranges, whose
// forwarding headers name the client.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	CurrencySymbol     string
	PageSize           int
	DefaultRange       window.Range
	TrustedProxies     []string
	Logger             *log.Logger
}

// appMetrics holds the counters reported by /metrics.
type appMetrics struct {
	created int64
	updated int64
	deleted int64
	uptime  time.Time
}

// Server serves the JSON API and the plain-text dashboard.
type Server struct {
	http.Server

	store  Store
	dash   *dashboard.Service
	render render.Renderer
	logger *log.Logger

	pageSize     int
	defaultRange window.Range

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       appMetrics

	draining     atomic.Bool
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Call Shutdown to stop it and its background goroutines.
func NewServer(cfg Config, st Store, dash *dashboard.Service) *Server {
	logger := log.OrDefault(cfg.Logger).WithComponent(log.ComponentHTTP)
	if cfg.PageSize <= 0 {
		cfg.PageSize = query.DefaultPageSize
	}
	if cfg.DefaultRange == "" {
		cfg.DefaultRange = window.Month
	}

	s := &Server{
		store:            st,
		dash:             dash,
		render:           render.New(cfg.CurrencySymbol),
		logger:           logger,
		pageSize:         cfg.PageSize,
		defaultRange:     cfg.DefaultRange,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		appMetrics:       appMetrics{uptime: time.Now()},
	}
	for _, cidr := range cfg.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(strings.TrimSpace(cidr)); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleDashboardText)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	s.Server = http.Server{
		Addr: cfg.Addr,
		Handler: chain(mux,
			log.Middleware(logger),
			s.traceMiddleware.Middleware,
			log.RequestIDMiddleware(trace.RequestID),
			s.securityDetector.Middleware,
			security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
			s.limitMutations,
		),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// chain wraps h so that the first middleware is the outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// limitMutations applies the rate limiter to requests that change data.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldURLPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.draining.Store(true)
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
