package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spentify/internal/auth"
	"spentify/internal/cache"
	"spentify/internal/core"
	"spentify/internal/insights"
	"spentify/internal/log"
	"spentify/internal/middleware/ratelimit"
	"spentify/internal/middleware/security"
	"spentify/internal/middleware/trace"
	"spentify/internal/ports"
)

// RecordService is what the handlers need from the record layer.
type RecordService interface {
	AddRecord(ctx context.Context, user core.User, in core.RecordInput) (core.Record, error)
	DeleteRecord(ctx context.Context, userID, recordID string) error
	ListRecords(ctx context.Context, userID string) ([]core.Record, error)
	AllRecords(ctx context.Context, userID string) ([]core.Record, error)
	Stats(ctx context.Context, userID string) (core.Stats, error)
}

// Deps are the collaborators of the server. Health, Auth and AuthHandlers may be nil.
type Deps struct {
	Records      RecordService
	Insights     insights.Generator
	Health       ports.HealthChecker
	Auth         *auth.Authenticator
	AuthHandlers *auth.Handlers
	Logger       *log.Logger

	CurrencySymbol     string
	RateLimitPerMinute int
	HomeCacheSize      int
	HomeCacheTTL       time.Duration
	TrustedProxies     []string
}

// Home is the composed landing view.
type Home struct {
	User     core.User     `json:"user"`
	Stats    core.Stats    `json:"stats"`
	Records  []core.Record `json:"records"`
	Currency string        `json:"currency"`
}

type Server struct {
	http.Server
	records  RecordService
	insights insights.Generator
	health   ports.HealthChecker
	logger   *log.Logger
	symbol   string

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector

	// Home views keyed by user id, dropped on every write by that user.
	homeCache    *cache.LRUCache[Home]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	symbol := deps.CurrencySymbol
	if symbol == "" {
		symbol = core.DefaultCurrencySymbol
	}
	cacheSize := deps.HomeCacheSize
	if cacheSize <= 0 {
		cacheSize = 1000
	}
	cacheTTL := deps.HomeCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	s := &Server{
		records:  deps.Records,
		insights: deps.Insights,
		health:   deps.Health,
		logger:   logger,
		symbol:   symbol,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		detector:     security.NewDetector(logger),
		homeCache:    cache.NewLRUCache[Home](cacheSize, cacheTTL),
		cacheManager: cache.NewManager(logger),
	}
	for _, cidr := range deps.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.cacheManager.Register(s.homeCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	requireUser := func(h http.HandlerFunc) http.Handler { return h }
	if deps.Auth != nil {
		requireUser = func(h http.HandlerFunc) http.Handler { return deps.Auth.RequireUser(h) }
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	if deps.AuthHandlers != nil {
		mux.HandleFunc("GET /auth/login", deps.AuthHandlers.Login)
		mux.HandleFunc("GET /auth/callback", deps.AuthHandlers.Callback)
		mux.HandleFunc("POST /auth/logout", deps.AuthHandlers.Logout)
	}

	mux.Handle("GET /api/me", requireUser(s.handleMe))
	mux.Handle("GET /api/home", requireUser(s.handleHome))
	mux.Handle("GET /api/records", requireUser(s.handleListRecords))
	mux.Handle("POST /api/records", requireUser(s.handleAddRecord))
	mux.Handle("DELETE /api/records/{id}", requireUser(s.handleDeleteRecord))
	mux.Handle("GET /api/stats", requireUser(s.handleStats))
	mux.Handle("GET /api/insights", requireUser(s.handleInsights))
	mux.Handle("POST /api/insights/ask", requireUser(s.handleAsk))
	mux.Handle("POST /api/categorize", requireUser(s.handleCategorize))
	mux.HandleFunc("GET /api/categories", handleCategories)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldPath, r.URL.Path)
		TooManyRequestsError(msgRateLimited).Write(w)
	})
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(headers.Middleware(s.detector.Middleware(limit(mux)))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) invalidateHome(userID string) {
	s.homeCache.Delete(userID)
}
