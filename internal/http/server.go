package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/ledger"
	"cashflow/internal/log"
	"cashflow/internal/middleware/ratelimit"
	"cashflow/internal/middleware/security"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/report"
	"cashflow/internal/services"
)

// Options tune the server. Zero values fall back to defaults.
type Options struct {
	Logger            *log.Logger
	Now               func() time.Time
	TrendMonths       int
	CacheSize         int
	CacheTTL          time.Duration
	RequestsPerMinute int
}

type Server struct {
	http.Server
	svc    *services.LedgerService
	store  *ledger.Store
	logger *log.Logger
	now    func() time.Time

	trendMonths int

	// Derived views keyed by ledger version.
	views        *cache.LRUCache[any]
	cacheManager *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	metrics      appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime       time.Time
	transactions int64
}

// NewServer wires the JSON API over svc.
func NewServer(addr string, svc *services.LedgerService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TrendMonths <= 0 {
		opts.TrendMonths = report.DefaultMonths
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	s := &Server{
		svc:              svc,
		store:            svc.Store(),
		logger:           opts.Logger.WithComponent(log.ComponentHTTP),
		now:              opts.Now,
		trendMonths:      opts.TrendMonths,
		views:            cache.NewLRUCache[any](opts.CacheSize, opts.CacheTTL),
		cacheManager:     cache.NewManager(opts.Logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		securityDetector: security.NewDetector(),
	}
	s.metrics.uptime = time.Now()
	s.traceMiddleware = trace.NewMiddleware(opts.Logger, s.securityDetector.ExtractClientIP)

	s.cacheManager.Register(s.views)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /api/transactions/income", s.handleCreateIncome)
	mux.HandleFunc("POST /api/transactions/expense", s.handleCreateExpense)
	mux.HandleFunc("POST /api/transactions/transfer", s.handleCreateTransfer)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/wallets", s.handleListWallets)
	mux.HandleFunc("POST /api/wallets", s.handleCreateWallet)
	mux.HandleFunc("PATCH /api/wallets/{id}", s.handleUpdateWallet)
	mux.HandleFunc("DELETE /api/wallets/{id}", s.handleDeleteWallet)

	mux.HandleFunc("GET /api/budget-items", s.handleListBudgetItems)
	mux.HandleFunc("POST /api/budget-items", s.handleCreateBudgetItem)
	mux.HandleFunc("PATCH /api/budget-items/{id}", s.handleUpdateBudgetItem)
	mux.HandleFunc("DELETE /api/budget-items/{id}", s.handleDeleteBudgetItem)
	mux.HandleFunc("POST /api/budget-items/{id}/use", s.handleUseBudget)
	mux.HandleFunc("GET /api/budget-summary", s.handleBudgetSummary)

	mux.HandleFunc("GET /api/reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /api/reports/categories", s.handleCategoryReport)
	mux.HandleFunc("GET /api/reports/overview", s.handleOverviewReport)
}

// cached returns the view for key at the current ledger version.
func cached[T any](s *Server, view string, compute func() T, parts ...string) T {
	key := cache.VersionedKey(view, s.store.Version(), parts...)
	if v, ok := s.views.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed
		}
	}
	v := compute()
	s.views.Set(key, v)
	return v
}

func (s *Server) recordTransaction() {
	atomic.AddInt64(&s.metrics.transactions, 1)
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
