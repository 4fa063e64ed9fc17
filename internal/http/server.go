package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fiscal/internal/bills"
	"fiscal/internal/core"
	"fiscal/internal/log"
	"fiscal/internal/middleware/ratelimit"
	"fiscal/internal/middleware/security"
	"fiscal/internal/middleware/trace"
	"fiscal/internal/report"
)

type (
	// Ledger is the write side the handlers record through.
	Ledger interface {
		Record(ctx context.Context, c core.Candidate) (core.Transaction, error)
		Transactions() []core.Transaction
		ScheduleBill(ctx context.Context, b bills.Bill) (bills.Bill, error)
		Bills() []bills.Bill
		Ready(ctx context.Context) error
	}

	// Reports serves the derived views.
	Reports interface {
		Dashboard(ctx context.Context, now core.Date) (report.Dashboard, error)
		Insights(ctx context.Context, now core.Date, window int) (report.Insights, error)
	}
)

type Config struct {
	Addr         string
	RateLimitRPM int
	// UpcomingBills is the default number of upcoming bills listed.
	UpcomingBills int
	// Today returns the reference date used when a request omits ?date=.
	Today func() core.Date
}

type Server struct {
	http.Server
	ledger       Ledger
	reports      Reports
	today        func() core.Date
	upcoming     int
	logger       *log.Logger
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, ledger Ledger, reports Reports, logger *log.Logger) *Server {
	logger = logger.WithComponent(log.ComponentHTTP)
	today := cfg.Today
	if today == nil {
		today = func() core.Date { return core.DateOf(time.Now()) }
	}

	upcoming := cfg.UpcomingBills
	if upcoming <= 0 {
		upcoming = report.DefaultOptions().UpcomingBills
	}

	s := &Server{
		ledger:   ledger,
		reports:  reports,
		today:    today,
		upcoming: upcoming,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitRPM}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("POST /api/bills", s.handleCreateBill)

	detector := security.NewDetector(logger)
	tracer := trace.NewMiddleware(detector.ExtractClientIP, logger)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, detector.ExtractClientIP(r), log.FieldPath, r.URL.Path)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})

	// Outermost first: trace, security headers, detection, rate limit.
	var handler http.Handler = mux
	handler = limit(handler)
	handler = detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ledger.Ready(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
