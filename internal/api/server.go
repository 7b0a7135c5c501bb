package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/metrics"
)

// Service is the account behavior the API exposes.
// Implemented by *referral.Service.
type Service interface {
	CreateAccount(ctx context.Context, raw account.RawItem) (account.Account, error)
	CreateAccountsBulk(ctx context.Context, raws []account.RawItem) ([]account.Account, error)
	ListAccounts(ctx context.Context) ([]account.Account, error)
}

// Pinger reports whether the ledger is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Service Service
	Health  Pinger

	// Logger defaults to discard.
	Logger *slog.Logger

	// Metrics is optional. When nil, /metrics is not routed and requests
	// are not instrumented.
	Metrics *metrics.Collector

	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty disables CORS.
	CORSOrigin string
}

// Server holds the handlers and their dependencies.
type Server struct {
	svc        Service
	health     Pinger
	logger     *slog.Logger
	metrics    *metrics.Collector
	corsOrigin string
}

// NewServer creates a Server from opts.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		svc:        opts.Service,
		health:     opts.Health,
		logger:     logger,
		metrics:    opts.Metrics,
		corsOrigin: opts.CORSOrigin,
	}
}

// Router builds the route table with its middleware chain.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware(s.logger))
	if s.metrics != nil {
		r.Use(metricsMiddleware(s.metrics))
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/accounts", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/accounts/bulk", s.handleBulk).Methods(http.MethodPost)
	r.HandleFunc("/accounts", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler returns the complete HTTP handler. CORS wraps the router so that
// preflight requests are answered before route matching.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.Router())
	if s.corsOrigin != "" {
		h = corsMiddleware(s.corsOrigin)(h)
	}
	return h
}
