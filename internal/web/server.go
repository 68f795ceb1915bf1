package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vitos/eth_take_profit/internal/domain"
	"github.com/vitos/eth_take_profit/internal/usecase"
	"go.uber.org/zap"
)

// Defaults pre-fill the form and fill query parameters the caller left out.
type Defaults struct {
	Asset        string
	Ladder       string
	Mode         domain.TriggerMode
	Inventory    domain.InventoryMode
	PRU          float64
	HeldQuantity float64
}

type Server struct {
	router   *http.ServeMux
	server   *http.Server
	service  *usecase.TakeProfitService
	defaults Defaults
	metrics  http.Handler
	logger   *zap.Logger
}

func NewServer(
	port int,
	service *usecase.TakeProfitService,
	defaults Defaults,
	metrics http.Handler,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:   http.NewServeMux(),
		service:  service,
		defaults: defaults,
		metrics:  metrics,
		logger:   logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Page
	s.router.HandleFunc("GET /{$}", s.handleIndex)

	// API
	s.router.HandleFunc("GET /api/status", s.handleStatusJSON)
	s.router.HandleFunc("GET /api/price", s.handlePriceJSON)

	// Ops
	s.router.HandleFunc("GET /status", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
