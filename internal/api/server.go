// Package api exposes the admission and quote services over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rxtech-lab/securities-trading/internal/admission"
	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/internal/quote"
)

// Server is the HTTP front end.
type Server struct {
	admission  *admission.Service
	quotes     *quote.Service
	logger     *logger.Logger
	httpServer *http.Server
}

// NewServer creates the HTTP server on addr with all routes registered.
func NewServer(addr string, admissionService *admission.Service, quoteService *quote.Service, logger *logger.Logger) *Server {
	s := &Server{
		admission: admissionService,
		quotes:    quoteService,
		logger:    logger,
	}

	router := mux.NewRouter()
	router.Use(s.requestLogging)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/orders", s.handleCreateOrder).Methods(http.MethodPost)
	v1.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	v1.HandleFunc("/orders/{id:[0-9]+}", s.handleGetOrder).Methods(http.MethodGet)
	v1.HandleFunc("/stocks/{symbol}", s.handleGetStock).Methods(http.MethodGet)
	v1.HandleFunc("/stocks/{symbol}/quote", s.handleGetQuote).Methods(http.MethodGet)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening")

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
