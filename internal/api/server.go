package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"workdays/internal/calendar"
	"workdays/internal/holidays"
)

// Server is the public HTTP API for working-date calculations.
type Server struct {
	engine   *calendar.Engine
	holidays *holidays.Service
	logger   *zerolog.Logger
	now      func() time.Time
	server   *http.Server
}

// NewServer builds the API server with all routes and middleware attached.
func NewServer(port int, engine *calendar.Engine, holidaySvc *holidays.Service, logger *zerolog.Logger) *Server {
	s := &Server{
		engine:   engine,
		holidays: holidaySvc,
		logger:   logger,
		now:      time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/api/working-days", s.handleWorkingDays)
	mux.HandleFunc("/api/admin/holidays/refresh", s.handleRefresh)
	mux.HandleFunc("/api/admin/holidays/export", s.handleExport)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.recoverPanics(s.logRequests(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler exposes the full middleware chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
