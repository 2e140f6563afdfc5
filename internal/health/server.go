// Package health exposes liveness and metrics endpoints for a process
// supervisor.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HeartbeatFunc returns the scheduler's last sign of life.
type HeartbeatFunc func() time.Time

// Status is the /healthz response body.
type Status struct {
	Status        string    `json:"status"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	Age           string    `json:"age"`
}

// Server wraps an Echo instance serving /healthz and /metrics.
type Server struct {
	echo      *echo.Echo
	addr      string
	heartbeat HeartbeatFunc
	staleness time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// NewServer creates the server. A heartbeat older than staleness makes
// /healthz report 503. gatherer may be nil to use the default registry.
func NewServer(addr string, heartbeat HeartbeatFunc, staleness time.Duration, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		addr:      addr,
		heartbeat: heartbeat,
		staleness: staleness,
		now:       time.Now,
		logger:    log.With().Str("component", "health").Logger(),
	}

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

func (s *Server) healthz(c echo.Context) error {
	last := s.heartbeat()
	status := Status{Status: "ok", LastHeartbeat: last}

	if last.IsZero() {
		status.Status = "starting"
		return c.JSON(http.StatusServiceUnavailable, status)
	}

	age := s.now().Sub(last)
	status.Age = age.Truncate(time.Second).String()
	if age > s.staleness {
		status.Status = "stale"
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	return c.JSON(http.StatusOK, status)
}

// Start serves in the background until Stop is called.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("Health server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Health server error")
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}
