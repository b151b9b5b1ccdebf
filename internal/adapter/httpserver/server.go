package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Brinda301/sessiongate/internal/adapter/metrics"
	"github.com/Brinda301/sessiongate/internal/domain"
	"github.com/Brinda301/sessiongate/internal/platform/config"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type appService interface {
	Register(ctx context.Context, username, displayName, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app appService

	originGate  *OriginGate
	registry    *prometheus.Registry
	httpMetrics *metrics.HTTPMetrics
	authMetrics *metrics.AuthMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, registry *prometheus.Registry, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	authMetrics := metrics.NewAuthMetrics(registry)

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		originGate:   NewOriginGate(cfg.AllowedOrigins, authMetrics),
		registry:     registry,
		httpMetrics:  metrics.NewHTTPMetrics(registry),
		authMetrics:  authMetrics,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

// Handler exposes the routing tree for in-process tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
