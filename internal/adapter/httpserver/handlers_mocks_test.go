package httpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Brinda301/sessiongate/internal/adapter/metrics"
	"github.com/Brinda301/sessiongate/internal/domain"
	"github.com/Brinda301/sessiongate/internal/platform/config"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// --- Mock implementations ---

type mockAppService struct {
	registerFn     func(ctx context.Context, username, displayName, password string) (*domain.User, error)
	loginFn        func(ctx context.Context, username, password string) (*domain.User, string, error)
	resolveTokenFn func(ctx context.Context, token string) (*domain.User, error)
	logoutFn       func(ctx context.Context, token string) error
}

func (m *mockAppService) Register(ctx context.Context, username, displayName, password string) (*domain.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, username, displayName, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return nil, "", errors.New("not implemented")
}

func (m *mockAppService) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	if m.resolveTokenFn != nil {
		return m.resolveTokenFn(ctx, token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *mockAppService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	e := echo.New()
	registry := prometheus.NewRegistry()
	authMetrics := metrics.NewAuthMetrics(registry)

	srv := &Server{
		echo:        e,
		config:      &config.Config{AppEnv: "test", Port: "8080"},
		app:         app,
		originGate:  NewOriginGate("", authMetrics),
		registry:    registry,
		httpMetrics: metrics.NewHTTPMetrics(registry),
		authMetrics: authMetrics,
		startTime:   time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withAllowedOrigins(origins string) func(*Server) {
	return func(s *Server) {
		s.originGate = NewOriginGate(origins, s.authMetrics)
	}
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}
