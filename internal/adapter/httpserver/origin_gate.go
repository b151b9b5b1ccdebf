package httpserver

import (
	"net/http"
	"strings"

	"github.com/Brinda301/sessiongate/internal/adapter/metrics"
	apperrors "github.com/Brinda301/sessiongate/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

// defaultDevOrigins are always admitted so local frontend dev servers work
// without configuration.
var defaultDevOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// OriginGate admits or rejects browser requests based on their Origin header.
// It runs before routing, so even unmatched paths answer preflights.
type OriginGate struct {
	allowed  map[string]struct{}
	allowAll bool
	metrics  *metrics.AuthMetrics
}

// NewOriginGate builds the gate from a comma-separated origin list. The
// default dev origins are always included. An empty list admits every origin.
func NewOriginGate(allowedOrigins string, m *metrics.AuthMetrics) *OriginGate {
	configured := splitOrigins(allowedOrigins)

	gate := &OriginGate{
		allowed:  make(map[string]struct{}),
		allowAll: len(configured) == 0,
		metrics:  m,
	}

	for _, origin := range defaultDevOrigins {
		gate.allowed[NormalizeOrigin(origin)] = struct{}{}
	}
	for _, origin := range configured {
		gate.allowed[NormalizeOrigin(origin)] = struct{}{}
	}

	return gate
}

func splitOrigins(list string) []string {
	var origins []string
	for _, part := range strings.Split(list, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// NormalizeOrigin trims whitespace and strips at most one trailing slash, so
// "https://app.example.com/" and "https://app.example.com" compare equal.
func NormalizeOrigin(origin string) string {
	origin = strings.TrimSpace(origin)
	origin = strings.TrimSuffix(origin, "/")
	return origin
}

// Admits reports whether a request carrying the given Origin header may pass.
// Requests without an Origin header (same-origin, curl, server-to-server) are
// always admitted.
func (g *OriginGate) Admits(origin string) bool {
	if origin == "" || g.allowAll {
		return true
	}
	_, ok := g.allowed[NormalizeOrigin(origin)]
	return ok
}

// Middleware enforces the gate. Rejected requests get a 403 before any route
// handler runs. Admitted cross-origin requests are stamped for a credentialed
// exchange, and preflights are answered directly.
func (g *OriginGate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)

			if !g.Admits(origin) {
				g.metrics.OriginRejectionsTotal.Inc()
				return apperrors.ForbiddenError("Not allowed by CORS").
					WithContext("origin", origin)
			}

			if origin != "" {
				header := c.Response().Header()
				header.Set(echo.HeaderAccessControlAllowOrigin, origin)
				header.Set(echo.HeaderAccessControlAllowCredentials, "true")
				header.Add(echo.HeaderVary, echo.HeaderOrigin)

				if c.Request().Method == http.MethodOptions {
					header.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
					header.Set(echo.HeaderAccessControlAllowHeaders, "Authorization, Content-Type")
					return c.NoContent(http.StatusNoContent)
				}
			}

			return next(c)
		}
	}
}
