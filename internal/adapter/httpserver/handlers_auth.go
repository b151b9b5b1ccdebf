package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Brinda301/sessiongate/internal/domain"
	apperrors "github.com/Brinda301/sessiongate/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type userPayload struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userResponse struct {
	User userPayload `json:"user"`
}

func toUserPayload(user *domain.User) userPayload {
	return userPayload{
		ID:          user.ID.String(),
		Username:    user.Username,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

func (s *Server) registerAuthRoutes() {
	s.echo.POST("/login", s.handleLogin)
	s.echo.POST("/register", s.handleRegister)
	s.echo.POST("/logout", s.handleLogout, s.requireAuth)
	s.echo.GET("/user/me", s.handleMe, s.requireAuth)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.ValidationError("Username and password are required")
	}

	user, token, err := s.app.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		s.authMetrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return apperrors.UnauthorizedError("Invalid username or password")
	}
	if err != nil {
		s.authMetrics.LoginsTotal.WithLabelValues("error").Inc()
		return apperrors.InternalError("Login failed", err)
	}

	s.authMetrics.LoginsTotal.WithLabelValues("success").Inc()

	if err := c.JSON(http.StatusOK, loginResponse{Token: token, User: toUserPayload(user)}); err != nil {
		return fmt.Errorf("failed to write login response: %w", err)
	}
	return nil
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.ValidationError("Username and password are required")
	}

	user, err := s.app.Register(c.Request().Context(), req.Username, req.DisplayName, req.Password)
	if errors.Is(err, domain.ErrUsernameTaken) {
		s.authMetrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return apperrors.ConflictError("Username is already taken")
	}
	if err != nil {
		s.authMetrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return apperrors.InternalError("Registration failed", err)
	}

	s.authMetrics.RegistrationsTotal.WithLabelValues("success").Inc()

	if err := c.JSON(http.StatusCreated, userResponse{User: toUserPayload(user)}); err != nil {
		return fmt.Errorf("failed to write register response: %w", err)
	}
	return nil
}

func (s *Server) handleMe(c echo.Context) error {
	user, ok := c.Get("user").(*domain.User)
	if !ok {
		return apperrors.InternalError("Missing user in request context", nil)
	}

	if err := c.JSON(http.StatusOK, userResponse{User: toUserPayload(user)}); err != nil {
		return fmt.Errorf("failed to write user response: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	token, ok := c.Get("token").(string)
	if !ok {
		return apperrors.InternalError("Missing token in request context", nil)
	}

	if err := s.app.Logout(c.Request().Context(), token); err != nil {
		return apperrors.InternalError("Logout failed", err)
	}

	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to write logout response: %w", err)
	}
	return nil
}

// requireAuth resolves the bearer token and stores the authenticated user in
// the request context under "user", "userID" and "token".
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request())
		if !ok {
			s.authMetrics.TokenResolutionsTotal.WithLabelValues("missing").Inc()
			return apperrors.UnauthorizedError("Missing bearer token")
		}

		user, err := s.app.ResolveToken(c.Request().Context(), token)
		if errors.Is(err, domain.ErrTokenInvalid) {
			s.authMetrics.TokenResolutionsTotal.WithLabelValues("invalid").Inc()
			return apperrors.UnauthorizedError("Invalid or expired token")
		}
		if err != nil {
			s.authMetrics.TokenResolutionsTotal.WithLabelValues("error").Inc()
			return apperrors.InternalError("Failed to resolve token", err)
		}

		s.authMetrics.TokenResolutionsTotal.WithLabelValues("success").Inc()

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("token", token)

		return next(c)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(auth, bearerPrefix)
	if token == "" {
		return "", false
	}
	return token, true
}
