// Package session implements the client side of the authentication flow: a
// durable bearer token plus the in-memory identity resolved from it.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Brinda301/sessiongate/internal/client/tokenstore"
)

const defaultBaseURL = "http://localhost:8080"

const httpCallTimeout = 10 * time.Second

// Destinations handed to the Navigator after state transitions.
const (
	DestRoot    = "/"
	DestProfile = "/profile"
	DestSuccess = "/success"
)

// Navigator reacts to session transitions, for example by switching views.
// Operations report destinations after they succeed; the session core never
// renders anything itself.
type Navigator interface {
	Navigate(dest string)
}

// User is the identity record the backend returns. The session core only
// cares whether a user is present; the fields are for display.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OpError is an operation failure whose message is fit for direct display,
// either the server's own message or a fixed per-operation fallback.
type OpError struct {
	Message string
}

func (e *OpError) Error() string {
	return e.Message
}

// Store owns the session state. All mutation goes through its methods; when
// two operations race, the one that completes last determines the state.
type Store struct {
	baseURL string
	http    *http.Client
	tokens  tokenstore.Store
	nav     Navigator

	mu       sync.Mutex
	identity *User
}

// Options configures a Store. The zero value is usable.
type Options struct {
	// BackendURL points at the backend. Surrounding whitespace and one
	// trailing slash are stripped.
	BackendURL string
	// AmbientOrigin is the origin the client itself is served from. It is
	// used when no BackendURL is configured.
	AmbientOrigin string
	// HTTPClient defaults to a client with a 10 second timeout.
	HTTPClient *http.Client
	// Navigator receives post-operation destinations. Optional.
	Navigator Navigator
}

// New creates a session store persisting its token in tokens.
func New(tokens tokenstore.Store, opts Options) *Store {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpCallTimeout}
	}

	return &Store{
		baseURL: resolveBaseURL(opts.BackendURL, opts.AmbientOrigin),
		http:    httpClient,
		tokens:  tokens,
		nav:     opts.Navigator,
	}
}

// resolveBaseURL picks the backend address: the configured URL when set,
// otherwise the ambient origin, otherwise the local default.
func resolveBaseURL(configured, ambient string) string {
	if trimmed := strings.TrimSpace(configured); trimmed != "" {
		return strings.TrimSuffix(trimmed, "/")
	}
	if ambient != "" {
		return ambient
	}
	return defaultBaseURL
}

// Identity returns the current user, or nil when signed out.
func (s *Store) Identity() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Restore loads the durable token and, when one exists, resolves it to an
// identity. A token the backend rejects is discarded so the next start is a
// clean signed-out state. Callers invoke Restore once, before the
// interactive operations. A canceled ctx stops Restore from touching any
// state, so a torn-down caller leaves the session as it found it.
func (s *Store) Restore(ctx context.Context) {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load stored token", "error", err)
		s.setIdentity(nil)
		return
	}
	if token == "" {
		s.setIdentity(nil)
		return
	}

	user, err := s.fetchUser(ctx, token)

	if ctx.Err() != nil {
		return
	}

	if err != nil {
		slog.InfoContext(ctx, "Discarding stored token", "error", err)
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			slog.WarnContext(ctx, "Failed to clear stored token", "error", clearErr)
		}
		s.setIdentity(nil)
		return
	}

	s.setIdentity(user)
}

// Login exchanges credentials for a bearer token, persists it, resolves the
// identity and moves to the profile view. A nil return means success; any
// error's message is fit for display.
func (s *Store) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}

	var result struct {
		Token string `json:"token"`
	}
	if err := s.postJSON(ctx, "/login", body, &result, "Login failed"); err != nil {
		return err
	}

	if err := s.tokens.Save(ctx, result.Token); err != nil {
		slog.ErrorContext(ctx, "Failed to persist token", "error", err)
		return &OpError{Message: "Login failed"}
	}

	user, err := s.fetchUser(ctx, result.Token)
	if err != nil {
		return err
	}

	s.setIdentity(user)
	s.navigate(DestProfile)
	return nil
}

// Register submits the user data as-is; the backend decides which fields it
// needs. On success the navigator is pointed at the signup-complete view.
// The session stays signed out until the user logs in.
func (s *Store) Register(ctx context.Context, userData map[string]any) error {
	if err := s.postJSON(ctx, "/register", userData, nil, "Registration failed"); err != nil {
		return err
	}

	s.navigate(DestSuccess)
	return nil
}

// Logout drops the stored token and the in-memory identity, then returns to
// the root view. Safe to call when already signed out. A failure to clear
// the durable token is logged; the in-memory session resets regardless.
func (s *Store) Logout(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to clear stored token", "error", err)
	}
	s.setIdentity(nil)
	s.navigate(DestRoot)
}

func (s *Store) setIdentity(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = user
}

func (s *Store) navigate(dest string) {
	if s.nav != nil {
		s.nav.Navigate(dest)
	}
}
