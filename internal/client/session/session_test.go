package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brinda301/sessiongate/internal/client/tokenstore"
)

type navRecorder struct {
	mu    sync.Mutex
	dests []string
}

func (n *navRecorder) Navigate(dest string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dests = append(n.dests, dest)
}

func (n *navRecorder) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.dests...)
}

// failingTokenStore returns canned errors, standing in for a broken disk.
type failingTokenStore struct {
	token    string
	loadErr  error
	saveErr  error
	clearErr error
}

func (f *failingTokenStore) Load(context.Context) (string, error) { return f.token, f.loadErr }
func (f *failingTokenStore) Save(context.Context, string) error   { return f.saveErr }
func (f *failingTokenStore) Clear(context.Context) error          { return f.clearErr }

func newTestStore(t *testing.T, backendURL string) (*Store, *tokenstore.MemoryStore, *navRecorder) {
	t.Helper()

	tokens := tokenstore.NewMemoryStore()
	nav := &navRecorder{}
	store := New(tokens, Options{BackendURL: backendURL, Navigator: nav})

	return store, tokens, nav
}

// deadBackend refuses every request, for tests that must not hit the network.
func deadBackend(t *testing.T) *httptest.Server {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	t.Cleanup(backend.Close)

	return backend
}

func writeUser(w http.ResponseWriter, username string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user": map[string]any{
			"id":          "00000000-0000-0000-0000-000000000001",
			"username":    username,
			"displayName": "Alice",
			"createdAt":   "2025-06-01T12:00:00Z",
		},
	})
}

func TestRestore_NoStoredToken(t *testing.T) {
	backend := deadBackend(t)
	store, _, nav := newTestStore(t, backend.URL)

	store.Restore(context.Background())

	assert.Nil(t, store.Identity())
	assert.Empty(t, nav.all())
}

func TestRestore_ValidToken(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/user/me", r.URL.Path)
		assert.Equal(t, "Bearer stored-token", r.Header.Get("Authorization"))
		writeUser(w, "alice")
	}))
	defer backend.Close()

	store, tokens, nav := newTestStore(t, backend.URL)
	require.NoError(t, tokens.Save(context.Background(), "stored-token"))

	store.Restore(context.Background())

	require.NotNil(t, store.Identity())
	assert.Equal(t, "alice", store.Identity().Username)

	// The accepted token stays put for the next start.
	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
	assert.Empty(t, nav.all())
}

func TestRestore_RejectedToken(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid or expired token"}`))
	}))
	defer backend.Close()

	store, tokens, _ := newTestStore(t, backend.URL)
	require.NoError(t, tokens.Save(context.Background(), "stale-token"))

	store.Restore(context.Background())

	assert.Nil(t, store.Identity())

	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token, "rejected token should be discarded")
}

func TestRestore_ServerError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	store, tokens, _ := newTestStore(t, backend.URL)
	require.NoError(t, tokens.Save(context.Background(), "stored-token"))

	store.Restore(context.Background())

	assert.Nil(t, store.Identity())

	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRestore_MalformedIdentity(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{invalid json`))
	}))
	defer backend.Close()

	store, tokens, _ := newTestStore(t, backend.URL)
	require.NoError(t, tokens.Save(context.Background(), "stored-token"))

	store.Restore(context.Background())

	assert.Nil(t, store.Identity())

	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRestore_BackendUnreachable(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close()

	store, tokens, _ := newTestStore(t, backend.URL)
	require.NoError(t, tokens.Save(context.Background(), "stored-token"))

	store.Restore(context.Background())

	assert.Nil(t, store.Identity())

	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRestore_CanceledContext(t *testing.T) {
	backend := deadBackend(t)

	store, tokens, _ := newTestStore(t, backend.URL)
	require.NoError(t, tokens.Save(context.Background(), "stored-token"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store.Restore(ctx)

	// A torn-down restore leaves the session exactly as it found it.
	assert.Nil(t, store.Identity())

	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
}

func TestRestore_LoadFails(t *testing.T) {
	backend := deadBackend(t)

	nav := &navRecorder{}
	tokens := &failingTokenStore{loadErr: assert.AnError}
	store := New(tokens, Options{BackendURL: backend.URL, Navigator: nav})

	store.Restore(context.Background())

	assert.Nil(t, store.Identity())
	assert.Empty(t, nav.all())
}

func TestLogin_Success(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "alice", body["username"])
			assert.Equal(t, "s3cret", body["password"])

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"token": "tok-1"})
		case "/user/me":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			writeUser(w, "alice")
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer backend.Close()

	store, tokens, nav := newTestStore(t, backend.URL)

	err := store.Login(context.Background(), "alice", "s3cret")

	require.NoError(t, err)
	require.NotNil(t, store.Identity())
	assert.Equal(t, "alice", store.Identity().Username)

	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, []string{DestProfile}, nav.all())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid username or password"}`))
	}))
	defer backend.Close()

	store, tokens, nav := newTestStore(t, backend.URL)

	err := store.Login(context.Background(), "alice", "wrong")

	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", err.Error())

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)

	assert.Nil(t, store.Identity())

	token, loadErr := tokens.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Empty(t, token)
	assert.Empty(t, nav.all())
}

func TestLogin_FailureWithoutMessage(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{invalid json`))
	}))
	defer backend.Close()

	store, _, nav := newTestStore(t, backend.URL)

	err := store.Login(context.Background(), "alice", "s3cret")

	require.Error(t, err)
	assert.Equal(t, "Login failed", err.Error())
	assert.Empty(t, nav.all())
}

func TestLogin_IdentityFetchFails(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"token": "tok-1"})
		case "/user/me":
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer backend.Close()

	store, tokens, nav := newTestStore(t, backend.URL)

	err := store.Login(context.Background(), "alice", "s3cret")

	require.Error(t, err)
	assert.Equal(t, "Failed to fetch user", err.Error())
	assert.Nil(t, store.Identity())
	assert.Empty(t, nav.all())

	// The token was persisted before resolution failed; the next
	// restore will discard it if it is truly unusable.
	token, loadErr := tokens.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, "tok-1", token)
}

func TestLogin_BackendUnreachable(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close()

	store, _, nav := newTestStore(t, backend.URL)

	err := store.Login(context.Background(), "alice", "s3cret")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute /login request")
	assert.Nil(t, store.Identity())
	assert.Empty(t, nav.all())
}

func TestLogin_TokenPersistFails(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"token": "tok-1"})
	}))
	defer backend.Close()

	nav := &navRecorder{}
	tokens := &failingTokenStore{saveErr: assert.AnError}
	store := New(tokens, Options{BackendURL: backend.URL, Navigator: nav})

	err := store.Login(context.Background(), "alice", "s3cret")

	require.Error(t, err)
	assert.Equal(t, "Login failed", err.Error())
	assert.Nil(t, store.Identity())
	assert.Empty(t, nav.all())
}

func TestRegister_Success(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/register", r.URL.Path)

		// Whatever the caller put in the form reaches the backend as-is.
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "s3cret", body["password"])
		assert.Equal(t, "green", body["favoriteColor"])

		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	store, tokens, nav := newTestStore(t, backend.URL)

	err := store.Register(context.Background(), map[string]any{
		"username":      "alice",
		"password":      "s3cret",
		"favoriteColor": "green",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{DestSuccess}, nav.all())

	// Registration signs nobody in.
	assert.Nil(t, store.Identity())

	token, loadErr := tokens.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Empty(t, token)
}

func TestRegister_Conflict(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Username is already taken"}`))
	}))
	defer backend.Close()

	store, _, nav := newTestStore(t, backend.URL)

	err := store.Register(context.Background(), map[string]any{"username": "alice"})

	require.Error(t, err)
	assert.Equal(t, "Username is already taken", err.Error())
	assert.Empty(t, nav.all())
}

func TestRegister_FailureWithoutMessage(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer backend.Close()

	store, _, nav := newTestStore(t, backend.URL)

	err := store.Register(context.Background(), map[string]any{"username": "alice"})

	require.Error(t, err)
	assert.Equal(t, "Registration failed", err.Error())
	assert.Empty(t, nav.all())
}

func TestLogout(t *testing.T) {
	backend := deadBackend(t)

	store, tokens, nav := newTestStore(t, backend.URL)
	require.NoError(t, tokens.Save(context.Background(), "tok-1"))
	store.setIdentity(&User{Username: "alice"})

	store.Logout(context.Background())

	assert.Nil(t, store.Identity())

	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, []string{DestRoot}, nav.all())
}

func TestLogout_AlreadySignedOut(t *testing.T) {
	backend := deadBackend(t)

	store, tokens, nav := newTestStore(t, backend.URL)

	store.Logout(context.Background())
	store.Logout(context.Background())

	assert.Nil(t, store.Identity())

	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, []string{DestRoot, DestRoot}, nav.all())
}

func TestLogout_ClearFails(t *testing.T) {
	backend := deadBackend(t)

	nav := &navRecorder{}
	tokens := &failingTokenStore{clearErr: assert.AnError}
	store := New(tokens, Options{BackendURL: backend.URL, Navigator: nav})
	store.setIdentity(&User{Username: "alice"})

	store.Logout(context.Background())

	// The in-memory session resets even when the durable store is broken.
	assert.Nil(t, store.Identity())
	assert.Equal(t, []string{DestRoot}, nav.all())
}

func TestRestore_CompletesAfterLogin(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"token": "fresh-token"})
		case "/user/me":
			if r.Header.Get("Authorization") == "Bearer stale-token" {
				close(entered)
				<-release
				writeUser(w, "resumed")
				return
			}
			writeUser(w, "fresh")
		}
	}))
	defer backend.Close()

	store, tokens, _ := newTestStore(t, backend.URL)
	require.NoError(t, tokens.Save(context.Background(), "stale-token"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Restore(context.Background())
	}()
	<-entered

	require.NoError(t, store.Login(context.Background(), "alice", "s3cret"))
	require.NotNil(t, store.Identity())
	assert.Equal(t, "fresh", store.Identity().Username)

	close(release)
	<-done

	// Whichever operation finishes last owns the final state.
	require.NotNil(t, store.Identity())
	assert.Equal(t, "resumed", store.Identity().Username)

	token, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		ambient    string
		want       string
	}{
		{
			name:       "configured wins",
			configured: "https://api.example.com",
			ambient:    "https://app.example.com",
			want:       "https://api.example.com",
		},
		{
			name:       "configured trailing slash stripped",
			configured: "https://api.example.com/",
			want:       "https://api.example.com",
		},
		{
			name:       "only one trailing slash stripped",
			configured: "https://api.example.com//",
			want:       "https://api.example.com/",
		},
		{
			name:       "configured whitespace trimmed",
			configured: "  https://api.example.com/  ",
			want:       "https://api.example.com",
		},
		{
			name:    "ambient origin when unconfigured",
			ambient: "https://app.example.com",
			want:    "https://app.example.com",
		},
		{
			name:       "whitespace-only configured falls through",
			configured: "   ",
			ambient:    "https://app.example.com",
			want:       "https://app.example.com",
		},
		{
			name: "local default",
			want: "http://localhost:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveBaseURL(tt.configured, tt.ambient))
		})
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name       string
		backendURL string
		path       string
		want       string
	}{
		{
			name:       "leading slash",
			backendURL: "http://api.example.com",
			path:       "/login",
			want:       "http://api.example.com/login",
		},
		{
			name:       "no leading slash",
			backendURL: "http://api.example.com",
			path:       "login",
			want:       "http://api.example.com/login",
		},
		{
			name:       "base with trailing slash",
			backendURL: "http://api.example.com/",
			path:       "/login",
			want:       "http://api.example.com/login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(tokenstore.NewMemoryStore(), Options{BackendURL: tt.backendURL})
			assert.Equal(t, tt.want, store.buildURL(tt.path))
		})
	}
}

func TestOpError_Error(t *testing.T) {
	err := &OpError{Message: "Login failed"}
	assert.Equal(t, "Login failed", err.Error())
}
