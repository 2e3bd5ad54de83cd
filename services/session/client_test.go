package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider simulates the identity provider for client tests.
type mockProvider struct {
	mu           sync.Mutex
	user         *User
	token        string
	refreshed    string
	refreshErr   error
	refreshCalls int
	listeners    []TokenListener
}

func (m *mockProvider) SignIn(_ context.Context, email, _ string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &User{UID: "uid-1", Email: email}
	return m.user, nil
}

func (m *mockProvider) SignUp(ctx context.Context, email, password string) (*User, error) {
	return m.SignIn(ctx, email, password)
}

func (m *mockProvider) SignOut(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.token = ""
	return nil
}

func (m *mockProvider) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

func (m *mockProvider) IDToken(_ context.Context, forceRefresh bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return "", ErrNoCurrentUser
	}
	if forceRefresh {
		m.refreshCalls++
		if m.refreshErr != nil {
			return "", m.refreshErr
		}
		m.token = m.refreshed
	}
	return m.token, nil
}

func (m *mockProvider) OnIDTokenChanged(fn TokenListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *mockProvider) refreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshCalls
}

func newTestClient(t *testing.T, serverURL string, provider *mockProvider) (*Client, *MemoryTokenStore) {
	t.Helper()
	store := NewMemoryTokenStore()
	return NewClient(serverURL, provider, store, 1000, 100), store
}

func TestClient_Do_AttachesBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	provider := &mockProvider{user: &User{UID: "uid-1"}, token: "tok-1"}
	client, _ := newTestClient(t, srv.URL, provider)

	resp, err := client.Do(context.Background(), Operation{Method: http.MethodGet, Path: "/api/tasks"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, StateAuthenticated, client.State())
}

func TestClient_Do_GuestRequestHasNoAuthHeader(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, &mockProvider{})

	resp, err := client.Do(context.Background(), Operation{Method: http.MethodGet, Path: "/api/tasks"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, gotAuth)
	assert.Equal(t, StateUnauthenticated, client.State())
}

func TestClient_Do_RetriesOnceAfterRefresh(t *testing.T) {
	t.Parallel()

	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		requests = append(requests, auth)
		if auth != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	provider := &mockProvider{user: &User{UID: "uid-1"}, token: "stale", refreshed: "fresh"}
	client, store := newTestClient(t, srv.URL, provider)

	resp, err := client.Do(context.Background(), Operation{Method: http.MethodGet, Path: "/api/tasks"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, requests)
	assert.Equal(t, 1, provider.refreshCount())
	assert.Equal(t, StateAuthenticated, client.State())

	stored, err := store.Get(context.Background(), UserTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "fresh", stored)
}

func TestClient_Do_RetryExhaustionTearsDownSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	provider := &mockProvider{user: &User{UID: "uid-1"}, token: "stale", refreshed: "fresh"}
	client, store := newTestClient(t, srv.URL, provider)
	require.NoError(t, store.Set(context.Background(), UserTokenKey, "stale"))

	var resetCalled bool
	client.OnSessionReset(func() { resetCalled = true })

	_, err := client.Do(context.Background(), Operation{Method: http.MethodGet, Path: "/api/tasks"})
	require.ErrorIs(t, err, ErrSessionExpired)

	// Exactly one refresh-and-retry cycle, never more.
	assert.Equal(t, 1, provider.refreshCount())
	assert.Equal(t, StateUnauthenticated, client.State())
	assert.Nil(t, provider.CurrentUser())
	assert.True(t, resetCalled)

	stored, err := store.Get(context.Background(), UserTokenKey)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestClient_Do_NoUserAtRefreshClearsState(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	// Stored token from a previous run, but the provider has no user.
	provider := &mockProvider{}
	client, store := newTestClient(t, srv.URL, provider)
	require.NoError(t, store.Set(context.Background(), UserTokenKey, "leftover"))

	_, err := client.Do(context.Background(), Operation{Method: http.MethodGet, Path: "/api/tasks"})
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, StateUnauthenticated, client.State())

	stored, err := store.Get(context.Background(), UserTokenKey)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestClient_Do_RefreshFailureIsNotRetried(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	provider := &mockProvider{
		user:       &User{UID: "uid-1"},
		token:      "stale",
		refreshErr: errors.New("refresh backend down"),
	}
	client, _ := newTestClient(t, srv.URL, provider)

	_, err := client.Do(context.Background(), Operation{Method: http.MethodGet, Path: "/api/tasks"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, hits)
	assert.Equal(t, StateUnauthenticated, client.State())
}

func TestClient_Do_NetworkErrorPropagates(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{user: &User{UID: "uid-1"}, token: "tok-1"}
	client, _ := newTestClient(t, "http://127.0.0.1:1", provider)

	_, err := client.Do(context.Background(), Operation{Method: http.MethodGet, Path: "/api/tasks"})
	require.Error(t, err)
	assert.Zero(t, provider.refreshCount())
}

func TestClient_DoSilent_SwallowsFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	provider := &mockProvider{user: &User{UID: "uid-1"}, token: "stale", refreshed: "still-stale"}
	client, _ := newTestClient(t, srv.URL, provider)

	resp := client.DoSilent(context.Background(), Operation{Method: http.MethodGet, Path: "/api/badges"})
	require.NotNil(t, resp)
	assert.Zero(t, resp.Status)
	assert.Empty(t, resp.Body)
}

func TestClient_SignIn_PersistsToken(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	store := NewMemoryTokenStore()
	client := NewClient("http://example.invalid", provider, store, 1000, 100)

	provider.mu.Lock()
	provider.token = "signed-in-token"
	provider.mu.Unlock()

	user, err := client.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
	assert.Equal(t, StateAuthenticated, client.State())

	stored, err := store.Get(context.Background(), UserTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "signed-in-token", stored)
}

func TestClient_TokenChangeMirrorsToStore(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{user: &User{UID: "uid-1"}}
	store := NewMemoryTokenStore()
	NewClient("http://example.invalid", provider, store, 1000, 100)

	provider.mu.Lock()
	listeners := append([]TokenListener(nil), provider.listeners...)
	provider.mu.Unlock()
	require.Len(t, listeners, 1)

	listeners[0]("rotated")
	stored, err := store.Get(context.Background(), UserTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "rotated", stored)

	listeners[0]("")
	stored, err = store.Get(context.Background(), UserTokenKey)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
