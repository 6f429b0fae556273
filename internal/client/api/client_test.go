package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avoskres/salondesk/internal/client/session"
	"github.com/avoskres/salondesk/internal/common"
	"github.com/avoskres/salondesk/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapKV is an in-memory session.KV for tests.
type mapKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMapKV() *mapKV { return &mapKV{m: map[string][]byte{}} }

func (kv *mapKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.m[key], nil
}

func (kv *mapKV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}

func (kv *mapKV) SetMany(_ context.Context, entries map[string][]byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for key, value := range entries {
		kv.m[key] = value
	}
	return nil
}

func (kv *mapKV) DeleteMany(_ context.Context, keys ...string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for _, key := range keys {
		delete(kv.m, key)
	}
	return nil
}

type countingNavigator struct {
	calls atomic.Int32
}

func (n *countingNavigator) NavigateTo(string) { n.calls.Add(1) }

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func validToken(t *testing.T) string   { return tokenExpiringAt(t, time.Now().Add(time.Hour)) }
func expiredToken(t *testing.T) string { return tokenExpiringAt(t, time.Now().Add(-time.Hour)) }

type testEnv struct {
	client *Client
	store  *session.TokenStore
	sess   *session.AuthSession
	nav    *countingNavigator
}

func setupClient(t *testing.T, baseURL string, cfg Config) *testEnv {
	t.Helper()
	cfg.BaseURL = baseURL

	store := session.NewTokenStore(newMapKV(), nil)
	nav := &countingNavigator{}
	logger := logging.NewTextLogger(io.Discard, slog.LevelError)
	sess := session.NewAuthSession(store, nav, "", logger)

	client, err := New(cfg, sess, nil, logger)
	require.NoError(t, err)
	return &testEnv{client: client, store: store, sess: sess, nav: nav}
}

func bearerOf(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)
}

func writeRefreshPair(w http.ResponseWriter, access string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"access_token": access})
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	logger := logging.NewTextLogger(io.Discard, slog.LevelError)
	sess := session.NewAuthSession(session.NewTokenStore(newMapKV(), nil), nil, "", logger)

	_, err := New(Config{BaseURL: "not a url"}, sess, nil, logger)
	require.Error(t, err)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	token := validToken(t)

	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get(common.AuthorizationHeader))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	require.NoError(t, env.store.SetTokens(context.Background(), token, "R1"))

	var out map[string]bool
	require.NoError(t, env.client.Get(context.Background(), "/clients", &out))

	assert.Equal(t, common.BearerPrefix+token, seen.Load())
	assert.True(t, out["ok"])
}

func TestClient_SetsRequestIDAndAcceptHeaders(t *testing.T) {
	var requestID, accept atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID.Store(r.Header.Get(common.RequestIDHeader))
		accept.Store(r.Header.Get("Accept"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	require.NoError(t, env.store.SetTokens(context.Background(), validToken(t), "R1"))

	require.NoError(t, env.client.Get(context.Background(), "/clients", nil))

	assert.NotEmpty(t, requestID.Load())
	assert.Equal(t, "application/json", accept.Load())
}

func TestClient_NoToken_AbortsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})

	err := env.client.Get(context.Background(), "/clients", nil)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Equal(t, int32(0), hits.Load(), "request must not reach the network")
	assert.Equal(t, int32(1), env.nav.calls.Load(), "exactly one redirect to login")
}

func TestClient_NoToken_AuthEndpointProceeds(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get(common.AuthorizationHeader))
		writeRefreshPair(w, "ignored")
	}))
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})

	require.NoError(t, env.client.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.c"}, nil))

	assert.Equal(t, "", auth.Load(), "auth endpoints carry no bearer token")
	assert.Equal(t, int32(0), env.nav.calls.Load())
}

// Three concurrent requests with a pre-expired access token: exactly one
// refresh call happens, every request goes out with the fresh token, all three
// succeed, and nobody is redirected.
func TestClient_ExpiredToken_ConcurrentRequestsShareOneRefresh(t *testing.T) {
	const fresh = "fresh-access-token"
	var refreshCalls, clientCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["refresh_token"] != "R1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeRefreshPair(w, fresh)
	})
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		clientCalls.Add(1)
		if bearerOf(r) != fresh {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"c1"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	require.NoError(t, env.store.SetTokens(context.Background(), expiredToken(t), "R1"))

	const n = 3
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			var out []map[string]string
			errs[i] = env.client.Get(context.Background(), "/clients", &out)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}
	assert.Equal(t, int32(1), refreshCalls.Load(), "refresh must be single-flight")
	assert.Equal(t, int32(n), clientCalls.Load())
	assert.Equal(t, int32(0), env.nav.calls.Load())

	stored, err := env.store.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, stored)
}

func TestClient_401Once_RefreshesAndRetries(t *testing.T) {
	const fresh = "fresh-access-token"
	stale := validToken(t)
	var refreshCalls, clientCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeRefreshPair(w, fresh)
	})
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		clientCalls.Add(1)
		// The server has revoked the old token even though its exp is fine.
		if bearerOf(r) != fresh {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"c1","name":"Anna"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	require.NoError(t, env.store.SetTokens(context.Background(), stale, "R1"))

	var out []map[string]string
	require.NoError(t, env.client.Get(context.Background(), "/clients", &out))

	require.Len(t, out, 1)
	assert.Equal(t, "Anna", out[0]["name"])
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), clientCalls.Load(), "original plus exactly one retry")
	assert.Equal(t, int32(0), env.nav.calls.Load())
}

func TestClient_401RetryReplaysSameBody(t *testing.T) {
	const fresh = "fresh-access-token"
	var bodies [][]byte
	var mu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeRefreshPair(w, fresh)
	})
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, b)
		mu.Unlock()
		if bearerOf(r) != fresh {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	require.NoError(t, env.store.SetTokens(context.Background(), validToken(t), "R1"))

	require.NoError(t, env.client.Post(context.Background(), "/clients", map[string]string{"name": "Anna"}, nil))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "retry must replay the identical body")
}

func TestClient_401RefreshRejected_LogsOutOnce(t *testing.T) {
	var refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	ctx := context.Background()
	require.NoError(t, env.store.SetTokens(ctx, validToken(t), "R1"))

	err := env.client.Get(ctx, "/clients", nil)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(1), env.nav.calls.Load(), "logout navigates exactly once")

	access, err := env.store.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)
	refresh, err := env.store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, refresh)
}

func TestClient_Still401AfterRetry_GivesUp(t *testing.T) {
	var clientCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeRefreshPair(w, "fresh-access-token")
	})
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		clientCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	require.NoError(t, env.store.SetTokens(context.Background(), validToken(t), "R1"))

	err := env.client.Get(context.Background(), "/clients", nil)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Equal(t, int32(2), clientCalls.Load(), "at most one retry, never a loop")
	assert.Equal(t, int32(1), env.nav.calls.Load())
}

func TestClient_RefreshEndpoint401_SessionExpired(t *testing.T) {
	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	require.NoError(t, env.store.SetTokens(context.Background(), validToken(t), "R1"))

	err := env.client.Post(context.Background(), "/auth/refresh", map[string]string{"refresh_token": "R1"}, nil)
	require.ErrorIs(t, err, ErrSessionExpired)

	assert.Equal(t, int32(1), refreshCalls.Load(), "a rejected refresh never triggers another refresh")
	assert.Equal(t, int32(1), env.nav.calls.Load())
}

func TestClient_MockMode_SkipsTokenHandling(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get(common.AuthorizationHeader))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{MockMode: true})

	require.NoError(t, env.client.Get(context.Background(), "/clients", nil))
	assert.Equal(t, "", auth.Load())
	assert.Equal(t, int32(0), env.nav.calls.Load())
}

func TestClient_MockMode_401PassesThroughUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{MockMode: true})

	err := env.client.Get(context.Background(), "/clients", nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Equal(t, int32(0), env.nav.calls.Load())
}

func TestClient_UnreachableBackend_NetworkErrorNamesBaseURL(t *testing.T) {
	// A closed port: httptest gives us one that was live and is not anymore.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	env := setupClient(t, baseURL, Config{Timeout: 2 * time.Second})
	require.NoError(t, env.store.SetTokens(context.Background(), validToken(t), "R1"))

	err := env.client.Get(context.Background(), "/clients", nil)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), baseURL)
}

func TestClient_HTTPErrorCarriesServerDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"client not found"}`))
	}))
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	require.NoError(t, env.store.SetTokens(context.Background(), validToken(t), "R1"))

	err := env.client.Get(context.Background(), "/clients/missing", nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "[404] client not found", err.Error())
}

func TestClient_Upload_SendsMultipartUnderConfiguredField(t *testing.T) {
	var gotField, gotName, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for field, headers := range r.MultipartForm.File {
			gotField = field
			gotName = headers[0].Filename
			if f, err := headers[0].Open(); err == nil {
				b, _ := io.ReadAll(f)
				_ = f.Close()
				gotContent = string(b)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"file:///uploads/avatar.png"}`))
	}))
	defer srv.Close()

	env := setupClient(t, srv.URL, Config{})
	require.NoError(t, env.store.SetTokens(context.Background(), validToken(t), "R1"))

	var out struct {
		URL string `json:"url"`
	}
	err := env.client.Upload(context.Background(), "/uploads", "avatar.png", strings.NewReader("png-bytes"), &out)
	require.NoError(t, err)

	assert.Equal(t, common.DefaultUploadField, gotField)
	assert.Equal(t, "avatar.png", gotName)
	assert.Equal(t, "png-bytes", gotContent)
	assert.Equal(t, "file:///uploads/avatar.png", out.URL)
}
