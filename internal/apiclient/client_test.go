package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
	"github.com/vulndeck/vulndeck-cli/internal/config"
	"github.com/vulndeck/vulndeck-cli/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// The shared HTTP transport keeps idle connections alive briefly.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := session.NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}
	return New(cfg, store, zap.NewNop()), store
}

func seedSession(t *testing.T, store *session.Store, access, refresh string) {
	t.Helper()
	err := store.Save(schemas.TokenResponse{AccessToken: access, RefreshToken: refresh},
		schemas.Identity{Username: "analyst"})
	require.NoError(t, err)
}

func TestLoginStoresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req schemas.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "analyst", req.Username)
		assert.Empty(t, r.Header.Get("Authorization"), "login must be unauthenticated")

		json.NewEncoder(w).Encode(schemas.TokenResponse{
			AccessToken: "acc-1", RefreshToken: "ref-1", TokenType: "bearer", Profile: "admin",
		})
	})

	client, store := newTestClient(t, mux)
	tokens, err := client.Login(context.Background(), "analyst", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, "admin", tokens.Profile)

	access, err := store.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "acc-1", access)

	identity, err := store.Identity()
	require.NoError(t, err)
	assert.Equal(t, "analyst", identity.Username)
}

func TestGetJSONSendsBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard/overview", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer acc-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(schemas.DashboardOverview{TotalVulns: 42})
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "acc-1", "ref-1")

	var out schemas.DashboardOverview
	require.NoError(t, client.GetJSON(context.Background(), "/api/dashboard/overview", &out))
	assert.Equal(t, 42, out.TotalVulns)
}

func TestExpiredTokenIsRefreshedAndRetriedOnce(t *testing.T) {
	var refreshCalls, dataCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var req schemas.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ref-1", req.RefreshToken)
		json.NewEncoder(w).Encode(schemas.TokenResponse{AccessToken: "acc-2", RefreshToken: "ref-1"})
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		dataCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer acc-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "stale", "ref-1")

	var out map[string]bool
	require.NoError(t, client.GetJSON(context.Background(), "/api/data", &out))
	assert.True(t, out["ok"])
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), dataCalls.Load(), "original request plus exactly one retry")

	access, err := store.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "acc-2", access, "refreshed token must be persisted")
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		<-release // hold every waiter on the same in-flight refresh
		json.NewEncoder(w).Encode(schemas.TokenResponse{AccessToken: "acc-2"})
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "stale", "ref-1")

	const parallel = 8
	var wg sync.WaitGroup
	errs := make([]error, parallel)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out map[string]any
			errs[i] = client.GetJSON(context.Background(), "/api/data", &out)
		}(i)
	}

	// Give every goroutine time to hit the 401 and queue on the refresh.
	time.Sleep(200 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), refreshCalls.Load(), "all 401s must collapse into one refresh")
}

func TestRejectedRefreshClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"refresh token revoked"}`))
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "stale", "revoked")

	err := client.GetJSON(context.Background(), "/api/data", nil)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = store.AccessToken()
	assert.ErrorIs(t, err, session.ErrNoSession, "credentials must be cleared after a rejected refresh")
}

func TestLoginFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"bad credentials"}`))
	})

	client, _ := newTestClient(t, mux)
	_, err := client.Login(context.Background(), "analyst", "wrong", "")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "bad credentials", apiErr.Detail)
	assert.Equal(t, int32(1), calls.Load(), "a 401 from login must never trigger the refresh path")
}

func TestAPIErrorPrefersDetailMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"import already running"}`))
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "acc-1", "ref-1")

	err := client.GetJSON(context.Background(), "/api/data", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import already running")
	assert.Contains(t, err.Error(), "409")
}

func TestLogoIsMemoizedPerSession(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/branding/logo", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("PNGDATA"))
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "acc-1", "ref-1")

	first := client.Logo(context.Background())
	second := client.Logo(context.Background())

	assert.Equal(t, []byte("PNGDATA"), first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "first successful fetch wins for the session")
}

func TestLogoTransientFailureIsRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/branding/logo", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("PNGDATA"))
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "acc-1", "ref-1")

	assert.Empty(t, client.Logo(context.Background()), "a failed fetch yields no logo")
	assert.Equal(t, []byte("PNGDATA"), client.Logo(context.Background()), "the next call tries again")
	client.Logo(context.Background())
	assert.Equal(t, int32(2), calls.Load(), "success is memoized, failure is not")
}

func TestRejected401LogsTokenStaleness(t *testing.T) {
	expiredAt := time.Now().Add(-90 * time.Minute).Truncate(time.Second)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": expiredAt.Unix()})
	signed, err := expired.SignedString([]byte("test-key"))
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(schemas.TokenResponse{AccessToken: "acc-2", RefreshToken: "ref-1"})
	})
	mux.HandleFunc("/api/dashboard/overview", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(schemas.DashboardOverview{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store, err := session.NewStore(t.TempDir())
	require.NoError(t, err)
	seedSession(t, store, signed, "ref-1")

	core, logs := observer.New(zap.DebugLevel)
	client := New(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, store, zap.New(core))

	var out schemas.DashboardOverview
	require.NoError(t, client.GetJSON(context.Background(), "/api/dashboard/overview", &out))

	entries := logs.FilterMessage("access token rejected by server").All()
	require.Len(t, entries, 1, "staleness must be logged once per rejected token")
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/dashboard/overview", fields["path"])
	assert.Equal(t, expiredAt.Unix(), fields["token_expiry"].(time.Time).Unix())
	assert.Greater(t, fields["stale_for"].(time.Duration), time.Hour)
}

func TestUploadFileSendsMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/imports/upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "scan.csv", header.Filename)

		json.NewEncoder(w).Encode(schemas.ImportUploadResult{JobID: 7, Status: "queued"})
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "acc-1", "ref-1")

	result, err := client.UploadImport(context.Background(), "scan.csv", []byte("QID,IP\n1,10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, 7, result.JobID)
	assert.Equal(t, "queued", result.Status)
}

func TestPreferencesUpdateSendsOnlySetFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/preferences", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"last_seen_version": "2.3.0"}, body,
			"unset preference fields must stay out of the patch")

		json.NewEncoder(w).Encode(schemas.Preferences{
			LastSeenVersion: "2.3.0",
			Settings:        map[string]any{"theme": "dark"},
		})
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "acc-1", "ref-1")

	prefs, err := client.UpdatePreferences(context.Background(), schemas.Preferences{LastSeenVersion: "2.3.0"})
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Settings["theme"])
}

func TestWatcherStatusAndDuplicatePath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/watcher/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(schemas.WatcherStatus{Running: true, ActivePaths: 2, KnownFiles: 40})
	})
	mux.HandleFunc("/api/watcher/paths", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "directory is already watched"})
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "acc-1", "ref-1")

	status, err := client.WatcherStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, 2, status.ActivePaths)
	assert.Equal(t, 40, status.KnownFiles)

	_, err = client.CreateWatchPath(context.Background(), schemas.WatchPath{Path: "/srv/drops", Enabled: true})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, err.Error(), "directory is already watched")
}

func TestWatchPathPartialUpdate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/watcher/paths/7", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"enabled": false}, body)

		json.NewEncoder(w).Encode(schemas.WatchPath{ID: 7, Path: "/srv/drops", Enabled: false})
	})

	client, store := newTestClient(t, mux)
	seedSession(t, store, "acc-1", "ref-1")

	disabled := false
	wp, err := client.UpdateWatchPath(context.Background(), 7, schemas.WatchPathUpdate{Enabled: &disabled})
	require.NoError(t, err)
	assert.Equal(t, 7, wp.ID)
	assert.False(t, wp.Enabled)
}

func TestRawQueryPath(t *testing.T) {
	assert.Equal(t, "/api/x", rawQueryPath("/api/x", ""))
	// The filter store's canonical encoding must pass through untouched.
	assert.Equal(t, "/api/x?severities=4,5&types=Confirmed",
		rawQueryPath("/api/x", "severities=4,5&types=Confirmed"))
}
