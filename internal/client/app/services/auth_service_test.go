package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageAdapter "jobtrack/internal/client/adapters/storage"
	"jobtrack/internal/client/api"
	"jobtrack/internal/client/app/services"
	"jobtrack/internal/client/config"
	"jobtrack/internal/client/events"
	"jobtrack/internal/client/session"
)

type serviceFixture struct {
	sessions *session.Manager
	auth     *services.AuthService
	apps     *services.ApplicationsService
}

func newServiceFixture(t *testing.T, handler http.Handler) *serviceFixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	sessionCfg := &config.SessionConfig{TokenSkew: time.Minute, ExpirySkew: 30 * time.Second}

	sessions, err := session.NewManager(ctx, storageAdapter.NewFileStorage(path), nil, sessionCfg)
	require.NoError(t, err)

	refresher := session.NewRefresher(sessions, server.URL+"/auth/refresh", 5*time.Second)
	apiCfg := &config.APIConfig{BaseURL: server.URL, RequestTimeout: 5 * time.Second}
	client := api.NewClient(apiCfg, sessions, refresher, events.NewHub(), events.NewHub(), sessionCfg.ExpirySkew)

	return &serviceFixture{
		sessions: sessions,
		auth:     services.NewAuthService(client, sessions),
		apps:     services.NewApplicationsService(client),
	}
}

func grantResponse(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  "access-1",
		"refresh_token": "refresh-1",
		"token_type":    "Bearer",
		"expires_in":    3600,
	})
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login stores the session", func(t *testing.T) {
		var gotEmail string
		fixture := newServiceFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/login", r.URL.Path)
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotEmail = req.Email
			grantResponse(w, http.StatusOK)
		}))

		require.NoError(t, fixture.auth.Login(ctx, "user@example.com", "secret"))

		assert.Equal(t, "user@example.com", gotEmail)
		current := fixture.sessions.Session()
		require.NotNil(t, current)
		assert.Equal(t, "access-1", current.AccessToken)
		assert.Equal(t, "refresh-1", current.RefreshToken)
	})

	t.Run("rejected login leaves no session", func(t *testing.T) {
		fixture := newServiceFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"invalid_credentials","message":"invalid email or password"}}`))
		}))

		err := fixture.auth.Login(ctx, "user@example.com", "wrong")
		require.Error(t, err)

		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "invalid_credentials", apiErr.Code)
		assert.Nil(t, fixture.sessions.Session())
	})
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()

	fixture := newServiceFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		grantResponse(w, http.StatusCreated)
	}))

	require.NoError(t, fixture.auth.Register(ctx, "new@example.com", "tester", "secret"))

	current := fixture.sessions.Session()
	require.NotNil(t, current)
	assert.Equal(t, "access-1", current.AccessToken)
	assert.Equal(t, "refresh-1", current.RefreshToken)
}

func TestAuthServiceLogout(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, fixture *serviceFixture) {
		t.Helper()
		require.NoError(t, fixture.sessions.SetSession(ctx, session.TokenGrant{
			AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 3600,
		}))
	}

	t.Run("revokes the refresh token server-side", func(t *testing.T) {
		var gotToken string
		fixture := newServiceFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/logout", r.URL.Path)
			var req struct {
				RefreshToken string `json:"refresh_token"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotToken = req.RefreshToken
			w.WriteHeader(http.StatusNoContent)
		}))
		login(t, fixture)

		require.NoError(t, fixture.auth.Logout(ctx))
		assert.Equal(t, "refresh-1", gotToken)
		assert.Nil(t, fixture.sessions.Session())
	})

	t.Run("clears locally even when the server call fails", func(t *testing.T) {
		fixture := newServiceFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		login(t, fixture)

		require.NoError(t, fixture.auth.Logout(ctx))
		assert.Nil(t, fixture.sessions.Session())
	})

	t.Run("logout without a session is a no-op", func(t *testing.T) {
		var calls atomic.Int64
		fixture := newServiceFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNoContent)
		}))

		require.NoError(t, fixture.auth.Logout(ctx))
		assert.Equal(t, int64(0), calls.Load())
	})
}

func TestAuthServiceProfile(t *testing.T) {
	ctx := context.Background()

	fixture := newServiceFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/profile", r.URL.Path)
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id":"u1","email":"user@example.com","username":"tester","verified":true}`))
	}))
	require.NoError(t, fixture.sessions.SetSession(ctx, session.TokenGrant{
		AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 3600,
	}))

	profile, err := fixture.auth.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", profile.Email)
	assert.True(t, profile.Verified)
}
