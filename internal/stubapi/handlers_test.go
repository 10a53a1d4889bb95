package stubapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtrack/internal/stubapi"
)

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestApp(t *testing.T) (*fiber.App, *stubapi.Store) {
	t.Helper()

	store := stubapi.NewStore(time.Hour)
	tokens := stubapi.NewTokenService(&stubapi.AuthConfig{
		Secret:    "test-secret",
		AccessTTL: 15 * time.Minute,
	})

	app := fiber.New()
	stubapi.SetupRouter(app, store, tokens)
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func registerUser(t *testing.T, app *fiber.App, email string) tokenPair {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email":    email,
		"username": "tester",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var pair tokenPair
	decodeBody(t, resp, &pair)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func TestRegister(t *testing.T) {
	t.Run("issues tokens for a new user", func(t *testing.T) {
		app, _ := newTestApp(t)

		pair := registerUser(t, app, "new@example.com")
		assert.Equal(t, "Bearer", pair.TokenType)
		assert.Equal(t, int64(900), pair.ExpiresIn)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		app, _ := newTestApp(t)
		registerUser(t, app, "dup@example.com")

		resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
			"email": "dup@example.com", "username": "tester", "password": "secret-password",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		var body errorBody
		decodeBody(t, resp, &body)
		assert.Equal(t, "email_taken", body.Error.Code)
	})

	t.Run("rejects incomplete request", func(t *testing.T) {
		app, _ := newTestApp(t)

		resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
			"email": "no-password@example.com",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorBody
		decodeBody(t, resp, &body)
		assert.Equal(t, "invalid_request", body.Error.Code)
	})
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "user@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
			"email": "user@example.com", "password": "secret-password",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var pair tokenPair
		decodeBody(t, resp, &pair)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
			"email": "user@example.com", "password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body errorBody
		decodeBody(t, resp, &body)
		assert.Equal(t, "invalid_credentials", body.Error.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
			"email": "nobody@example.com", "password": "secret-password",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRefreshTokens(t *testing.T) {
	t.Run("rotates the refresh token", func(t *testing.T) {
		app, _ := newTestApp(t)
		pair := registerUser(t, app, "rotate@example.com")

		resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", "", fiber.Map{
			"refresh_token": pair.RefreshToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rotated tokenPair
		decodeBody(t, resp, &rotated)
		assert.NotEmpty(t, rotated.AccessToken)
		assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	})

	t.Run("rejects an already rotated token", func(t *testing.T) {
		app, _ := newTestApp(t)
		pair := registerUser(t, app, "replay@example.com")

		first := doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", "", fiber.Map{
			"refresh_token": pair.RefreshToken,
		})
		require.Equal(t, http.StatusOK, first.StatusCode)

		second := doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", "", fiber.Map{
			"refresh_token": pair.RefreshToken,
		})
		require.Equal(t, http.StatusUnauthorized, second.StatusCode)

		var body errorBody
		decodeBody(t, second, &body)
		assert.Equal(t, "invalid_refresh_token", body.Error.Code)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		app, _ := newTestApp(t)

		resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", "", fiber.Map{
			"refresh_token": "made-up",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	app, _ := newTestApp(t)
	pair := registerUser(t, app, "logout@example.com")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", "", fiber.Map{
		"refresh_token": pair.RefreshToken,
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Отозванный token больше не обменивается.
	refresh := doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", "", fiber.Map{
		"refresh_token": pair.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, refresh.StatusCode)
}

func TestGetProfile(t *testing.T) {
	app, _ := newTestApp(t)
	pair := registerUser(t, app, "profile@example.com")

	t.Run("with a valid token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/user/profile", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var profile struct {
			Email    string `json:"email"`
			Username string `json:"username"`
			Verified bool   `json:"verified"`
		}
		decodeBody(t, resp, &profile)
		assert.Equal(t, "profile@example.com", profile.Email)
		assert.Equal(t, "tester", profile.Username)
		assert.False(t, profile.Verified)
	})

	t.Run("without a token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/user/profile", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body errorBody
		decodeBody(t, resp, &body)
		assert.Equal(t, "invalid_token", body.Error.Code)
	})

	t.Run("with a garbage token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/user/profile", "not-a-jwt", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestApplications(t *testing.T) {
	app, _ := newTestApp(t)
	pair := registerUser(t, app, "board@example.com")

	t.Run("create requires verified email", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/applications/", pair.AccessToken, fiber.Map{
			"company": "acme", "role": "backend engineer",
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		var body errorBody
		decodeBody(t, resp, &body)
		assert.Equal(t, "email_not_verified", body.Error.Code)
	})

	verify := doJSON(t, app, http.MethodPost, "/api/v1/auth/verify", "", fiber.Map{
		"email": "board@example.com",
	})
	require.Equal(t, http.StatusNoContent, verify.StatusCode)

	var created stubapi.Application

	t.Run("create after verification", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/applications/", pair.AccessToken, fiber.Map{
			"company": "acme", "role": "backend engineer",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		decodeBody(t, resp, &created)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "acme", created.Company)
		assert.Equal(t, "wishlist", created.Stage, "new applications start in the default stage")
	})

	t.Run("list returns the board", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/applications/", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list struct {
			Applications []stubapi.Application `json:"applications"`
			Total        int                   `json:"total"`
		}
		decodeBody(t, resp, &list)
		assert.Equal(t, 1, list.Total)
		require.Len(t, list.Applications, 1)
		assert.Equal(t, created.ID, list.Applications[0].ID)
	})

	t.Run("update stage", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPatch, "/api/v1/applications/"+created.ID, pair.AccessToken, fiber.Map{
			"stage": "interview",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var updated stubapi.Application
		decodeBody(t, resp, &updated)
		assert.Equal(t, "interview", updated.Stage)
	})

	t.Run("add note", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/applications/"+created.ID+"/notes", pair.AccessToken, fiber.Map{
			"text": "phone screen went well",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var note stubapi.Note
		decodeBody(t, resp, &note)
		assert.Equal(t, created.ID, note.ApplicationID)
		assert.Equal(t, "phone screen went well", note.Text)
	})

	t.Run("board is private per user", func(t *testing.T) {
		other := registerUser(t, app, "other@example.com")

		resp := doJSON(t, app, http.MethodGet, "/api/v1/applications/"+created.ID, other.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, "/api/v1/applications/"+created.ID, pair.AccessToken, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		get := doJSON(t, app, http.MethodGet, "/api/v1/applications/"+created.ID, pair.AccessToken, nil)
		assert.Equal(t, http.StatusNotFound, get.StatusCode)
	})
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "not_found", body.Error.Code)
}
