package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobtrack/internal/client/config"
	"jobtrack/internal/client/events"
	"jobtrack/internal/client/session"
	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	LogRequestDispatched = "api request dispatched"
	LogRequestRetried    = "api request retried after refresh"
	LogForcedLogout      = "session torn down after unauthorized response"

	ErrorTransportFailed = "transport failure"
	ErrorBuildRequest    = "failed to build request"
	ErrorReadResponse    = "failed to read response body"
	ErrorDecodeResponse  = "failed to decode response body"
	ErrorRefreshDeclined = "refresh before request failed, proceeding without token"
)

// RequestOption модифицирует исходящий запрос (например, заголовки).
type RequestOption func(*http.Request)

// WithHeader добавляет заголовок к исходящему запросу.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Client - отказоустойчивый диспетчер запросов. Прикладывает токен,
// выполняет вызов и на 401 инициирует ровно одно координированное
// обновление токенов с одним повтором запроса.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	sessions     *session.Manager
	refresher    *session.Refresher
	unauthorized *events.Hub
	forbidden    *events.Hub
	expirySkew   time.Duration
	requiresAuth func(string) bool
}

// NewClient создает диспетчер запросов.
func NewClient(
	cfg *config.APIConfig,
	sessions *session.Manager,
	refresher *session.Refresher,
	unauthorized *events.Hub,
	forbidden *events.Hub,
	expirySkew time.Duration,
) *Client {
	return &Client{
		baseURL:      cfg.GetBaseURL(),
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		sessions:     sessions,
		refresher:    refresher,
		unauthorized: unauthorized,
		forbidden:    forbidden,
		expirySkew:   expirySkew,
		requiresAuth: RequiresAuth,
	}
}

// Request выполняет вызов backend и декодирует успешный ответ в out.
// Пустой ответ (204) оставляет out нетронутым. Любой неуспешный ответ
// возвращается как *APIError со статусом и причиной.
func (c *Client) Request(ctx context.Context, method, path string, body any, out any, opts ...RequestOption) error {
	log := logger.Log(ctx).With(zap.String("method", method), zap.String("path", path))

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrorBuildRequest, err)
		}
		payload = data
	}

	authRequired := c.requiresAuth(path)
	state := StateUnauthenticated

	var current *session.Session
	if authRequired {
		current = c.sessions.Session()
		if session.IsExpiring(current, c.expirySkew) {
			state = StateRefreshing
			refreshed, err := c.refresher.Refresh(ctx)
			if err != nil {
				// Запрос уходит без токена: отказ backend сведет
				// оба исхода к единому пути обработки 401.
				log.Debug(ctx, ErrorRefreshDeclined, zap.Error(err))
			}
			current = refreshed
		}
		if current != nil {
			state = StateAuthenticated
		} else {
			state = StateUnauthenticated
		}
	}

	log.Debug(ctx, LogRequestDispatched, zap.String("state", state.String()))

	// Цикл управляется состоянием: повторное обновление токенов для
	// одного запроса невозможно, потому что 401 в состоянии Refreshing
	// ведет только в Unauthorized.
	var (
		resp     *http.Response
		respBody []byte
		err      error
	)
	for {
		resp, respBody, err = c.do(ctx, method, path, payload, current, opts)
		if err != nil {
			return err
		}
		if !authRequired || resp.StatusCode != http.StatusUnauthorized {
			break
		}

		if state == StateRefreshing {
			// Повторный 401 терминален: новых обновлений не будет.
			state = StateUnauthorized
			c.forceLogout(ctx)
			break
		}

		state = StateRefreshing
		refreshed, refreshErr := c.refresher.Refresh(ctx)
		if refreshed == nil {
			log.Debug(ctx, ErrorRefreshDeclined, zap.Error(refreshErr))
			state = StateUnauthorized
			c.forceLogout(ctx)
			break
		}

		current = refreshed
		log.Info(ctx, LogRequestRetried, zap.String("state", state.String()))
	}

	return c.handleResponse(ctx, resp.StatusCode, resp.Header.Get("Content-Type"), respBody, out)
}

// Get выполняет GET запрос.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post выполняет POST запрос.
func (c *Client) Post(ctx context.Context, path string, body any, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodPost, path, body, out, opts...)
}

// Patch выполняет PATCH запрос.
func (c *Client) Patch(ctx context.Context, path string, body any, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete выполняет DELETE запрос.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodDelete, path, nil, nil, opts...)
}

// do выполняет один сетевой вызов с заново собранными заголовками.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, sess *session.Session, opts []RequestOption) (*http.Response, []byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrorBuildRequest, err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := logger.GetRequestID(ctx); ok {
		req.Header.Set("X-Request-ID", id)
	}
	for _, opt := range opts {
		opt(req)
	}
	if sess != nil && sess.AccessToken != "" {
		req.Header.Set("Authorization", sess.TokenType+" "+sess.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrorTransportFailed, zap.Error(err))
		return nil, nil, fmt.Errorf("%s: %w", ErrorTransportFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrorReadResponse, zap.Error(err))
		return nil, nil, fmt.Errorf("%s: %w", ErrorReadResponse, err)
	}

	return resp, respBody, nil
}

// handleResponse разбирает ответ: успех декодируется в out, отказ
// превращается в *APIError. 403 со структурированным кодом дополнительно
// публикуется в канал forbidden, не затрагивая сессию.
func (c *Client) handleResponse(ctx context.Context, status int, contentType string, body []byte, out any) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		if status == http.StatusNoContent || len(body) == 0 {
			return nil
		}
		if strings.Contains(contentType, "application/json") {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("%s: %w", ErrorDecodeResponse, err)
			}
			return nil
		}
		if text, ok := out.(*string); ok {
			*text = string(body)
		}
		return nil
	}

	apiErr := parseAPIError(status, body)
	if status == http.StatusForbidden && apiErr.Code != "" {
		c.forbidden.Publish(ctx, events.Reason{Code: apiErr.Code, Message: apiErr.Detail})
	}
	return apiErr
}

// forceLogout сводит принудительный выход к тому же состоянию, что и
// явный logout: нет сессии, нет ожидающего обновления.
func (c *Client) forceLogout(ctx context.Context) {
	_ = c.sessions.Clear(ctx)
	logger.Log(ctx).Warn(ctx, LogForcedLogout)
	c.unauthorized.Publish(ctx, events.Reason{Code: events.CodeSessionExpired, Message: "session is no longer valid"})
}
