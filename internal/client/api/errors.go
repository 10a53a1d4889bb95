package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError переносит HTTP статус и структурированную причину отказа.
type APIError struct {
	Status int
	Code   string
	Detail string
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: HTTP %d (%s): %s", e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("api error: HTTP %d: %s", e.Status, e.Detail)
}

// errorEnvelope - структурированный конверт ошибки backend:
// {"error": {"code": "...", "message": "..."}}. Поле error может быть
// и строкой, поэтому разбирается через json.RawMessage.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Detail  string          `json:"detail"`
	Message string          `json:"message"`
}

type errorObject struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// parseAPIError извлекает причину отказа из тела ответа. Порядок:
// JSON конверт, сырой текст, затем общий "HTTP <status> <statusText>".
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Error) > 0 {
			var obj errorObject
			if err := json.Unmarshal(envelope.Error, &obj); err == nil && obj.Message != "" {
				apiErr.Code = obj.Code
				apiErr.Detail = obj.Message
				return apiErr
			}
			var text string
			if err := json.Unmarshal(envelope.Error, &text); err == nil && text != "" {
				apiErr.Detail = text
				return apiErr
			}
		}
		if envelope.Detail != "" {
			apiErr.Detail = envelope.Detail
			return apiErr
		}
		if envelope.Message != "" {
			apiErr.Detail = envelope.Message
			return apiErr
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Detail = text
		return apiErr
	}

	apiErr.Detail = fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	return apiErr
}
