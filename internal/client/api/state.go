package api

// requestState представляет состояние авторизации одного запроса.
// Переходы зафиксированы в диспетчере и структурно исключают
// повторное обновление токенов для одного запроса.
type requestState int

// Состояния запроса.
const (
	// StateUnauthenticated - запрос выполняется без токена.
	StateUnauthenticated requestState = iota
	// StateAuthenticated - запрос выполняется с прикрепленным токеном.
	StateAuthenticated
	// StateRefreshing - выполняется координированное обновление токенов.
	StateRefreshing
	// StateUnauthorized - терминальный отказ, сессия разрушена.
	StateUnauthorized
)

func (s requestState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}
