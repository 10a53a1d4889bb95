// Package api содержит отказоустойчивый диспетчер запросов к backend:
// единственную точку, через которую проходят все вызовы API.
package api

import "strings"

// Публичные маршруты авторизации: к ним не прикладывается
// Authorization заголовок и для них не выполняется обновление токенов.
var publicPathPrefixes = []string{
	"/auth/login",
	"/auth/register",
	"/auth/refresh",
	"/auth/verify",
}

// RequiresAuth сообщает, требует ли путь авторизации.
// Чистая функция над путем запроса; query string игнорируется.
func RequiresAuth(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for _, prefix := range publicPathPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return false
		}
	}
	return true
}
