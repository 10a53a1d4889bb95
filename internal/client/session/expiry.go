package session

import "time"

// DefaultExpirySkew - запас по умолчанию, с которым токен считается
// устаревающим. Должен быть не меньше типичного времени запроса.
const DefaultExpirySkew = 30 * time.Second

// IsExpiring сообщает, нужно ли обновить access token перед использованием.
// Возвращает true при отсутствии сессии или когда now >= ExpiresAt - skew.
func IsExpiring(s *Session, skew time.Duration) bool {
	if s == nil {
		return true
	}
	if skew < 0 {
		skew = DefaultExpirySkew
	}
	return !time.Now().Before(s.ExpiresAt.Add(-skew))
}
