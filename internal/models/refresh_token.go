package models

import "time"

// RefreshToken представляет одноразовый refresh-токен пользователя.
// Токен ротируется при каждом использовании: старая запись удаляется,
// новая создается в одной транзакции.
type RefreshToken struct {
	Token     string    // Непрозрачная строка токена
	UserUID   string    // Владелец токена
	ExpiresAt time.Time // Срок действия
	CreatedAt time.Time // Момент выдачи
}

// IsExpired сообщает, истек ли срок действия токена.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
