// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки JWT токенов с email и ролями.
// MakerImpl — конкретная реализация с использованием секретного ключа и срока жизни.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создает токен с email, ролями и uid пользователя
	GenerateToken(email string, roles []string, userUID string) (string, error)
	// ParseToken возвращает *CustomClaims с email и ролями
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
