// Package jwt реализует выпуск и проверку подписанных токенов личности.
//
// Токен несёт id, email и роль пользователя, подписывается HS256
// симметричным секретом и живёт ограниченное время. На сервере токены
// не хранятся: валидность определяется только подписью и сроком действия.
package jwt

import (
	"errors"
	"time"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

// DefaultTTL время жизни токена по умолчанию.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrTokenMalformed токен структурно некорректен.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalidSignature подпись токена не сходится.
	ErrTokenInvalidSignature = errors.New("token signature invalid")
)

// Maker описывает выпуск и проверку токенов.
type Maker interface {
	Issue(userID int64, email string, role models.Role) (string, error)
	Verify(tokenStr string) (*Claims, error)
}

// MakerImpl реализует Maker на секретном ключе и времени жизни токена.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// NewJWTMaker создаёт MakerImpl с секретом и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) *MakerImpl {
	m := &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
	if m.tokenTTL <= 0 {
		m.tokenTTL = DefaultTTL
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
