package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

// Claims данные пользователя внутри токена.
type Claims struct {
	UserID int64       `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue выпускает токен для пользователя. Время выпуска и истечения
// берутся из часов MakerImpl.
func (j *MakerImpl) Issue(userID int64, email string, role models.Role) (string, error) {
	const op = "jwt.Issue"
	now := j.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия токена.
//
// Возвращает ErrTokenMalformed, ErrTokenExpired или ErrTokenInvalidSignature.
func (j *MakerImpl) Verify(tokenStr string) (*Claims, error) {
	const op = "jwt.Verify"
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	if !token.Valid || !claims.Role.Valid() || claims.UserID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenInvalidSignature
	default:
		return ErrTokenMalformed
	}
}
