package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidSignature подпись не прошла проверку или алгоритм не HS256.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired срок действия токена истёк.
	ErrExpired = errors.New("token expired")
	// ErrMalformed токен не разбирается в ожидаемую структуру.
	ErrMalformed = errors.New("malformed token")
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
// Email передаётся в стандартном поле sub.
type CustomClaims struct {
	Role                 string `json:"role"`   // Роль пользователя
	UserID               string `json:"userId"` // Идентификатор аккаунта
	jwt.RegisteredClaims        // sub (email), jti, iat, exp
}

// Email возвращает email из поля sub.
func (c *CustomClaims) Email() string {
	return c.Subject
}

// GenerateToken создает JWT токен, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL. Каждый токен получает
// собственный jti, поэтому два токена, выпущенные в одну секунду, различаются.
func (j *MakerImpl) GenerateToken(email, role, userID string) (string, error) {
	const op = "jwt.GenerateToken"
	now := j.now()
	claims := CustomClaims{
		Role:   role,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        uuid.NewString(),
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

// ParseToken парсит JWT токен, проверяет подпись и срок действия.
//
// Подпись проверяется до использования claims: для токена с неверной подписью
// всегда возвращается ErrInvalidSignature, даже если он просрочен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		// Method выставляется после разбора заголовка и claims, значит
		// не декодировалась сама подпись.
		if token != nil && token.Method != nil && errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
		}
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformed)
	}
	if claims.Subject == "" || claims.UserID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformed)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
