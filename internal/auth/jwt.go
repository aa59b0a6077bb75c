package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// Claim fields must be exported for JSON serialization.
type sessionClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies time-bounded HS256 tokens carrying
// the account id and username.
type JWTManager struct {
	secretKey []byte
	maxAge    time.Duration
}

func NewJWTManager(secretKey string, maxAge time.Duration) *JWTManager {
	return &JWTManager{secretKey: []byte(secretKey), maxAge: maxAge}
}

func (m *JWTManager) Generate(accountID, username string, now time.Time) (string, error) {
	claims := sessionClaims{
		ID:       accountID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) Verify(tokenString string) (string, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal.ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", internal.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return "", "", internal.ErrInvalidToken
	}
	return claims.ID, claims.Username, nil
}
