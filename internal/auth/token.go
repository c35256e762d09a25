package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session token claims. The token carries no identity beyond
// the random anonymous id; it only marks a transport session as ready.
type Claims struct {
	AnonymousID string `json:"anonymous_id"`
	jwt.RegisteredClaims
}

// Config holds token signing configuration.
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// TokenIssuer mints and validates HS256 session tokens.
type TokenIssuer struct {
	cfg Config
}

// NewTokenIssuer builds an issuer. A zero TTL defaults to 24 hours.
func NewTokenIssuer(cfg Config) *TokenIssuer {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &TokenIssuer{cfg: cfg}
}

// Issue creates a signed session token for the given anonymous id.
func (t *TokenIssuer) Issue(anonymousID string) (string, error) {
	now := time.Now()
	claims := Claims{
		AnonymousID: anonymousID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.cfg.Secret)
}

// Validate parses and validates a session token.
func (t *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if t.cfg.Issuer != "" && claims.Issuer != t.cfg.Issuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	return claims, nil
}
