package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}

func IssueAccessToken(userID uuid.UUID, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

type ctxKey struct{}

// WithToken attaches a raw access token to ctx, e.g. one read from a request.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

// JWT resolves the signed-in user from an HS256 access token. A token carried
// by ctx wins over the configured Token.
type JWT struct {
	Secret []byte
	Token  string
}

func (j *JWT) UserID(ctx context.Context) (uuid.UUID, error) {
	tok := tokenFromContext(ctx)
	if tok == "" {
		tok = j.Token
	}
	if tok == "" {
		return uuid.Nil, fmt.Errorf("missing access token: %w", ErrUnauthorized)
	}
	if len(j.Secret) == 0 {
		return uuid.Nil, fmt.Errorf("no signing secret configured: %w", ErrUnauthorized)
	}

	claims, err := AccessClaimsFromToken(tok, j.Secret)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid access token: %v: %w", err, ErrUnauthorized)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject claim: %w", ErrUnauthorized)
	}
	return id, nil
}
