package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"propintel/internal/httpapi/respond"
)

type contextKey string

// ClaimsKey — ключ контекста для claims токена.
const ClaimsKey contextKey = "claims"

// Claims — claims токена доступа к API.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

var ErrMissingToken = errors.New("missing bearer token")

// GetClaims возвращает claims из контекста запроса.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// IssueToken выпускает HS256-токен для subject со сроком жизни ttl.
func IssueToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия токена.
func ParseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// Auth требует заголовок Authorization: Bearer <jwt>. При disabled пропускает все запросы.
func Auth(secret string, disabled bool, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if disabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				respond.Error(w, log, http.StatusUnauthorized, respond.CodeUnauthorized, err.Error())
				return
			}

			claims, err := ParseToken(secret, raw)
			if err != nil {
				log.Debug("token rejected", slog.String("reason", err.Error()))
				respond.Error(w, log, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
