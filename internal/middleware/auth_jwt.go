package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/givehope/platform/internal/domain"
)

// Claims mirrors the tokens issued by the external auth service.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type identityKey struct{}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return authMiddleware(secret, true)
}

// OptionalAuth attaches the identity when a bearer token is present but
// lets guests through. A token that is present but invalid is still
// rejected; silently downgrading to guest would mask client bugs.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return authMiddleware(secret, false)
}

func authMiddleware(secret string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					http.Error(w, "missing authorization", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization", http.StatusUnauthorized)
				return
			}

			identity, err := ParseToken(secret, parts[1])
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// ParseToken verifies an HS256 token and extracts the identity claims.
func ParseToken(secret, token string) (domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return domain.Identity{}, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return domain.Identity{}, errors.New("invalid claims")
	}

	return domain.Identity{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  domain.Role(claims.Role),
	}, nil
}

// ContextWithIdentity attaches an identity; used by the middleware and tests.
func ContextWithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	if identity.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the request identity or the guest zero value.
func IdentityFromContext(ctx context.Context) domain.Identity {
	if v, ok := ctx.Value(identityKey{}).(domain.Identity); ok {
		return v
	}
	return domain.Identity{}
}
