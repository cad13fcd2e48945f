package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrUnauthorized is returned when no authenticated principal is present.
var ErrUnauthorized = errors.New("unauthorized")

// Principal represents the authenticated user making a request. It is
// derived per-request from token state and never persisted.
type Principal struct {
	UserID uuid.UUID
	Email  string
	OrgID  uuid.UUID // org claimed by the credential; guards verify membership separately
	Role   string    // claimed role, informational only
}

type contextKey int

const (
	principalContextKey contextKey = iota
)

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from the request
// context. Returns nil if no principal is present (anonymous request).
func PrincipalFromContext(ctx context.Context) *Principal {
	principal, _ := ctx.Value(principalContextKey).(*Principal)
	return principal
}

// Verifier authenticates requests from an HS256 JWT in the Authorization
// header. When header auth is enabled (development only) it also accepts
// identity headers in place of a token.
type Verifier struct {
	secret          []byte
	allowHeaderAuth bool
}

// NewVerifier creates a verifier with the given signing secret.
// allowHeaderAuth enables the X-User-Id/X-Org-Id header fallback and must
// stay off in production.
func NewVerifier(secret []byte, allowHeaderAuth bool) *Verifier {
	return &Verifier{secret: secret, allowHeaderAuth: allowHeaderAuth}
}

// Middleware returns an HTTP middleware that authenticates the request when
// credentials are present. A request without credentials proceeds as
// anonymous; a request with a malformed or invalid token is rejected with
// 401. Handlers that require identity check PrincipalFromContext.
func (v *Verifier) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString := extractBearerToken(r)
			if tokenString != "" {
				principal, err := v.verifyToken(tokenString)
				if err != nil {
					log.Warn().Err(err).Msg("Failed to verify JWT")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
					return
				}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
				return
			}

			if v.allowHeaderAuth {
				if principal := principalFromHeaders(r); principal != nil {
					next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// verifyToken validates an HS256 JWT and extracts the principal claims.
func (v *Verifier) verifyToken(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	userID, err := parseUUIDClaim(claims, "sub")
	if err != nil {
		return nil, err
	}

	orgID, err := parseUUIDClaim(claims, "org_id")
	if err != nil {
		return nil, err
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &Principal{
		UserID: userID,
		Email:  email,
		OrgID:  orgID,
		Role:   role,
	}, nil
}

// principalFromHeaders builds a principal from development identity headers.
// Returns nil unless both X-User-Id and X-Org-Id carry valid UUIDs.
func principalFromHeaders(r *http.Request) *Principal {
	userID, err := uuid.Parse(r.Header.Get("X-User-Id"))
	if err != nil {
		return nil
	}
	orgID, err := uuid.Parse(r.Header.Get("X-Org-Id"))
	if err != nil {
		return nil
	}
	return &Principal{
		UserID: userID,
		Email:  r.Header.Get("X-User-Email"),
		OrgID:  orgID,
		Role:   r.Header.Get("X-User-Role"),
	}
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}

// parseUUIDClaim extracts a UUID from JWT claims.
func parseUUIDClaim(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	value, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing or invalid %s claim", key)
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s UUID: %w", key, err)
	}

	return id, nil
}
