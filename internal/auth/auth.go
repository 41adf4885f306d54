// Package auth turns bearer tokens into model.Actor values on the request context.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

const issuer = "agency-portal"

// Claims are the session fields carried in the token.
type Claims struct {
	Role     model.Role `json:"role"`
	TenantID string     `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token for actor.
func IssueToken(secret []byte, actor model.Actor, ttl time.Duration) (string, error) {
	if !actor.Role.Valid() {
		return "", fmt.Errorf("cannot issue token for role %q", actor.Role)
	}
	now := time.Now()
	claims := Claims{
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if actor.Role.IsClient() {
		claims.TenantID = actor.TenantID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates a token and returns its actor. Every failure is an AuthError.
func ParseToken(secret []byte, token string) (model.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Actor{}, appErrors.NewAuthError("invalid session token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Actor{}, appErrors.NewAuthError("invalid session subject")
	}
	actor := model.Actor{UserID: userID, Role: claims.Role}

	switch {
	case claims.Role.IsClient():
		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil || tenantID == uuid.Nil {
			return model.Actor{}, appErrors.NewAuthError("client session without tenant")
		}
		actor.TenantID = tenantID
	case claims.Role.IsAgency():
	default:
		return model.Actor{}, appErrors.NewAuthError("unknown role in session")
	}
	return actor, nil
}

type actorKey struct{}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}

// Middleware rejects requests without a valid "Authorization: Bearer" token with 401.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				unauthorized(w, appErrors.NewAuthError("missing session token"))
				return
			}
			actor, err := ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	var authErr *appErrors.AuthError
	msg := "unauthorized"
	if errors.As(err, &authErr) {
		msg = authErr.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
