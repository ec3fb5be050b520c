package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/common"
)

// Middleware parses bearer tokens and materialises the caller as a
// common.Actor on the request context. Requests without a valid token pass
// through without an actor; handlers and services decide whether one is
// required.
type Middleware struct {
	secret []byte
}

func NewMiddleware(secret []byte) *Middleware {
	return &Middleware{secret: secret}
}

// Authenticate extracts the actor from the Authorization header, if present.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(
			strings.TrimPrefix(header, "Bearer "), claims,
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return m.secret, nil
			})
		if err != nil || !token.Valid {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		actor := common.Actor{UserID: userID, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(common.WithActor(r.Context(), actor)))
	})
}

// RequireRole rejects any request whose actor does not carry the given role.
// Services still run their own checks; this just fails the obvious cases at
// the router.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := common.ActorFromContext(r.Context())
			if !ok || actor.Role != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
