package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/user"
)

var testSecret = []byte("test-secret")

func registerUser(t *testing.T, users user.Service, email, password string) *user.User {
	t.Helper()
	u, err := users.Register(context.Background(), user.RegisterRequest{
		Name:     "Budi Santoso",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func TestLoginIssuesValidToken(t *testing.T) {
	repo := user.NewMemoryRepository()
	users := user.NewService(repo)
	svc := NewService(repo, testSecret)
	u := registerUser(t, users, "budi@martminds.dev", "rahasia-banget")

	tokenString, err := svc.Login(context.Background(), "budi@martminds.dev", "rahasia-banget")
	require.NoError(t, err)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, "CUSTOMER", claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := user.NewMemoryRepository()
	users := user.NewService(repo)
	svc := NewService(repo, testSecret)
	registerUser(t, users, "budi@martminds.dev", "rahasia-banget")

	_, err := svc.Login(context.Background(), "budi@martminds.dev", "wrong-password")
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	_, err = svc.Login(context.Background(), "nobody@martminds.dev", "rahasia-banget")
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestMiddlewareSetsActor(t *testing.T) {
	repo := user.NewMemoryRepository()
	users := user.NewService(repo)
	svc := NewService(repo, testSecret)
	u := registerUser(t, users, "budi@martminds.dev", "rahasia-banget")

	token, err := svc.Login(context.Background(), "budi@martminds.dev", "rahasia-banget")
	require.NoError(t, err)

	var got common.Actor
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = common.ActorFromContext(r.Context())
	})
	handler := NewMiddleware(testSecret).Authenticate(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, found)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, "CUSTOMER", got.Role)
}

func TestMiddlewarePassesThroughWithoutToken(t *testing.T) {
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = common.ActorFromContext(r.Context())
	})
	handler := NewMiddleware(testSecret).Authenticate(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, found)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareIgnoresGarbageToken(t *testing.T) {
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = common.ActorFromContext(r.Context())
	})
	handler := NewMiddleware(testSecret).Authenticate(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, found)
}

func TestRequireRole(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})
	handler := RequireRole(string(user.RoleAdmin))(next)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	actor := common.Actor{UserID: uuid.New(), Role: "CUSTOMER"}
	req = httptest.NewRequest(http.MethodPost, "/", nil).
		WithContext(common.WithActor(context.Background(), actor))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	actor.Role = string(user.RoleAdmin)
	req = httptest.NewRequest(http.MethodPost, "/", nil).
		WithContext(common.WithActor(context.Background(), actor))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareRejectsUnsignedToken(t *testing.T) {
	claims := &Claims{
		Role: "ADMIN",
		StandardClaims: jwt.StandardClaims{
			Subject: uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = common.ActorFromContext(r.Context())
	})
	handler := NewMiddleware(testSecret).Authenticate(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, found, "only HMAC-signed tokens carry an actor")
}
