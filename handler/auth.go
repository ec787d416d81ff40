package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authorization bearer token is required")
	ErrInvalidToken = errors.New("invalid access token")
)

type contextKey string

const userContextKey contextKey = "user"

// User is the principal taken from a verified access token. Tokens are issued
// by the identity provider; this service only checks them.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

func ContextWithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userContextKey).(User)
	return u, ok
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Middleware rejects requests without a valid token and stores the user in
// the request context otherwise.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		const bearerPrefix = "Bearer "
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(header, bearerPrefix) {
			respondErr(ctx, rw, http.StatusUnauthorized, ErrMissingToken)
			return
		}

		u, err := a.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			respondErr(ctx, rw, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		next.ServeHTTP(rw, r.WithContext(ContextWithUser(ctx, u)))
	})
}

// Verify parses the token and returns its subject as the user.
func (a *Authenticator) Verify(token string) (User, error) {
	if token == "" {
		return User{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if c.Subject == "" {
		return User{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return User{ID: c.Subject, Email: c.Email}, nil
}
