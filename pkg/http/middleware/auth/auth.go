package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/pkg/http/response"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload of a storefront access token.
type Claims struct {
	CustomerID string `json:"customer_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsAdmin    bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 access tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{
		secret: secret,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// MustNewVerifierFromEnv reads the signing secret from JWT_SECRET.
func MustNewVerifierFromEnv() *Verifier {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET is not set")
	}

	return NewVerifier([]byte(secret))
}

// Verify parses the token and returns the actor it names.
func (v *Verifier) Verify(raw string) (actor.Actor, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return actor.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Username == "" || (claims.CustomerID == "" && !claims.IsAdmin) {
		return actor.Actor{}, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}

	return actor.Actor{
		CustomerID: claims.CustomerID,
		Username:   claims.Username,
		Email:      claims.Email,
		Admin:      claims.IsAdmin,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}

	return strings.TrimSpace(token), nil
}

type ctxKey struct{}

func WithActor(ctx context.Context, a actor.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func ActorFromContext(ctx context.Context) (actor.Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(actor.Actor)

	return a, ok
}

// Middleware rejects requests without a valid bearer token and stores the actor in the context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			response.WriteError(r.Context(), w, http.StatusUnauthorized, "unauthorized", err.Error())

			return
		}

		a, err := v.Verify(raw)
		if err != nil {
			response.WriteError(r.Context(), w, http.StatusUnauthorized, "unauthorized", ErrInvalidToken.Error())

			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
	})
}

// RequireAdmin answers 403 unless the authenticated actor is an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := ActorFromContext(r.Context())
		if !ok || !a.Admin {
			response.WriteError(r.Context(), w, http.StatusForbidden, "forbidden", "access denied")

			return
		}

		next.ServeHTTP(w, r)
	})
}
