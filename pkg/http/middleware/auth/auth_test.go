package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func customerClaims() Claims {
	return Claims{
		CustomerID: "cust-alice",
		Username:   "alice",
		Email:      "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerify(t *testing.T) {
	v := NewVerifier(secret)

	expired := customerClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	anonymous := customerClaims()
	anonymous.CustomerID = ""

	tests := []struct {
		name    string
		token   string
		want    actor.Actor
		wantErr bool
	}{
		{
			name:  "valid customer",
			token: sign(t, jwt.SigningMethodHS256, secret, customerClaims()),
			want:  actor.Actor{CustomerID: "cust-alice", Username: "alice", Email: "alice@example.com"},
		},
		{
			name:    "wrong secret",
			token:   sign(t, jwt.SigningMethodHS256, []byte("other"), customerClaims()),
			wantErr: true,
		},
		{
			name:    "wrong algorithm",
			token:   sign(t, jwt.SigningMethodHS512, secret, customerClaims()),
			wantErr: true,
		},
		{
			name:    "expired",
			token:   sign(t, jwt.SigningMethodHS256, secret, expired),
			wantErr: true,
		},
		{
			name:    "no customer and not admin",
			token:   sign(t, jwt.SigningMethodHS256, secret, anonymous),
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   "abc.def.ghi",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidToken)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	token, err = BearerToken("bearer  abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier(secret)
	admin := customerClaims()
	admin.IsAdmin = true

	handler := v.Middleware(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(a.Username))
	})))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"customer", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, customerClaims()), http.StatusForbidden},
		{"admin", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, admin), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.EqualValues(t, tt.status, body["status"])
			} else {
				assert.Equal(t, "alice", rec.Body.String())
			}
		})
	}
}
