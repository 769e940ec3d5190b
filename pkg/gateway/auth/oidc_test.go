package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			http.NotFound(w, r)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Write([]byte(`{"sub":"clinician-7","email":"c7@example.org"}`))
		case "Bearer anonymous":
			w.Write([]byte(`{"email":"nobody@example.org"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestValidateToken(t *testing.T) {
	srv := newProvider(t)
	a, err := NewOIDCAuthenticator(srv.URL+"/", "afi-risk", "")
	require.NoError(t, err)

	claims, err := a.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "clinician-7", claims["sub"])

	_, err = a.ValidateToken(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.ValidateToken(context.Background(), "anonymous")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.ValidateToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewOIDCAuthenticatorRequiresIssuerAndClient(t *testing.T) {
	_, err := NewOIDCAuthenticator("", "client", "")
	assert.Error(t, err)
	_, err = NewOIDCAuthenticator("https://id.example.org", "", "")
	assert.Error(t, err)
}
