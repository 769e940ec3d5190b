package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"github.com/synaptica-ai/afi-risk/pkg/gateway/httpclient"
	"golang.org/x/oauth2"
)

var ErrInvalidToken = errors.New("invalid token")

// OIDCAuthenticator accepts access tokens the issuer's userinfo endpoint
// recognises.
type OIDCAuthenticator struct {
	config      *oauth2.Config
	issuer      string
	userInfoURL string
	httpClient  *http.Client
}

func NewOIDCAuthenticator(issuer, clientID, clientSecret string) (*OIDCAuthenticator, error) {
	if issuer == "" || clientID == "" {
		return nil, fmt.Errorf("OIDC configuration incomplete")
	}
	issuer = strings.TrimSuffix(issuer, "/")

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("%s/authorize", issuer),
			TokenURL: fmt.Sprintf("%s/token", issuer),
		},
		Scopes: []string{"openid", "profile", "email"},
	}

	return &OIDCAuthenticator{
		config:      config,
		issuer:      issuer,
		userInfoURL: fmt.Sprintf("%s/userinfo", issuer),
		httpClient:  httpclient.New(5 * time.Second),
	}, nil
}

// ValidateToken exchanges token for the caller's claims. A token without a
// subject is rejected.
func (a *OIDCAuthenticator) ValidateToken(ctx context.Context, token string) (map[string]interface{}, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	client := a.config.Client(ctx, &oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned %d", ErrInvalidToken, resp.StatusCode)
	}

	var claims map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if sub, _ := claims["sub"].(string); sub == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	logger.Log.WithField("sub", claims["sub"]).Debug("token accepted")
	return claims, nil
}
