package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyzone/studyzone-api/internal/ports"
	"golang.org/x/oauth2"
)

func TestNewProvider_Success(t *testing.T) {
	issuer := ""
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := DiscoveryDocument{
			Issuer:                issuer,
			AuthorizationEndpoint: "https://sso.example.edu/auth",
			TokenEndpoint:         "https://sso.example.edu/token",
			UserinfoEndpoint:      "https://sso.example.edu/userinfo",
			JwksURI:               "https://sso.example.edu/jwks",
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	discoveryServer := httptest.NewServer(handler)
	defer discoveryServer.Close()
	issuer = discoveryServer.URL

	config := ProviderConfig{
		ClientID:     "studyzone-web",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/sso/callback",
		Scope:        "openid profile email groups",
		DiscoveryURL: discoveryServer.URL,
	}

	provider, err := NewProvider(config)
	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.Equal(t, "https://sso.example.edu/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, "https://sso.example.edu/token", provider.config.Endpoint.TokenURL)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name: "missing client ID",
			config: ProviderConfig{
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/callback",
				DiscoveryURL: "http://example.edu",
			},
			errMsg: "client ID is required",
		},
		{
			name: "missing client secret",
			config: ProviderConfig{
				ClientID:     "client",
				RedirectURL:  "http://localhost/callback",
				DiscoveryURL: "http://example.edu",
			},
			errMsg: "client secret is required",
		},
		{
			name:   "missing redirect URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret", DiscoveryURL: "http://example.edu"},
			errMsg: "redirect URL is required",
		},
		{
			name: "missing discovery URL",
			config: ProviderConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/callback",
			},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	provider := createTestProvider(t)
	ctx := context.Background()

	input := ports.BeginInput{RedirectURL: "http://localhost:8080/auth/sso/callback"}
	authURL, state, nonce, err := provider.Begin(ctx, input)

	require.NoError(t, err)
	assert.NotEmpty(t, authURL)
	assert.NotEmpty(t, state)
	assert.NotEmpty(t, nonce)
	assert.Contains(t, authURL, "https://sso.example.edu/auth")
	assert.Contains(t, authURL, "client_id=studyzone-web")
	assert.Contains(t, authURL, "state="+state)
	assert.Contains(t, authURL, "nonce="+nonce)
}

func TestProvider_Begin_EmptyRedirectURL(t *testing.T) {
	provider := createTestProvider(t)
	ctx := context.Background()

	_, _, _, err := provider.Begin(ctx, ports.BeginInput{RedirectURL: ""})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestProvider_Exchange_ValidationErrors(t *testing.T) {
	provider := createTestProvider(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		input  ports.ExchangeInput
		errMsg string
	}{
		{
			name:   "missing code",
			input:  ports.ExchangeInput{State: "state", Nonce: "nonce"},
			errMsg: "authorization code is required",
		},
		{
			name:   "missing state",
			input:  ports.ExchangeInput{Code: "code", Nonce: "nonce"},
			errMsg: "state is required",
		},
		{
			name:   "missing nonce",
			input:  ports.ExchangeInput{Code: "code", State: "state"},
			errMsg: "nonce is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Exchange(ctx, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGenerateRandomString(t *testing.T) {
	str1, err := generateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, str1, 16)

	str2, err := generateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, str2, 32)

	assert.NotEqual(t, str1, str2)

	str3, err := generateRandomString(16)
	require.NoError(t, err)
	assert.NotEqual(t, str1, str3)
}

func TestProvider_ImplementsInterface(t *testing.T) {
	provider := createTestProvider(t)
	var _ ports.FederatedProvider = provider
}

func TestProvider_Exchange_UnreachableTokenEndpoint(t *testing.T) {
	provider := createTestProvider(t)
	ctx := context.Background()

	input := ports.ExchangeInput{
		Code:  "test-code",
		State: "test-state",
		Nonce: "test-nonce",
	}

	// Validation passes but the fake token endpoint rejects the exchange.
	_, err := provider.Exchange(ctx, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange code for token")
}

func TestGetIDTokenFromToken_Success(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	idTok, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", idTok)
}

func TestGetIDTokenFromToken_Missing(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"not_id": "x"})
	_, err := getIDTokenFromToken(tok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id_token")
}

func TestGetIDTokenFromToken_Nil(t *testing.T) {
	_, err := getIDTokenFromToken(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil token")
}

func Test_mapIDTokenClaims(t *testing.T) {
	claims := idTokenClaims{
		Sub:    "u-1234",
		Name:   "Ada Lovelace",
		Email:  "ada@example.edu",
		Groups: []string{"students", "math-101"},
	}

	f := mapIDTokenClaims(claims)
	assert.Equal(t, "u-1234", f.userID)
	assert.Equal(t, "ada@example.edu", f.email)
	assert.Equal(t, "Ada Lovelace", f.fullName)
	assert.Equal(t, []string{"students", "math-101"}, f.groups)
}

func Test_mapIDTokenClaims_ComposedName(t *testing.T) {
	claims := idTokenClaims{
		Sub:        "u-5678",
		GivenName:  "Grace",
		FamilyName: "Hopper",
		Email:      "grace@example.edu",
	}

	f := mapIDTokenClaims(claims)
	assert.Equal(t, "Grace Hopper", f.fullName)
}

func Test_fillFromUserInfoClaims(t *testing.T) {
	f := idFields{userID: "u-1"}
	ui := UserInfo{
		Subject: "ignored",
		Name:    "Ada Lovelace",
		Email:   "ada@example.edu",
		Groups:  []string{"lms-admins"},
	}

	fillFromUserInfoClaims(&f, ui)
	assert.Equal(t, "u-1", f.userID)
	assert.Equal(t, "ada@example.edu", f.email)
	assert.Equal(t, "Ada Lovelace", f.fullName)
	assert.Equal(t, []string{"lms-admins"}, f.groups)
}

// createTestProvider creates a test provider with a mocked discovery endpoint.
func createTestProvider(t *testing.T) *Provider {
	t.Helper()

	issuer := ""
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := DiscoveryDocument{
			Issuer:                issuer,
			AuthorizationEndpoint: "https://sso.example.edu/auth",
			TokenEndpoint:         "https://sso.example.edu/token",
			UserinfoEndpoint:      "https://sso.example.edu/userinfo",
			JwksURI:               "https://sso.example.edu/jwks",
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	discoveryServer := httptest.NewServer(handler)
	t.Cleanup(discoveryServer.Close)
	issuer = discoveryServer.URL

	config := ProviderConfig{
		ClientID:     "studyzone-web",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/sso/callback",
		Scope:        "openid profile email groups",
		DiscoveryURL: discoveryServer.URL,
	}

	provider, err := NewProvider(config)
	require.NoError(t, err)
	return provider
}
