package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

func oauthSettings(tokenURL string) domain.OAuthSettings {
	return domain.OAuthSettings{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
		TokenURL:     tokenURL,
	}
}

func TestOAuthProviderRefreshesAndCaches(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-token", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"ya29.fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	provider, err := NewOAuthProvider(oauthSettings(server.URL))
	require.NoError(t, err)

	ctx := context.Background()
	token, err := provider.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ya29.fresh", token)

	// Second call is served from the cache.
	token, err = provider.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ya29.fresh", token)
	assert.Equal(t, 1, hits)
}

func TestOAuthProviderEndpointFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	provider, err := NewOAuthProvider(oauthSettings(server.URL))
	require.NoError(t, err)

	_, err = provider.AccessToken(context.Background())
	require.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestNewOAuthProviderIncompleteSettings(t *testing.T) {
	_, err := NewOAuthProvider(domain.OAuthSettings{ClientID: "only-this"})
	require.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestStaticProvider(t *testing.T) {
	token, err := NewStaticProvider("tok").AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = NewStaticProvider("").AccessToken(context.Background())
	require.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestProviderFor(t *testing.T) {
	provider, err := ProviderFor(domain.Account{Auth: domain.AuthPassword})
	require.NoError(t, err)
	assert.Nil(t, provider)

	provider, err = ProviderFor(domain.Account{
		Auth:  domain.AuthXOAuth2,
		OAuth: oauthSettings("https://oauth2.example.com/token"),
	})
	require.NoError(t, err)
	assert.NotNil(t, provider)

	_, err = ProviderFor(domain.Account{Auth: "kerberos"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
