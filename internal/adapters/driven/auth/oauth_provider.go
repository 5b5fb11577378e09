// Package auth provides token providers for SASL authentication.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
	"github.com/epistle-sh/epistle/internal/logger"
)

// Ensure OAuthProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*OAuthProvider)(nil)

// refreshBuffer forces a refresh slightly before the server-reported
// expiry to avoid presenting a token that dies mid-exchange.
const refreshBuffer = 5 * time.Minute

// OAuthProvider mints access tokens from a long-lived refresh token,
// caching them until shortly before expiry.
type OAuthProvider struct {
	source oauth2.TokenSource

	mu          sync.Mutex
	cachedToken string
	cacheExpiry time.Time
}

// NewOAuthProvider creates a token provider from the account's OAuth
// settings.
func NewOAuthProvider(settings domain.OAuthSettings) (*OAuthProvider, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: oauth settings incomplete", domain.ErrAuthRequired)
	}

	config := &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: settings.TokenURL},
	}
	seed := &oauth2.Token{RefreshToken: settings.RefreshToken}

	return &OAuthProvider{
		source: config.TokenSource(context.Background(), seed),
	}, nil
}

// AccessToken returns a currently valid bearer token, refreshing via
// the token endpoint when the cached one is stale.
func (p *OAuthProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	logger.Debug("refreshing oauth access token")
	token, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: refreshing token: %v", domain.ErrAuthInvalid, err)
	}

	p.cachedToken = token.AccessToken
	if !token.Expiry.IsZero() {
		p.cacheExpiry = token.Expiry.Add(-refreshBuffer)
	} else {
		p.cacheExpiry = time.Now().Add(refreshBuffer)
	}
	return p.cachedToken, nil
}
