package auth

import (
	"context"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
)

// Ensure StaticProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*StaticProvider)(nil)

// StaticProvider returns a fixed token. Useful where a token is
// obtained out of band.
type StaticProvider struct {
	token string
}

// NewStaticProvider creates a provider returning token verbatim.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

// AccessToken returns the fixed token.
func (p *StaticProvider) AccessToken(_ context.Context) (string, error) {
	if p.token == "" {
		return "", domain.ErrAuthRequired
	}
	return p.token, nil
}
