package driven

import "context"

// TokenProvider supplies OAuth2 access tokens for SASL XOAUTH2.
type TokenProvider interface {
	// AccessToken returns a currently valid bearer token, refreshing
	// it if necessary.
	AccessToken(ctx context.Context) (string, error)
}
