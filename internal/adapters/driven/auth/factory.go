package auth

import (
	"fmt"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
)

// ProviderFor returns the token provider matching the account's auth
// method. Password accounts need none and get nil.
func ProviderFor(account domain.Account) (driven.TokenProvider, error) {
	switch account.Auth {
	case "", domain.AuthPassword:
		return nil, nil
	case domain.AuthXOAuth2:
		return NewOAuthProvider(account.OAuth)
	default:
		return nil, fmt.Errorf("%w: auth method %q", domain.ErrInvalidInput, account.Auth)
	}
}
