package driven

import "github.com/epistle-sh/epistle/internal/core/domain"

// AccountStore persists the account configuration.
type AccountStore interface {
	// Load reads the stored account. When no config file exists yet it
	// seeds one with placeholder values and reports created=true.
	Load() (account domain.Account, created bool, err error)

	// Save persists the account.
	Save(account domain.Account) error

	// Path returns the config file path, for display.
	Path() string
}
