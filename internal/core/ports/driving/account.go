package driving

import "github.com/epistle-sh/epistle/internal/core/domain"

// AccountService manages the stored account configuration.
type AccountService interface {
	// Get returns the stored account.
	Get() (domain.Account, error)

	// Initialise ensures a config file exists, seeding placeholders
	// when missing. Reports whether a new file was created.
	Initialise() (created bool, err error)

	// Set updates one config field by name and persists the account.
	Set(field, value string) error

	// Warnings lists the fields still carrying placeholder values.
	Warnings() ([]string, error)

	// Path returns the config file path.
	Path() string
}
