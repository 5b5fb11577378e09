package services

import (
	"fmt"
	"strconv"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
	"github.com/epistle-sh/epistle/internal/core/ports/driving"
)

// Ensure AccountService implements the interface.
var _ driving.AccountService = (*AccountService)(nil)

// AccountService manages the stored account configuration.
type AccountService struct {
	store driven.AccountStore
}

// NewAccountService creates a new account service.
func NewAccountService(store driven.AccountStore) *AccountService {
	return &AccountService{store: store}
}

// Get returns the stored account, seeding a placeholder config when
// none exists yet.
func (s *AccountService) Get() (domain.Account, error) {
	account, _, err := s.store.Load()
	if err != nil {
		return domain.Account{}, fmt.Errorf("loading account: %w", err)
	}
	return account, nil
}

// Initialise ensures a config file exists. Reports whether a new file
// was created.
func (s *AccountService) Initialise() (bool, error) {
	_, created, err := s.store.Load()
	if err != nil {
		return false, fmt.Errorf("initialising config: %w", err)
	}
	return created, nil
}

// Set updates one config field by name and persists the account.
func (s *AccountService) Set(field, value string) error {
	account, err := s.Get()
	if err != nil {
		return err
	}

	switch field {
	case "host":
		account.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%w: port %q", domain.ErrInvalidInput, value)
		}
		account.Port = port
	case "user":
		account.User = value
	case "password":
		account.Password = value
	case "auth":
		method := domain.AuthMethod(value)
		if !method.IsValid() {
			return fmt.Errorf("%w: auth method %q", domain.ErrInvalidInput, value)
		}
		account.Auth = method
	case "insecure_skip_verify":
		insecure, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidInput, value)
		}
		account.InsecureSkipVerify = insecure
	case "oauth.client_id":
		account.OAuth.ClientID = value
	case "oauth.client_secret":
		account.OAuth.ClientSecret = value
	case "oauth.refresh_token":
		account.OAuth.RefreshToken = value
	case "oauth.token_url":
		account.OAuth.TokenURL = value
	default:
		return fmt.Errorf("%w: unknown config field %q", domain.ErrInvalidInput, field)
	}

	return s.store.Save(account)
}

// Warnings lists the fields still carrying placeholder values.
func (s *AccountService) Warnings() ([]string, error) {
	account, err := s.Get()
	if err != nil {
		return nil, err
	}
	return account.PlaceholderFields(), nil
}

// Path returns the config file path.
func (s *AccountService) Path() string {
	return s.store.Path()
}
