package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
)

// Ensure AccountStore implements the interface.
var _ driven.AccountStore = (*AccountStore)(nil)

// fileAccount is the on-disk TOML schema.
type fileAccount struct {
	Host               string    `toml:"host"`
	Port               int       `toml:"port"`
	User               string    `toml:"user"`
	Password           string    `toml:"password,omitempty"`
	Auth               string    `toml:"auth,omitempty"`
	InsecureSkipVerify bool      `toml:"insecure_skip_verify,omitempty"`
	OAuth              fileOAuth `toml:"oauth,omitempty"`
}

type fileOAuth struct {
	ClientID     string `toml:"client_id,omitempty"`
	ClientSecret string `toml:"client_secret,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
	TokenURL     string `toml:"token_url,omitempty"`
}

// AccountStore is a TOML-backed implementation of driven.AccountStore.
// The config file carries credentials, so the directory is created
// 0700 and the file written 0600.
type AccountStore struct {
	mu       sync.Mutex
	filePath string
}

// NewAccountStore creates a store rooted at configDir. If configDir is
// empty, defaults to ~/.epistle/config.toml.
func NewAccountStore(configDir string) (*AccountStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".epistle")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &AccountStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads the stored account. When no config file exists yet it
// seeds one with placeholder values and reports created=true.
func (s *AccountStore) Load() (domain.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		account := domain.DefaultAccount()
		if err := s.save(account); err != nil {
			return domain.Account{}, false, err
		}
		return account, true, nil
	}
	if err != nil {
		return domain.Account{}, false, err
	}

	var fa fileAccount
	if err := toml.Unmarshal(data, &fa); err != nil {
		return domain.Account{}, false, fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	return fromFile(fa), false, nil
}

// Save persists the account.
func (s *AccountStore) Save(account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(account)
}

// save writes the account to the TOML file (caller must hold lock).
func (s *AccountStore) save(account domain.Account) error {
	data, err := toml.Marshal(toFile(account))
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the config file path.
func (s *AccountStore) Path() string {
	return s.filePath
}

func toFile(a domain.Account) fileAccount {
	return fileAccount{
		Host:               a.Host,
		Port:               a.Port,
		User:               a.User,
		Password:           a.Password,
		Auth:               string(a.Auth),
		InsecureSkipVerify: a.InsecureSkipVerify,
		OAuth: fileOAuth{
			ClientID:     a.OAuth.ClientID,
			ClientSecret: a.OAuth.ClientSecret,
			RefreshToken: a.OAuth.RefreshToken,
			TokenURL:     a.OAuth.TokenURL,
		},
	}
}

func fromFile(fa fileAccount) domain.Account {
	return domain.Account{
		Host:               fa.Host,
		Port:               fa.Port,
		User:               fa.User,
		Password:           fa.Password,
		Auth:               domain.AuthMethod(fa.Auth),
		InsecureSkipVerify: fa.InsecureSkipVerify,
		OAuth: domain.OAuthSettings{
			ClientID:     fa.OAuth.ClientID,
			ClientSecret: fa.OAuth.ClientSecret,
			RefreshToken: fa.OAuth.RefreshToken,
			TokenURL:     fa.OAuth.TokenURL,
		},
	}
}
