package domain

import (
	"fmt"
	"net"
	"strconv"
)

// AuthMethod selects how the client authenticates against the IMAP server.
type AuthMethod string

const (
	// AuthPassword uses the IMAP LOGIN command with a stored password.
	AuthPassword AuthMethod = "password"

	// AuthXOAuth2 uses SASL XOAUTH2 with an OAuth2 bearer token.
	AuthXOAuth2 AuthMethod = "xoauth2"
)

// IsValid reports whether the auth method is one the client supports.
func (m AuthMethod) IsValid() bool {
	return m == AuthPassword || m == AuthXOAuth2
}

// Placeholder values written into a freshly generated config file.
// An account still carrying any of them is not usable for connecting.
const (
	PlaceholderHost = "host goes here"
	PlaceholderUser = "user goes here"
	PlaceholderPass = "password goes here"
)

// OAuthSettings holds the OAuth2 client configuration used for XOAUTH2.
type OAuthSettings struct {
	// ClientID is the OAuth2 application client identifier.
	ClientID string

	// ClientSecret is the OAuth2 application secret.
	ClientSecret string

	// RefreshToken is the long-lived token exchanged for access tokens.
	RefreshToken string

	// TokenURL is the provider token endpoint.
	TokenURL string
}

// IsConfigured reports whether enough OAuth settings are present to
// mint access tokens.
func (o OAuthSettings) IsConfigured() bool {
	return o.ClientID != "" && o.RefreshToken != "" && o.TokenURL != ""
}

// Account holds the connection settings for one IMAP account.
type Account struct {
	// Host is the IMAP server hostname.
	Host string

	// Port is the IMAPS port, typically 993.
	Port int

	// User is the login name.
	User string

	// Password is the account password. Used when Auth is AuthPassword.
	Password string

	// Auth selects the authentication mechanism. Defaults to AuthPassword.
	Auth AuthMethod

	// OAuth is the XOAUTH2 client configuration. Used when Auth is AuthXOAuth2.
	OAuth OAuthSettings

	// InsecureSkipVerify disables TLS certificate verification.
	// Off by default; only for servers with self-signed certificates.
	InsecureSkipVerify bool
}

// DefaultAccount returns the account written into a freshly generated
// config file. All connection fields are placeholders.
func DefaultAccount() Account {
	return Account{
		Host:     PlaceholderHost,
		Port:     0,
		User:     PlaceholderUser,
		Password: PlaceholderPass,
		Auth:     AuthPassword,
	}
}

// PlaceholderFields returns the names of fields still carrying
// generated placeholder values, in display order.
func (a Account) PlaceholderFields() []string {
	var fields []string
	if a.Host == PlaceholderHost {
		fields = append(fields, "host")
	}
	if a.Port == 0 {
		fields = append(fields, "port")
	}
	if a.User == PlaceholderUser {
		fields = append(fields, "user")
	}
	if a.Auth == AuthPassword && a.Password == PlaceholderPass {
		fields = append(fields, "password")
	}
	return fields
}

// IsConfigured reports whether the account has been edited away from
// the generated placeholders.
func (a Account) IsConfigured() bool {
	return len(a.PlaceholderFields()) == 0
}

// Validate checks the account settings are usable for connecting.
func (a Account) Validate() error {
	if !a.IsConfigured() {
		return ErrPlaceholderConfig
	}
	if a.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidInput)
	}
	if a.Port <= 0 || a.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidInput, a.Port)
	}
	if a.User == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	auth := a.Auth
	if auth == "" {
		auth = AuthPassword
	}
	if !auth.IsValid() {
		return fmt.Errorf("%w: unknown auth method %q", ErrInvalidInput, a.Auth)
	}
	if auth == AuthPassword && a.Password == "" {
		return fmt.Errorf("%w: password not set", ErrAuthRequired)
	}
	if auth == AuthXOAuth2 && !a.OAuth.IsConfigured() {
		return fmt.Errorf("%w: oauth client not configured", ErrAuthRequired)
	}
	return nil
}

// Address returns the host:port dial address.
func (a Account) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}
