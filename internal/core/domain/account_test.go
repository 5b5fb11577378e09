package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configuredAccount() Account {
	return Account{
		Host:     "imap.example.org",
		Port:     993,
		User:     "alice",
		Password: "hunter2",
		Auth:     AuthPassword,
	}
}

func TestDefaultAccount_AllPlaceholders(t *testing.T) {
	a := DefaultAccount()

	assert.False(t, a.IsConfigured())
	assert.Equal(t, []string{"host", "port", "user", "password"}, a.PlaceholderFields())
}

func TestAccount_PlaceholderFields_Partial(t *testing.T) {
	a := DefaultAccount()
	a.Host = "imap.example.org"
	a.Port = 993

	assert.Equal(t, []string{"user", "password"}, a.PlaceholderFields())
}

func TestAccount_Validate_Configured(t *testing.T) {
	require.NoError(t, configuredAccount().Validate())
}

func TestAccount_Validate_Placeholders(t *testing.T) {
	err := DefaultAccount().Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlaceholderConfig)
}

func TestAccount_Validate_PortRange(t *testing.T) {
	a := configuredAccount()
	a.Port = 70000

	err := a.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAccount_Validate_EmptyAuthDefaultsToPassword(t *testing.T) {
	a := configuredAccount()
	a.Auth = ""

	require.NoError(t, a.Validate())
}

func TestAccount_Validate_UnknownAuth(t *testing.T) {
	a := configuredAccount()
	a.Auth = AuthMethod("kerberos")

	err := a.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAccount_Validate_MissingPassword(t *testing.T) {
	a := configuredAccount()
	a.Password = ""

	err := a.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthRequired))
}

func TestAccount_Validate_XOAuth2(t *testing.T) {
	a := configuredAccount()
	a.Auth = AuthXOAuth2
	a.Password = ""

	err := a.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthRequired)

	a.OAuth = OAuthSettings{
		ClientID:     "client",
		RefreshToken: "refresh",
		TokenURL:     "https://oauth2.example.org/token",
	}
	require.NoError(t, a.Validate())
}

func TestAccount_Address(t *testing.T) {
	assert.Equal(t, "imap.example.org:993", configuredAccount().Address())
}

func TestAuthMethod_IsValid(t *testing.T) {
	assert.True(t, AuthPassword.IsValid())
	assert.True(t, AuthXOAuth2.IsValid())
	assert.False(t, AuthMethod("ntlm").IsValid())
}
