package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the account configuration",
	Long: `View and edit the account configuration.

The config file lives at ~/.epistle/config.toml and is created with
placeholder values on first use.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a config file with placeholder values",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <field> [value]",
	Short: "Set one config field",
	Long: `Set one config field and save the file.

Fields: host, port, user, password, auth, insecure_skip_verify,
oauth.client_id, oauth.client_secret, oauth.refresh_token,
oauth.token_url.

When no value is given for password, it is prompted for without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if accountService == nil {
			return errors.New("account service not configured")
		}
		cmd.Println(accountService.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	created, err := accountService.Initialise()
	if err != nil {
		return err
	}
	if created {
		cmd.Printf("Created %s\n", accountService.Path())
		cmd.Println("Edit in your account settings before connecting.")
	} else {
		cmd.Printf("Config already exists at %s\n", accountService.Path())
	}
	return printWarnings(cmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	account, err := accountService.Get()
	if err != nil {
		return err
	}

	cmd.Printf("Config file: %s\n\n", accountService.Path())
	cmd.Printf("host: %s\n", account.Host)
	cmd.Printf("port: %d\n", account.Port)
	cmd.Printf("user: %s\n", account.User)
	cmd.Printf("password: %s\n", maskSecret(account.Password))
	auth := account.Auth
	if auth == "" {
		auth = domain.AuthPassword
	}
	cmd.Printf("auth: %s\n", auth)
	if account.InsecureSkipVerify {
		cmd.Println("insecure_skip_verify: true")
	}
	if account.Auth == domain.AuthXOAuth2 {
		cmd.Printf("oauth.client_id: %s\n", account.OAuth.ClientID)
		cmd.Printf("oauth.client_secret: %s\n", maskSecret(account.OAuth.ClientSecret))
		cmd.Printf("oauth.refresh_token: %s\n", maskSecret(account.OAuth.RefreshToken))
		cmd.Printf("oauth.token_url: %s\n", account.OAuth.TokenURL)
	}
	return printWarnings(cmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	field := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case field == "password":
		cmd.Print("Password: ")
		value = readSecret()
		cmd.Println()
	default:
		return fmt.Errorf("%w: no value given for %s", domain.ErrInvalidInput, field)
	}

	if err := accountService.Set(field, value); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", field)
	return nil
}

// printWarnings lists placeholder fields still to be edited.
func printWarnings(cmd *cobra.Command) error {
	warnings, err := accountService.Warnings()
	if err != nil {
		return err
	}
	for _, field := range warnings {
		cmd.Printf("Warning: %s still has a placeholder value\n", field)
	}
	return nil
}

// maskSecret hides all but the length class of a secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if s == domain.PlaceholderPass {
		return s
	}
	return strings.Repeat("*", 8)
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
