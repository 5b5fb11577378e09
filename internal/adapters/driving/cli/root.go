// Package cli implements the command-line driving adapter.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/epistle-sh/epistle/internal/adapters/driven/auth"
	"github.com/epistle-sh/epistle/internal/adapters/driven/config/file"
	"github.com/epistle-sh/epistle/internal/adapters/driven/storage/memory"
	"github.com/epistle-sh/epistle/internal/adapters/driven/storage/sqlite"
	"github.com/epistle-sh/epistle/internal/connectors/imap"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
	"github.com/epistle-sh/epistle/internal/core/ports/driving"
	"github.com/epistle-sh/epistle/internal/core/services"
	"github.com/epistle-sh/epistle/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services the commands call into. Wired by Execute in production
// and replaced by fakes in tests.
var (
	accountService driving.AccountService
	mailboxService driving.MailboxService
	messageService driving.MessageService
	sessionManager *services.SessionManager
	accountStore   *file.AccountStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "epistle",
	Short: "A terminal IMAP mail client",
	Long: `epistle reads mail over IMAP from the terminal.

Connection settings live in ~/.epistle/config.toml; run
"epistle config init" to generate one, then edit in your account.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log the IMAP exchange to stderr")
}

// Execute wires the default services and runs the root command.
func Execute() error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeSession()

	return rootCmd.Execute()
}

// initServices builds the production service graph. Already-set
// services (from tests) are left alone.
func initServices() error {
	if accountService != nil {
		return nil
	}

	store, err := file.NewAccountStore("")
	if err != nil {
		return err
	}
	accountStore = store

	var cache driven.HeaderCacheStore
	db, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("header cache unavailable: %v", err)
		cache = memory.NewHeaderCacheStore()
	} else {
		cache = db.HeaderCacheStore()
	}

	dialer := &imap.Dialer{TokenFor: auth.ProviderFor}

	sessionManager = services.NewSessionManager(store, dialer)
	accountService = services.NewAccountService(store)
	mailboxService = services.NewMailboxService(sessionManager)
	messageService = services.NewMessageService(sessionManager, cache)
	return nil
}

// watchConfig reloads connection settings while a long-running
// command is active: a config file change drops the shared session so
// the next operation redials. Returns a stop function.
func watchConfig() func() {
	if accountStore == nil || sessionManager == nil {
		return func() {}
	}

	watcher, err := file.NewWatcher(accountStore, func() {
		sessionManager.Invalidate()
	})
	if err != nil {
		logger.Warn("config watcher unavailable: %v", err)
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("config watcher: %v", err)
		}
	}()
	return cancel
}

// closeSession logs out the shared session if one was opened.
func closeSession() {
	if sessionManager == nil {
		return
	}
	if err := sessionManager.Close(context.Background()); err != nil {
		logger.Warn("closing session: %v", err)
	}
}
