package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
	"github.com/epistle-sh/epistle/internal/logger"
)

// SessionManager owns the IMAP session shared by the mailbox and
// message services. It dials lazily on first use and tracks the
// selected mailbox so repeated operations on the same mailbox skip
// redundant SELECTs.
type SessionManager struct {
	accounts driven.AccountStore
	dialer   driven.SessionDialer

	mu       sync.Mutex
	session  driven.MailSession
	account  domain.Account
	selected string
}

// NewSessionManager creates a session manager.
func NewSessionManager(accounts driven.AccountStore, dialer driven.SessionDialer) *SessionManager {
	return &SessionManager{
		accounts: accounts,
		dialer:   dialer,
	}
}

// Get returns the open session, dialing on first use.
func (m *SessionManager) Get(ctx context.Context) (driven.MailSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(ctx)
}

func (m *SessionManager) get(ctx context.Context) (driven.MailSession, error) {
	if m.session != nil {
		return m.session, nil
	}

	account, _, err := m.accounts.Load()
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	session, err := m.dialer.Dial(ctx, account)
	if err != nil {
		return nil, err
	}
	m.session = session
	m.account = account
	m.selected = ""
	return m.session, nil
}

// Select ensures the named mailbox is selected, returning its state.
// A nil status means the mailbox was already selected.
func (m *SessionManager) Select(ctx context.Context, mailbox string) (*domain.MailboxStatus, error) {
	if mailbox == "" {
		return nil, fmt.Errorf("%w: empty mailbox name", domain.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.get(ctx)
	if err != nil {
		return nil, err
	}
	if m.selected == mailbox {
		return nil, nil
	}

	status, err := session.Select(ctx, mailbox)
	if err != nil {
		m.selected = ""
		return nil, err
	}
	m.selected = mailbox
	return status, nil
}

// Selected returns the currently selected mailbox, or "".
func (m *SessionManager) Selected() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// AccountKey returns the user@host identity the cache is keyed by.
// Empty until the first successful dial.
func (m *SessionManager) AccountKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account.User == "" && m.account.Host == "" {
		return ""
	}
	return m.account.User + "@" + m.account.Host
}

// Invalidate drops the open session without logging out, so the next
// call redials with freshly loaded settings. Used when the config
// file changes under a running session.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return
	}
	if err := m.session.Close(); err != nil {
		logger.Warn("dropping session: %v", err)
	}
	m.session = nil
	m.selected = ""
}

// Close logs out and drops the session. Safe to call when no session
// is open.
func (m *SessionManager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Logout(ctx)
	m.session = nil
	m.selected = ""
	if err != nil {
		logger.Warn("logout: %v", err)
	}
	return err
}
