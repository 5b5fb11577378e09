package services

import (
	"context"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
)

// fakeAccountStore serves a fixed account.
type fakeAccountStore struct {
	account domain.Account
	created bool
	loadErr error
}

func (s *fakeAccountStore) Load() (domain.Account, bool, error) {
	return s.account, s.created, s.loadErr
}

func (s *fakeAccountStore) Save(account domain.Account) error {
	s.account = account
	return nil
}

func (s *fakeAccountStore) Path() string {
	return "/tmp/epistle-test/config.toml"
}

func configuredAccount() domain.Account {
	return domain.Account{
		Host:     "imap.example.com",
		Port:     993,
		User:     "alice",
		Password: "secret",
		Auth:     domain.AuthPassword,
	}
}

// fakeSession scripts one mail session and records the calls made.
type fakeSession struct {
	calls []string

	mailboxes []domain.MailboxInfo
	status    *domain.MailboxStatus
	searchHit []uint32
	fetched   []driven.FetchedMessage
	expunged  []uint32

	selectErr error
	storeErr  error
	closed    bool
}

func (s *fakeSession) record(call string) {
	s.calls = append(s.calls, call)
}

func (s *fakeSession) Select(_ context.Context, mailbox string) (*domain.MailboxStatus, error) {
	s.record("SELECT " + mailbox)
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	if s.status != nil {
		return s.status, nil
	}
	return &domain.MailboxStatus{Name: mailbox}, nil
}

func (s *fakeSession) List(_ context.Context, reference, pattern string) ([]domain.MailboxInfo, error) {
	s.record("LIST " + reference + " " + pattern)
	return s.mailboxes, nil
}

func (s *fakeSession) Status(_ context.Context, mailbox string, _ []domain.StatusItem) (*domain.MailboxStatus, error) {
	s.record("STATUS " + mailbox)
	if s.status != nil {
		return s.status, nil
	}
	return &domain.MailboxStatus{Name: mailbox}, nil
}

func (s *fakeSession) Search(_ context.Context, _ string, criteria ...string) ([]uint32, error) {
	s.record("SEARCH")
	_ = criteria
	return s.searchHit, nil
}

func (s *fakeSession) Fetch(_ context.Context, seqSet string, _ ...driven.FetchItem) ([]driven.FetchedMessage, error) {
	s.record("FETCH " + seqSet)
	return s.fetched, nil
}

func (s *fakeSession) Store(_ context.Context, seqSet string, action domain.StoreAction, flags ...string) error {
	s.record("STORE " + seqSet + " " + string(action))
	_ = flags
	return s.storeErr
}

func (s *fakeSession) Expunge(_ context.Context) ([]uint32, error) {
	s.record("EXPUNGE")
	return s.expunged, nil
}

func (s *fakeSession) Check(_ context.Context) error {
	s.record("CHECK")
	return nil
}

func (s *fakeSession) Noop(_ context.Context) error {
	s.record("NOOP")
	return nil
}

func (s *fakeSession) Logout(_ context.Context) error {
	s.record("LOGOUT")
	s.closed = true
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// fakeDialer hands out a fixed session and counts dials.
type fakeDialer struct {
	session *fakeSession
	dials   int
	err     error
}

func (d *fakeDialer) Dial(_ context.Context, _ domain.Account) (driven.MailSession, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.dials++
	return d.session, nil
}

func newTestManager(session *fakeSession) (*SessionManager, *fakeDialer) {
	dialer := &fakeDialer{session: session}
	manager := NewSessionManager(&fakeAccountStore{account: configuredAccount()}, dialer)
	return manager, dialer
}
