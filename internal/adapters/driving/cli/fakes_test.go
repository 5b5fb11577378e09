package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

// fakeAccountService serves a fixed account for command tests.
type fakeAccountService struct {
	account domain.Account
	created bool
	sets    map[string]string
}

func (s *fakeAccountService) Get() (domain.Account, error) {
	return s.account, nil
}

func (s *fakeAccountService) Initialise() (bool, error) {
	return s.created, nil
}

func (s *fakeAccountService) Set(field, value string) error {
	if s.sets == nil {
		s.sets = make(map[string]string)
	}
	s.sets[field] = value
	return nil
}

func (s *fakeAccountService) Warnings() ([]string, error) {
	return s.account.PlaceholderFields(), nil
}

func (s *fakeAccountService) Path() string {
	return "/home/alice/.epistle/config.toml"
}

// fakeMailboxService scripts mailbox operations.
type fakeMailboxService struct {
	mailboxes []domain.MailboxInfo
	status    *domain.MailboxStatus
	selectErr error
	checked   bool
}

func (s *fakeMailboxService) List(_ context.Context, _, _ string) ([]domain.MailboxInfo, error) {
	return s.mailboxes, nil
}

func (s *fakeMailboxService) Status(_ context.Context, mailbox string, items []string) (*domain.MailboxStatus, error) {
	for _, item := range items {
		if !domain.StatusItem(item).IsValid() {
			return nil, domain.ErrInvalidInput
		}
	}
	if s.status != nil {
		return s.status, nil
	}
	return &domain.MailboxStatus{Name: mailbox}, nil
}

func (s *fakeMailboxService) Select(_ context.Context, mailbox string) (*domain.MailboxStatus, error) {
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	if s.status != nil {
		return s.status, nil
	}
	return &domain.MailboxStatus{Name: mailbox}, nil
}

func (s *fakeMailboxService) Check(_ context.Context) error {
	s.checked = true
	return nil
}

// fakeMessageService scripts message operations.
type fakeMessageService struct {
	searchHit []uint32
	envelopes []domain.Envelope
	cached    []domain.CachedHeader
	rendered  *domain.RenderedMessage
	expunged  []uint32

	deleteCalls  []string
	deleteForced bool
	flagCalls    []string
}

func (s *fakeMessageService) Search(_ context.Context, _ string, _ ...string) ([]uint32, error) {
	return s.searchHit, nil
}

func (s *fakeMessageService) Headers(_ context.Context, _, _ string) ([]domain.Envelope, error) {
	return s.envelopes, nil
}

func (s *fakeMessageService) CachedHeaders(_ context.Context, _ string) ([]domain.CachedHeader, error) {
	return s.cached, nil
}

func (s *fakeMessageService) Read(_ context.Context, _ string, _ uint32) (*domain.RenderedMessage, error) {
	if s.rendered == nil {
		return nil, domain.ErrNotFound
	}
	return s.rendered, nil
}

func (s *fakeMessageService) Flag(_ context.Context, mailbox, seqSet string, action domain.StoreAction, _ ...string) error {
	s.flagCalls = append(s.flagCalls, mailbox+" "+seqSet+" "+string(action))
	return nil
}

func (s *fakeMessageService) Delete(_ context.Context, mailbox, seqSet string, expunge bool) ([]uint32, error) {
	s.deleteCalls = append(s.deleteCalls, mailbox+" "+seqSet)
	s.deleteForced = expunge
	if expunge {
		return s.expunged, nil
	}
	return nil, nil
}

func (s *fakeMessageService) Expunge(_ context.Context, _ string) ([]uint32, error) {
	return s.expunged, nil
}

// setServices installs fakes for one test and restores afterwards.
func setServices(t *testing.T, account *fakeAccountService, mailbox *fakeMailboxService, message *fakeMessageService) {
	t.Helper()

	origAccount := accountService
	origMailbox := mailboxService
	origMessage := messageService

	if account != nil {
		accountService = account
	}
	if mailbox != nil {
		mailboxService = mailbox
	}
	if message != nil {
		messageService = message
	}

	t.Cleanup(func() {
		accountService = origAccount
		mailboxService = origMailbox
		messageService = origMessage
	})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
