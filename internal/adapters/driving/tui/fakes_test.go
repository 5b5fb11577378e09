package tui

import (
	"context"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driving"
)

type fakeMailboxService struct {
	mailboxes []domain.MailboxInfo
	err       error
}

var _ driving.MailboxService = (*fakeMailboxService)(nil)

func (f *fakeMailboxService) List(context.Context, string, string) ([]domain.MailboxInfo, error) {
	return f.mailboxes, f.err
}

func (f *fakeMailboxService) Status(context.Context, string, []string) (*domain.MailboxStatus, error) {
	return &domain.MailboxStatus{}, f.err
}

func (f *fakeMailboxService) Select(_ context.Context, mailbox string) (*domain.MailboxStatus, error) {
	return &domain.MailboxStatus{Name: mailbox}, f.err
}

func (f *fakeMailboxService) Check(context.Context) error {
	return f.err
}

type fakeMessageService struct {
	envelopes []domain.Envelope
	rendered  *domain.RenderedMessage
	err       error
}

var _ driving.MessageService = (*fakeMessageService)(nil)

func (f *fakeMessageService) Search(context.Context, string, ...string) ([]uint32, error) {
	return nil, f.err
}

func (f *fakeMessageService) Headers(context.Context, string, string) ([]domain.Envelope, error) {
	return f.envelopes, f.err
}

func (f *fakeMessageService) CachedHeaders(context.Context, string) ([]domain.CachedHeader, error) {
	return nil, f.err
}

func (f *fakeMessageService) Read(context.Context, string, uint32) (*domain.RenderedMessage, error) {
	return f.rendered, f.err
}

func (f *fakeMessageService) Flag(context.Context, string, string, domain.StoreAction, ...string) error {
	return f.err
}

func (f *fakeMessageService) Delete(context.Context, string, string, bool) ([]uint32, error) {
	return nil, f.err
}

func (f *fakeMessageService) Expunge(context.Context, string) ([]uint32, error) {
	return nil, f.err
}
