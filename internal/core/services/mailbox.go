package services

import (
	"context"
	"fmt"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driving"
)

// Ensure MailboxService implements the interface.
var _ driving.MailboxService = (*MailboxService)(nil)

// MailboxService exposes mailbox-level operations on the shared session.
type MailboxService struct {
	sessions *SessionManager
}

// NewMailboxService creates a new mailbox service.
func NewMailboxService(sessions *SessionManager) *MailboxService {
	return &MailboxService{sessions: sessions}
}

// List returns the mailboxes under reference matching pattern.
func (s *MailboxService) List(ctx context.Context, reference, pattern string) ([]domain.MailboxInfo, error) {
	session, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	return session.List(ctx, reference, pattern)
}

// Status queries a mailbox for the given status items. Item names are
// validated before hitting the wire; an empty list means all items.
func (s *MailboxService) Status(ctx context.Context, mailbox string, items []string) (*domain.MailboxStatus, error) {
	statusItems := make([]domain.StatusItem, 0, len(items))
	for _, name := range items {
		item := domain.StatusItem(name)
		if !item.IsValid() {
			return nil, fmt.Errorf("%w: status item %q", domain.ErrInvalidInput, name)
		}
		statusItems = append(statusItems, item)
	}

	session, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	return session.Status(ctx, mailbox, statusItems)
}

// Select opens a mailbox and returns its state.
func (s *MailboxService) Select(ctx context.Context, mailbox string) (*domain.MailboxStatus, error) {
	status, err := s.sessions.Select(ctx, mailbox)
	if err != nil {
		return nil, err
	}
	if status == nil {
		// Already selected; ask the server for fresh counts.
		return s.Status(ctx, mailbox, nil)
	}
	return status, nil
}

// Check requests a checkpoint of the selected mailbox.
func (s *MailboxService) Check(ctx context.Context) error {
	if s.sessions.Selected() == "" {
		return domain.ErrNoMailboxSelected
	}
	session, err := s.sessions.Get(ctx)
	if err != nil {
		return err
	}
	return session.Check(ctx)
}
