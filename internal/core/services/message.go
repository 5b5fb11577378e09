package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
	"github.com/epistle-sh/epistle/internal/core/ports/driving"
	"github.com/epistle-sh/epistle/internal/logger"
	"github.com/epistle-sh/epistle/internal/message"
)

// Ensure MessageService implements the interface.
var _ driving.MessageService = (*MessageService)(nil)

// MessageService exposes message-level operations on the shared session.
type MessageService struct {
	sessions *SessionManager
	cache    driven.HeaderCacheStore
}

// NewMessageService creates a new message service.
func NewMessageService(sessions *SessionManager, cache driven.HeaderCacheStore) *MessageService {
	return &MessageService{
		sessions: sessions,
		cache:    cache,
	}
}

// Search returns the sequence numbers matching the criteria.
func (s *MessageService) Search(ctx context.Context, mailbox string, criteria ...string) ([]uint32, error) {
	session, err := s.selectMailbox(ctx, mailbox)
	if err != nil {
		return nil, err
	}
	return session.Search(ctx, "", criteria...)
}

// Headers fetches flags and headers for a sequence set, decodes the
// envelopes and refreshes the header cache.
func (s *MessageService) Headers(ctx context.Context, mailbox, seqSet string) ([]domain.Envelope, error) {
	session, err := s.selectMailbox(ctx, mailbox)
	if err != nil {
		return nil, err
	}

	fetched, err := session.Fetch(ctx, seqSet, driven.FetchFlags, driven.FetchHeader)
	if err != nil {
		return nil, err
	}

	envelopes := make([]domain.Envelope, 0, len(fetched))
	for _, msg := range fetched {
		if len(msg.Header) == 0 {
			// Servers volunteer FLAGS-only FETCH replies when another
			// session changes a flag; those carry no header block.
			logger.Debug("skipping unsolicited fetch data for message %d", msg.SeqNum)
			continue
		}
		envelope, err := message.ParseEnvelope(msg.SeqNum, msg.Header)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", msg.SeqNum, err)
		}
		envelope.Flags = msg.Flags
		envelopes = append(envelopes, envelope)

		s.cacheEnvelope(ctx, mailbox, envelope)
	}
	return envelopes, nil
}

// cacheEnvelope stores one envelope in the header cache. Cache
// failures are logged, not surfaced; the fetch already succeeded.
func (s *MessageService) cacheEnvelope(ctx context.Context, mailbox string, envelope domain.Envelope) {
	if s.cache == nil {
		return
	}
	err := s.cache.Save(ctx, domain.CachedHeader{
		ID:        uuid.NewString(),
		Account:   s.sessions.AccountKey(),
		Mailbox:   mailbox,
		Envelope:  envelope,
		FetchedAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("caching header %d: %v", envelope.SeqNum, err)
	}
}

// CachedHeaders returns the locally cached envelopes for a mailbox
// without touching the server.
func (s *MessageService) CachedHeaders(ctx context.Context, mailbox string) ([]domain.CachedHeader, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.List(ctx, s.sessions.AccountKey(), mailbox)
}

// Read fetches one full message and renders it to text.
func (s *MessageService) Read(ctx context.Context, mailbox string, seqNum uint32) (*domain.RenderedMessage, error) {
	if seqNum == 0 {
		return nil, fmt.Errorf("%w: sequence numbers start at 1", domain.ErrInvalidInput)
	}
	session, err := s.selectMailbox(ctx, mailbox)
	if err != nil {
		return nil, err
	}

	fetched, err := session.Fetch(ctx, fmt.Sprintf("%d", seqNum), driven.FetchFlags, driven.FetchFull)
	if err != nil {
		return nil, err
	}
	if len(fetched) == 0 {
		return nil, fmt.Errorf("%w: message %d", domain.ErrNotFound, seqNum)
	}

	rendered, err := message.Render(seqNum, fetched[0].Body)
	if err != nil {
		return nil, fmt.Errorf("message %d: %w", seqNum, err)
	}
	rendered.Envelope.Flags = fetched[0].Flags
	return rendered, nil
}

// Flag applies a STORE action to a sequence set.
func (s *MessageService) Flag(
	ctx context.Context,
	mailbox, seqSet string,
	action domain.StoreAction,
	flags ...string,
) error {
	session, err := s.selectMailbox(ctx, mailbox)
	if err != nil {
		return err
	}
	return session.Store(ctx, seqSet, action, flags...)
}

// Delete marks a sequence set \Deleted and, when expunge is true,
// expunges the mailbox. Returns the expunged sequence numbers.
func (s *MessageService) Delete(ctx context.Context, mailbox, seqSet string, expunge bool) ([]uint32, error) {
	session, err := s.selectMailbox(ctx, mailbox)
	if err != nil {
		return nil, err
	}
	if err := session.Store(ctx, seqSet, domain.StoreAdd, domain.FlagDeleted); err != nil {
		return nil, err
	}
	if !expunge {
		return nil, nil
	}
	return s.expunge(ctx, session, mailbox)
}

// Expunge removes \Deleted messages from the mailbox.
func (s *MessageService) Expunge(ctx context.Context, mailbox string) ([]uint32, error) {
	session, err := s.selectMailbox(ctx, mailbox)
	if err != nil {
		return nil, err
	}
	return s.expunge(ctx, session, mailbox)
}

// expunge runs EXPUNGE and invalidates the mailbox cache: sequence
// numbers shift, so stale entries would point at the wrong messages.
func (s *MessageService) expunge(ctx context.Context, session driven.MailSession, mailbox string) ([]uint32, error) {
	expunged, err := session.Expunge(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && len(expunged) > 0 {
		if err := s.cache.Purge(ctx, s.sessions.AccountKey(), mailbox); err != nil {
			logger.Warn("purging header cache for %s: %v", mailbox, err)
		}
	}
	return expunged, nil
}

func (s *MessageService) selectMailbox(ctx context.Context, mailbox string) (driven.MailSession, error) {
	if _, err := s.sessions.Select(ctx, mailbox); err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx)
}
