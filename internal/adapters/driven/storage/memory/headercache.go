// Package memory provides in-memory implementations of driven port
// interfaces, used in tests and as a cache fallback when the SQLite
// store cannot be opened.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
)

// Ensure HeaderCacheStore implements the interface.
var _ driven.HeaderCacheStore = (*HeaderCacheStore)(nil)

type cacheKey struct {
	account string
	mailbox string
}

// HeaderCacheStore is an in-memory implementation of
// driven.HeaderCacheStore.
type HeaderCacheStore struct {
	mu      sync.RWMutex
	headers map[cacheKey]map[uint32]domain.CachedHeader
}

// NewHeaderCacheStore creates a new in-memory header cache.
func NewHeaderCacheStore() *HeaderCacheStore {
	return &HeaderCacheStore{
		headers: make(map[cacheKey]map[uint32]domain.CachedHeader),
	}
}

// Save stores or updates one cached header.
func (s *HeaderCacheStore) Save(_ context.Context, header domain.CachedHeader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cacheKey{account: header.Account, mailbox: header.Mailbox}
	mailbox, ok := s.headers[key]
	if !ok {
		mailbox = make(map[uint32]domain.CachedHeader)
		s.headers[key] = mailbox
	}
	mailbox[header.Envelope.SeqNum] = header
	return nil
}

// List returns the cached headers for a mailbox ordered by sequence number.
func (s *HeaderCacheStore) List(_ context.Context, account, mailbox string) ([]domain.CachedHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.headers[cacheKey{account: account, mailbox: mailbox}]
	if !ok {
		return nil, nil
	}

	headers := make([]domain.CachedHeader, 0, len(entries))
	for _, h := range entries {
		headers = append(headers, h)
	}
	sort.Slice(headers, func(i, j int) bool {
		return headers[i].Envelope.SeqNum < headers[j].Envelope.SeqNum
	})
	return headers, nil
}

// Purge drops all cached headers for a mailbox.
func (s *HeaderCacheStore) Purge(_ context.Context, account, mailbox string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.headers, cacheKey{account: account, mailbox: mailbox})
	return nil
}
