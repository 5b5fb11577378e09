package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistle-sh/epistle/internal/adapters/driven/storage/memory"
	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
)

const testHeader = "From: Bob <bob@example.com>\r\n" +
	"To: alice@example.com\r\n" +
	"Subject: =?UTF-8?Q?Gr=C3=BC=C3=9Fe?=\r\n" +
	"Date: Tue, 25 Aug 2026 10:00:00 +0000\r\n" +
	"\r\n"

const testMessage = testHeader + "hello alice\r\n"

func newMessageService(session *fakeSession) (*MessageService, *memory.HeaderCacheStore) {
	manager, _ := newTestManager(session)
	cache := memory.NewHeaderCacheStore()
	return NewMessageService(manager, cache), cache
}

func TestMessageServiceHeadersDecodesAndCaches(t *testing.T) {
	session := &fakeSession{
		fetched: []driven.FetchedMessage{
			{SeqNum: 1, Flags: []string{domain.FlagSeen}, Header: []byte(testHeader)},
		},
	}
	service, cache := newMessageService(session)
	ctx := context.Background()

	envelopes, err := service.Headers(ctx, "INBOX", "1")
	require.NoError(t, err)
	require.Len(t, envelopes, 1)

	assert.Equal(t, "Grüße", envelopes[0].Subject)
	assert.Equal(t, "Bob <bob@example.com>", envelopes[0].From)
	assert.Equal(t, []string{domain.FlagSeen}, envelopes[0].Flags)

	cached, err := cache.List(ctx, "alice@imap.example.com", "INBOX")
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "Grüße", cached[0].Envelope.Subject)
	assert.NotEmpty(t, cached[0].ID)
	assert.False(t, cached[0].FetchedAt.IsZero())
}

func TestMessageServiceHeadersSkipsUnsolicitedFlagUpdates(t *testing.T) {
	// A concurrent session changing a flag makes the server volunteer
	// a FLAGS-only FETCH reply with no header block.
	session := &fakeSession{
		fetched: []driven.FetchedMessage{
			{SeqNum: 1, Flags: []string{domain.FlagSeen}, Header: []byte(testHeader)},
			{SeqNum: 9, Flags: []string{domain.FlagAnswered}},
		},
	}
	service, _ := newMessageService(session)

	envelopes, err := service.Headers(context.Background(), "INBOX", "1")
	require.NoError(t, err)
	require.Len(t, envelopes, 1)
	assert.Equal(t, uint32(1), envelopes[0].SeqNum)
}

func TestMessageServiceCachedHeaders(t *testing.T) {
	session := &fakeSession{
		fetched: []driven.FetchedMessage{
			{SeqNum: 1, Header: []byte(testHeader)},
		},
	}
	service, _ := newMessageService(session)
	ctx := context.Background()

	_, err := service.Headers(ctx, "INBOX", "1")
	require.NoError(t, err)
	callsAfterFetch := len(session.calls)

	cached, err := service.CachedHeaders(ctx, "INBOX")
	require.NoError(t, err)
	require.Len(t, cached, 1)

	// Cached listing must not touch the server.
	assert.Len(t, session.calls, callsAfterFetch)
}

func TestMessageServiceRead(t *testing.T) {
	session := &fakeSession{
		fetched: []driven.FetchedMessage{
			{SeqNum: 3, Flags: []string{domain.FlagSeen}, Body: []byte(testMessage)},
		},
	}
	service, _ := newMessageService(session)

	rendered, err := service.Read(context.Background(), "INBOX", 3)
	require.NoError(t, err)
	assert.Equal(t, "Grüße", rendered.Envelope.Subject)
	assert.Contains(t, rendered.Body, "hello alice")
	assert.Equal(t, []string{domain.FlagSeen}, rendered.Envelope.Flags)
}

func TestMessageServiceReadNotFound(t *testing.T) {
	service, _ := newMessageService(&fakeSession{})

	_, err := service.Read(context.Background(), "INBOX", 42)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.Read(context.Background(), "INBOX", 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMessageServiceSearch(t *testing.T) {
	session := &fakeSession{searchHit: []uint32{2, 84}}
	service, _ := newMessageService(session)

	nums, err := service.Search(context.Background(), "INBOX", "UNSEEN")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 84}, nums)
	assert.Equal(t, []string{"SELECT INBOX", "SEARCH"}, session.calls)
}

func TestMessageServiceDeleteWithoutExpunge(t *testing.T) {
	session := &fakeSession{}
	service, _ := newMessageService(session)

	expunged, err := service.Delete(context.Background(), "INBOX", "3", false)
	require.NoError(t, err)
	assert.Nil(t, expunged)
	assert.Equal(t, []string{"SELECT INBOX", "STORE 3 +FLAGS"}, session.calls)
}

func TestMessageServiceDeleteWithExpungePurgesCache(t *testing.T) {
	session := &fakeSession{
		fetched: []driven.FetchedMessage{
			{SeqNum: 3, Header: []byte(testHeader)},
		},
		expunged: []uint32{3},
	}
	service, cache := newMessageService(session)
	ctx := context.Background()

	_, err := service.Headers(ctx, "INBOX", "3")
	require.NoError(t, err)

	expunged, err := service.Delete(ctx, "INBOX", "3", true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{3}, expunged)

	cached, err := cache.List(ctx, "alice@imap.example.com", "INBOX")
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestMessageServiceFlag(t *testing.T) {
	session := &fakeSession{}
	service, _ := newMessageService(session)

	err := service.Flag(context.Background(), "INBOX", "1:3", domain.StoreRemove, domain.FlagSeen)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT INBOX", "STORE 1:3 -FLAGS"}, session.calls)
}
