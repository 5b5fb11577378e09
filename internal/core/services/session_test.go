package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

func TestSessionManagerDialsOnce(t *testing.T) {
	session := &fakeSession{}
	manager, dialer := newTestManager(session)
	ctx := context.Background()

	first, err := manager.Get(ctx)
	require.NoError(t, err)
	second, err := manager.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, dialer.dials)
	assert.Equal(t, "alice@imap.example.com", manager.AccountKey())
}

func TestSessionManagerRejectsPlaceholderAccount(t *testing.T) {
	manager := NewSessionManager(
		&fakeAccountStore{account: domain.DefaultAccount()},
		&fakeDialer{session: &fakeSession{}},
	)

	_, err := manager.Get(context.Background())
	require.ErrorIs(t, err, domain.ErrPlaceholderConfig)
}

func TestSessionManagerSkipsRedundantSelect(t *testing.T) {
	session := &fakeSession{}
	manager, _ := newTestManager(session)
	ctx := context.Background()

	status, err := manager.Select(ctx, "INBOX")
	require.NoError(t, err)
	require.NotNil(t, status)

	status, err = manager.Select(ctx, "INBOX")
	require.NoError(t, err)
	assert.Nil(t, status)

	_, err = manager.Select(ctx, "Archive")
	require.NoError(t, err)

	assert.Equal(t, []string{"SELECT INBOX", "SELECT Archive"}, session.calls)
	assert.Equal(t, "Archive", manager.Selected())
}

func TestSessionManagerSelectFailureClearsSelection(t *testing.T) {
	session := &fakeSession{}
	manager, _ := newTestManager(session)
	ctx := context.Background()

	_, err := manager.Select(ctx, "INBOX")
	require.NoError(t, err)

	session.selectErr = domain.ErrNotFound
	_, err = manager.Select(ctx, "Missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, manager.Selected())
}

func TestSessionManagerInvalidateRedials(t *testing.T) {
	session := &fakeSession{}
	manager, dialer := newTestManager(session)
	ctx := context.Background()

	_, err := manager.Select(ctx, "INBOX")
	require.NoError(t, err)

	manager.Invalidate()
	assert.Empty(t, manager.Selected())

	_, err = manager.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dialer.dials)
}

func TestSessionManagerClose(t *testing.T) {
	session := &fakeSession{}
	manager, _ := newTestManager(session)
	ctx := context.Background()

	require.NoError(t, manager.Close(ctx))

	_, err := manager.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, manager.Close(ctx))
	assert.True(t, session.closed)
	assert.Empty(t, manager.Selected())
}
