package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

func TestMailboxesCmd_SkipsNoselect(t *testing.T) {
	setServices(t, nil, &fakeMailboxService{
		mailboxes: []domain.MailboxInfo{
			{Name: "INBOX", Delimiter: "/"},
			{Name: "[Gmail]", Delimiter: "/", Attributes: []string{domain.AttrNoselect}},
		},
	}, nil)

	out, err := execute(t, "mailboxes")

	require.NoError(t, err)
	assert.Contains(t, out, "INBOX")
	assert.NotContains(t, out, "[Gmail]")
}

func TestMailboxesCmd_AllIncludesNoselect(t *testing.T) {
	setServices(t, nil, &fakeMailboxService{
		mailboxes: []domain.MailboxInfo{
			{Name: "[Gmail]", Delimiter: "/", Attributes: []string{domain.AttrNoselect}},
		},
	}, nil)

	out, err := execute(t, "mailboxes", "--all")

	require.NoError(t, err)
	assert.Contains(t, out, "[Gmail]")
	assert.Contains(t, out, domain.AttrNoselect)
}

func TestStatusCmd_PrintsCounters(t *testing.T) {
	setServices(t, nil, &fakeMailboxService{
		status: &domain.MailboxStatus{Name: "INBOX", Exists: 231, Unseen: 7},
	}, nil)

	out, err := execute(t, "status", "INBOX")

	require.NoError(t, err)
	assert.Contains(t, out, "messages:    231")
	assert.Contains(t, out, "unseen:      7")
}

func TestStatusCmd_FiltersRequestedItems(t *testing.T) {
	setServices(t, nil, &fakeMailboxService{
		status: &domain.MailboxStatus{Name: "INBOX", Exists: 231, Unseen: 7},
	}, nil)

	out, err := execute(t, "status", "INBOX", "UNSEEN")

	require.NoError(t, err)
	assert.Contains(t, out, "unseen")
	assert.NotContains(t, out, "messages")
}

func TestSearchCmd_PrintsMatches(t *testing.T) {
	setServices(t, nil, nil, &fakeMessageService{searchHit: []uint32{2, 84, 882}})

	out, err := execute(t, "search", "INBOX", "UNSEEN")

	require.NoError(t, err)
	assert.Contains(t, out, "3 matches: 2 84 882")
}

func TestSearchCmd_NoMatches(t *testing.T) {
	setServices(t, nil, nil, &fakeMessageService{})

	out, err := execute(t, "search", "INBOX", "FROM", "nobody@example.com")

	require.NoError(t, err)
	assert.Contains(t, out, "No matches.")
}

func TestHeadersCmd_ListsEnvelopes(t *testing.T) {
	setServices(t, nil, nil, &fakeMessageService{
		envelopes: []domain.Envelope{
			{SeqNum: 1, From: "Bob <bob@example.com>", Subject: "lunch?", Flags: []string{domain.FlagSeen}},
			{SeqNum: 2, From: "Carol <carol@example.com>", Subject: "report"},
		},
	})

	out, err := execute(t, "headers", "INBOX")

	require.NoError(t, err)
	assert.Contains(t, out, "lunch?")
	assert.Contains(t, out, "report")
	// Unseen messages carry the N marker.
	assert.Contains(t, out, "N    2")
}

func TestHeadersCmd_Cached(t *testing.T) {
	setServices(t, nil, nil, &fakeMessageService{
		cached: []domain.CachedHeader{
			{Envelope: domain.Envelope{SeqNum: 4, From: "bob@example.com", Subject: "cached subject"}},
		},
	})

	out, err := execute(t, "headers", "INBOX", "--cached")

	require.NoError(t, err)
	assert.Contains(t, out, "cached subject")
}

func TestReadCmd_PrintsMessage(t *testing.T) {
	setServices(t, nil, nil, &fakeMessageService{
		rendered: &domain.RenderedMessage{
			Envelope: domain.Envelope{SeqNum: 3, From: "bob@example.com", Subject: "hi"},
			Body:     "hello alice",
		},
	})

	out, err := execute(t, "read", "INBOX", "3")

	require.NoError(t, err)
	assert.Contains(t, out, "Subject: hi")
	assert.Contains(t, out, "hello alice")
}

func TestReadCmd_RejectsBadSeqNum(t *testing.T) {
	setServices(t, nil, nil, &fakeMessageService{})

	_, err := execute(t, "read", "INBOX", "zero")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteCmd_MarksOnly(t *testing.T) {
	service := &fakeMessageService{}
	setServices(t, nil, nil, service)

	out, err := execute(t, "delete", "INBOX", "3:5")

	require.NoError(t, err)
	assert.Contains(t, out, "Marked 3:5 deleted")
	assert.Equal(t, []string{"INBOX 3:5"}, service.deleteCalls)
	assert.False(t, service.deleteForced)
}

func TestDeleteCmd_WithExpunge(t *testing.T) {
	service := &fakeMessageService{expunged: []uint32{3, 4}}
	setServices(t, nil, nil, service)

	out, err := execute(t, "delete", "INBOX", "3:4", "--expunge")

	require.NoError(t, err)
	assert.Contains(t, out, "Expunged 2 message(s)")
	assert.True(t, service.deleteForced)
}

func TestExpungeCmd(t *testing.T) {
	setServices(t, nil, nil, &fakeMessageService{expunged: []uint32{9}})

	out, err := execute(t, "expunge", "INBOX")

	require.NoError(t, err)
	assert.Contains(t, out, "Expunged 1 message(s)")
}

func TestFlagCmd(t *testing.T) {
	service := &fakeMessageService{}
	setServices(t, nil, nil, service)

	out, err := execute(t, "flag", "INBOX", "1:3", "+FLAGS", `\Seen`)

	require.NoError(t, err)
	assert.Contains(t, out, "Updated flags")
	assert.Equal(t, []string{"INBOX 1:3 +FLAGS"}, service.flagCalls)
}

func TestFlagCmd_RejectsBadAction(t *testing.T) {
	setServices(t, nil, nil, &fakeMessageService{})

	_, err := execute(t, "flag", "INBOX", "1", "SETFLAGS", `\Seen`)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckCmd(t *testing.T) {
	service := &fakeMailboxService{}
	setServices(t, nil, service, nil)

	out, err := execute(t, "check", "INBOX")

	require.NoError(t, err)
	assert.Contains(t, out, "Checkpoint of INBOX requested")
	assert.True(t, service.checked)
}

func TestHelloCmd_PrintsQuote(t *testing.T) {
	out, err := execute(t, "hello")

	require.NoError(t, err)
	assert.Contains(t, out, "Emily Dickinson")
}
