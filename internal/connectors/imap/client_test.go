package imap

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
)

// exchange is one scripted command/response pair. The server checks
// the received command contains expect, then writes each reply line.
// Replies containing %TAG% get the command's tag substituted.
type exchange struct {
	expect  string
	replies []string
}

// scriptedServer answers a fixed sequence of exchanges over conn,
// then reads until the client hangs up.
func scriptedServer(t *testing.T, sc net.Conn, script []exchange) <-chan error {
	t.Helper()
	done := make(chan error, 1)

	go func() {
		defer close(done)
		defer sc.Close()

		w := bufio.NewWriter(sc)
		r := bufio.NewReader(sc)

		fmt.Fprint(w, "* OK epistle test server ready\r\n")
		if err := w.Flush(); err != nil {
			done <- err
			return
		}

		for _, ex := range script {
			cmd, err := r.ReadString('\n')
			if err != nil {
				done <- fmt.Errorf("reading command for %q: %w", ex.expect, err)
				return
			}
			cmd = strings.TrimRight(cmd, "\r\n")

			tag, _, _ := strings.Cut(cmd, " ")
			if !strings.Contains(cmd, ex.expect) {
				done <- fmt.Errorf("expected command containing %q, got %q", ex.expect, cmd)
				return
			}
			for _, reply := range ex.replies {
				fmt.Fprint(w, strings.ReplaceAll(reply, "%TAG%", tag)+"\r\n")
			}
			if err := w.Flush(); err != nil {
				done <- err
				return
			}
		}
	}()
	return done
}

// newTestClient wires a Client to a scripted server over an in-memory
// pipe. The greeting is consumed before it returns.
func newTestClient(t *testing.T, script []exchange) (*Client, <-chan error) {
	t.Helper()

	clientSide, serverSide := net.Pipe()
	done := scriptedServer(t, serverSide, script)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	client, err := NewClient(ctx, clientSide, NewPacerWithRate(1000, 1000))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, done
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClientLogin(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  `LOGIN "alice@example.com" "sw0rdfish"`,
			replies: []string{"%TAG% OK LOGIN completed"},
		},
	})

	require.NoError(t, client.Login(testContext(t), "alice@example.com", "sw0rdfish"))
	require.NoError(t, <-done)
}

func TestClientLoginRejected(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  "LOGIN",
			replies: []string{"%TAG% NO [AUTHENTICATIONFAILED] Invalid credentials"},
		},
	})

	err := client.Login(testContext(t), "alice@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrAuthInvalid)
	require.NoError(t, <-done)
}

func TestClientAuthenticateXOAuth2(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  "AUTHENTICATE XOAUTH2 ",
			replies: []string{"%TAG% OK Success"},
		},
	})

	require.NoError(t, client.AuthenticateXOAuth2(testContext(t), "alice@example.com", "ya29.token"))
	require.NoError(t, <-done)
}

func TestClientSelect(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect: `SELECT "INBOX"`,
			replies: []string{
				`* 172 EXISTS`,
				`* 1 RECENT`,
				`* FLAGS (\Answered \Flagged \Deleted \Seen \Draft)`,
				`* OK [UNSEEN 12] First unseen`,
				`* OK [UIDVALIDITY 3857529045] UIDs valid`,
				`* OK [UIDNEXT 4392] Predicted next UID`,
				`%TAG% OK [READ-WRITE] SELECT completed`,
			},
		},
	})

	status, err := client.Select(testContext(t), "INBOX")
	require.NoError(t, err)

	assert.Equal(t, "INBOX", status.Name)
	assert.Equal(t, uint32(172), status.Exists)
	assert.Equal(t, uint32(1), status.Recent)
	assert.Equal(t, uint32(12), status.Unseen)
	assert.Equal(t, uint32(3857529045), status.UIDValidity)
	assert.Equal(t, "INBOX", client.Selected())
	require.NoError(t, <-done)
}

func TestClientSelectRejectsLineBreakInName(t *testing.T) {
	// A mailbox name carrying CRLF must never reach the wire, where
	// it would run as a second command.
	client, done := newTestClient(t, nil)

	_, err := client.Select(testContext(t), "INBOX\r\na1 DELETE INBOX")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	client.Close()
	require.NoError(t, <-done)
}

func TestClientSelectFailureClearsSelection(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  `SELECT "INBOX"`,
			replies: []string{`* 1 EXISTS`, "%TAG% OK done"},
		},
		{
			expect:  `SELECT "Nope"`,
			replies: []string{"%TAG% NO no such mailbox"},
		},
	})

	ctx := testContext(t)
	_, err := client.Select(ctx, "INBOX")
	require.NoError(t, err)

	_, err = client.Select(ctx, "Nope")
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "NO", serverErr.Status)
	assert.Empty(t, client.Selected())
	require.NoError(t, <-done)
}

func TestClientList(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect: `LIST "" "*"`,
			replies: []string{
				`* LIST (\HasNoChildren) "/" "Sent"`,
				`* LIST (\HasChildren) "/" "INBOX"`,
				`* LIST (\Noselect \HasChildren) "/" "[Gmail]"`,
				"%TAG% OK LIST completed",
			},
		},
	})

	mailboxes, err := client.List(testContext(t), "", "")
	require.NoError(t, err)
	require.Len(t, mailboxes, 3)

	// Sorted by name.
	assert.Equal(t, "INBOX", mailboxes[0].Name)
	assert.Equal(t, "Sent", mailboxes[1].Name)
	assert.Equal(t, "[Gmail]", mailboxes[2].Name)
	assert.True(t, mailboxes[0].Selectable())
	assert.False(t, mailboxes[2].Selectable())
	require.NoError(t, <-done)
}

func TestClientStatus(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect: `STATUS "Spam" (MESSAGES UNSEEN)`,
			replies: []string{
				`* STATUS "Spam" (MESSAGES 231 UNSEEN 7)`,
				"%TAG% OK STATUS completed",
			},
		},
	})

	status, err := client.Status(testContext(t), "Spam", []domain.StatusItem{
		domain.StatusMessages, domain.StatusUnseen,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(231), status.Exists)
	assert.Equal(t, uint32(7), status.Unseen)
	require.NoError(t, <-done)
}

func TestClientStatusInvalidItem(t *testing.T) {
	client, _ := newTestClient(t, nil)

	_, err := client.Status(testContext(t), "INBOX", []domain.StatusItem{"BOGUS"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClientSearchRequiresSelection(t *testing.T) {
	client, _ := newTestClient(t, nil)

	_, err := client.Search(testContext(t), "", "ALL")
	require.ErrorIs(t, err, domain.ErrNoMailboxSelected)
}

func TestClientSearch(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  `SELECT "INBOX"`,
			replies: []string{`* 9 EXISTS`, "%TAG% OK done"},
		},
		{
			expect:  `SEARCH UNSEEN SINCE 1-Jan-2026`,
			replies: []string{`* SEARCH 2 84`, "%TAG% OK SEARCH completed"},
		},
	})

	ctx := testContext(t)
	_, err := client.Select(ctx, "INBOX")
	require.NoError(t, err)

	nums, err := client.Search(ctx, "", "UNSEEN", "SINCE 1-Jan-2026")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 84}, nums)
	require.NoError(t, <-done)
}

func TestClientFetch(t *testing.T) {
	header := "Subject: hi\r\n\r\n"
	client, done := newTestClient(t, []exchange{
		{
			expect:  `SELECT "INBOX"`,
			replies: []string{`* 9 EXISTS`, "%TAG% OK done"},
		},
		{
			expect: `FETCH 1:2 (FLAGS RFC822.HEADER)`,
			replies: []string{
				fmt.Sprintf("* 1 FETCH (FLAGS (\\Seen) RFC822.HEADER {%d}\r\n%s)", len(header), header),
				`* 2 FETCH (FLAGS ())`,
				"%TAG% OK FETCH completed",
			},
		},
	})

	ctx := testContext(t)
	_, err := client.Select(ctx, "INBOX")
	require.NoError(t, err)

	messages, err := client.Fetch(ctx, "1:2", driven.FetchFlags, driven.FetchHeader)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, uint32(1), messages[0].SeqNum)
	assert.Equal(t, []string{`\Seen`}, messages[0].Flags)
	assert.Equal(t, []byte(header), messages[0].Header)
	assert.Equal(t, uint32(2), messages[1].SeqNum)
	require.NoError(t, <-done)
}

func TestClientFetchBadSeqSet(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  `SELECT "INBOX"`,
			replies: []string{`* 9 EXISTS`, "%TAG% OK done"},
		},
	})

	ctx := testContext(t)
	_, err := client.Select(ctx, "INBOX")
	require.NoError(t, err)

	_, err = client.Fetch(ctx, "1;2", driven.FetchFlags)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.NoError(t, <-done)
}

func TestClientStoreAndExpunge(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  `SELECT "INBOX"`,
			replies: []string{`* 9 EXISTS`, "%TAG% OK done"},
		},
		{
			expect:  `STORE 3 +FLAGS (\Deleted)`,
			replies: []string{`* 3 FETCH (FLAGS (\Deleted))`, "%TAG% OK STORE completed"},
		},
		{
			expect:  "EXPUNGE",
			replies: []string{`* 3 EXPUNGE`, "%TAG% OK EXPUNGE completed"},
		},
	})

	ctx := testContext(t)
	_, err := client.Select(ctx, "INBOX")
	require.NoError(t, err)

	require.NoError(t, client.Store(ctx, "3", domain.StoreAdd, domain.FlagDeleted))

	expunged, err := client.Expunge(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint32{3}, expunged)
	require.NoError(t, <-done)
}

func TestClientCheckAndNoop(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  `SELECT "INBOX"`,
			replies: []string{`* 9 EXISTS`, "%TAG% OK done"},
		},
		{
			expect:  "CHECK",
			replies: []string{"%TAG% OK CHECK completed"},
		},
		{
			expect:  "NOOP",
			replies: []string{"%TAG% OK NOOP completed"},
		},
	})

	ctx := testContext(t)
	_, err := client.Select(ctx, "INBOX")
	require.NoError(t, err)
	require.NoError(t, client.Check(ctx))
	require.NoError(t, client.Noop(ctx))
	require.NoError(t, <-done)
}

func TestClientLogout(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  "LOGOUT",
			replies: []string{"* BYE epistle test server signing off", "%TAG% OK LOGOUT completed"},
		},
	})

	ctx := testContext(t)
	require.NoError(t, client.Logout(ctx))
	require.NoError(t, <-done)

	err := client.Noop(ctx)
	require.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestClientBadCompletion(t *testing.T) {
	client, done := newTestClient(t, []exchange{
		{
			expect:  "NOOP",
			replies: []string{"%TAG% BAD unknown command"},
		},
	})

	err := client.Noop(testContext(t))
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "BAD", serverErr.Status)
	require.NoError(t, <-done)
}
