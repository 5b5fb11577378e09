package imap

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
	"github.com/epistle-sh/epistle/internal/logger"
)

// Ensure Client implements the session port.
var _ driven.MailSession = (*Client)(nil)

// dialTimeout bounds the TCP+TLS handshake.
const dialTimeout = 30 * time.Second

// ServerError is a tagged NO or BAD completion result. The text is
// the server's human-readable explanation.
type ServerError struct {
	// Status is "NO" (operational failure) or "BAD" (protocol error).
	Status string

	// Text is the response text after the status.
	Text string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server replied %s: %s", e.Status, e.Text)
}

// result is one completed command exchange.
type result struct {
	status   string // OK, NO or BAD
	text     string
	untagged []*line
}

func (r *result) err() error {
	if r.status == "OK" {
		return nil
	}
	return &ServerError{Status: r.status, Text: r.text}
}

// Client is an authenticated IMAP session over TLS. Not safe for
// concurrent use; callers serialise commands.
type Client struct {
	conn     *conn
	pacer    *Pacer
	selected string
	closed   bool
}

// Dialer establishes authenticated sessions and implements the
// driven.SessionDialer port.
type Dialer struct {
	// TokenFor supplies the token provider for an account using
	// AuthXOAuth2. Nil disables XOAUTH2.
	TokenFor func(account domain.Account) (driven.TokenProvider, error)

	// Pacer throttles commands on sessions it creates. Nil means the
	// default pacing.
	Pacer *Pacer
}

// Ensure Dialer implements the dialer port.
var _ driven.SessionDialer = (*Dialer)(nil)

// Dial connects to the account's IMAPS endpoint, consumes the
// greeting and authenticates.
func (d *Dialer) Dial(ctx context.Context, account domain.Account) (driven.MailSession, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}

	logger.Info("connecting to %s", account.Address())
	tlsConfig := &tls.Config{
		ServerName:         account.Host,
		InsecureSkipVerify: account.InsecureSkipVerify, //nolint:gosec // Opt-in via account config.
	}
	if account.InsecureSkipVerify {
		logger.Warn("TLS certificate verification disabled for %s", account.Host)
	}

	netDialer := &net.Dialer{Timeout: dialTimeout}
	nc, err := tls.DialWithDialer(netDialer, "tcp", account.Address(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", account.Address(), err)
	}

	pacer := d.Pacer
	if pacer == nil {
		pacer = NewPacer()
	}

	client, err := NewClient(ctx, nc, pacer)
	if err != nil {
		nc.Close()
		return nil, err
	}

	if err := d.authenticate(ctx, client, account); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// NewClient wraps an established connection, consuming the server
// greeting. The caller owns authentication.
func NewClient(ctx context.Context, nc net.Conn, pacer *Pacer) (*Client, error) {
	c := &Client{conn: newConn(nc), pacer: pacer}

	if err := c.conn.applyDeadline(ctx); err != nil {
		return nil, err
	}
	greeting, err := c.conn.readLine()
	if err != nil {
		return nil, fmt.Errorf("reading greeting: %w", err)
	}
	switch {
	case strings.HasPrefix(greeting.text, "* OK"),
		strings.HasPrefix(greeting.text, "* PREAUTH"):
		logger.Info("greeting: %s", greeting.text)
	default:
		return nil, fmt.Errorf("%w: unexpected greeting %q", domain.ErrBadResponse, greeting.text)
	}
	return c, nil
}

// authenticate logs in with the account's configured mechanism.
func (d *Dialer) authenticate(ctx context.Context, client *Client, account domain.Account) error {
	auth := account.Auth
	if auth == "" {
		auth = domain.AuthPassword
	}

	switch auth {
	case domain.AuthPassword:
		return client.Login(ctx, account.User, account.Password)
	case domain.AuthXOAuth2:
		if d.TokenFor == nil {
			return fmt.Errorf("%w: no token provider for xoauth2", domain.ErrAuthRequired)
		}
		tokens, err := d.TokenFor(account)
		if err != nil {
			return err
		}
		if tokens == nil {
			return fmt.Errorf("%w: no token provider for xoauth2", domain.ErrAuthRequired)
		}
		token, err := tokens.AccessToken(ctx)
		if err != nil {
			return fmt.Errorf("fetching access token: %w", err)
		}
		return client.AuthenticateXOAuth2(ctx, account.User, token)
	default:
		return fmt.Errorf("%w: auth method %q", domain.ErrInvalidInput, account.Auth)
	}
}

// execute sends one command and collects responses until the tagged
// completion arrives.
func (c *Client) execute(ctx context.Context, command string) (*result, error) {
	if c.closed {
		return nil, domain.ErrSessionClosed
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	if err := c.conn.applyDeadline(ctx); err != nil {
		return nil, err
	}

	tag := c.conn.nextTag()
	if err := c.conn.writeLine(tag + " " + command); err != nil {
		return nil, err
	}

	res := &result{}
	for {
		l, err := c.conn.readLine()
		if err != nil {
			return nil, err
		}
		switch {
		case l.isUntagged():
			res.untagged = append(res.untagged, l)
		case strings.HasPrefix(l.text, tag+" "):
			rest := strings.TrimPrefix(l.text, tag+" ")
			status, text, _ := strings.Cut(rest, " ")
			res.status = strings.ToUpper(status)
			res.text = text
			if res.status != "OK" && res.status != "NO" && res.status != "BAD" {
				return nil, fmt.Errorf("%w: completion %q", domain.ErrBadResponse, l.text)
			}
			return res, nil
		case l.isContinuation():
			// No command in this client streams literals; cancel the
			// continuation so the exchange can complete.
			if err := c.conn.writeLine(""); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unexpected line %q", domain.ErrBadResponse, l.text)
		}
	}
}

// Login authenticates with the LOGIN command.
func (c *Client) Login(ctx context.Context, user, password string) error {
	quotedUser, err := quoteString(user)
	if err != nil {
		return err
	}
	quotedPass, err := quoteString(password)
	if err != nil {
		return err
	}
	res, err := c.execute(ctx, fmt.Sprintf("LOGIN %s %s", quotedUser, quotedPass))
	if err != nil {
		return err
	}
	if res.status == "NO" {
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, res.text)
	}
	if err := res.err(); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	logger.Info("logged in as %s", user)
	return nil
}

// AuthenticateXOAuth2 authenticates with SASL XOAUTH2 using an OAuth2
// bearer token (RFC 4959 initial response form).
func (c *Client) AuthenticateXOAuth2(ctx context.Context, user, token string) error {
	initial := base64.StdEncoding.EncodeToString(
		[]byte("user=" + user + "\x01auth=Bearer " + token + "\x01\x01"),
	)
	res, err := c.execute(ctx, "AUTHENTICATE XOAUTH2 "+initial)
	if err != nil {
		return err
	}
	if res.status == "NO" {
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, res.text)
	}
	if err := res.err(); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	logger.Info("authenticated as %s via xoauth2", user)
	return nil
}

// Select opens a mailbox read-write and returns its state.
func (c *Client) Select(ctx context.Context, mailbox string) (*domain.MailboxStatus, error) {
	if mailbox == "" {
		return nil, fmt.Errorf("%w: empty mailbox name", domain.ErrInvalidInput)
	}
	quoted, err := quoteString(mailbox)
	if err != nil {
		return nil, err
	}
	res, err := c.execute(ctx, "SELECT "+quoted)
	if err != nil {
		return nil, err
	}
	if err := res.err(); err != nil {
		c.selected = ""
		return nil, fmt.Errorf("select %s: %w", mailbox, err)
	}

	status := &domain.MailboxStatus{Name: mailbox}
	for _, l := range res.untagged {
		if err := applySelectData(l, status); err != nil {
			return nil, err
		}
	}
	c.selected = mailbox
	return status, nil
}

// List returns the mailboxes under reference matching pattern, sorted
// by name.
func (c *Client) List(ctx context.Context, reference, pattern string) ([]domain.MailboxInfo, error) {
	if pattern == "" {
		pattern = "*"
	}
	quotedRef, err := quoteString(reference)
	if err != nil {
		return nil, err
	}
	quotedPattern, err := quoteString(pattern)
	if err != nil {
		return nil, err
	}
	res, err := c.execute(ctx, fmt.Sprintf("LIST %s %s", quotedRef, quotedPattern))
	if err != nil {
		return nil, err
	}
	if err := res.err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	var mailboxes []domain.MailboxInfo
	for _, l := range res.untagged {
		if !strings.HasPrefix(strings.ToUpper(l.text), "* LIST ") {
			continue
		}
		info, err := parseList(l)
		if err != nil {
			return nil, err
		}
		mailboxes = append(mailboxes, info)
	}
	sort.Slice(mailboxes, func(i, j int) bool {
		return mailboxes[i].Name < mailboxes[j].Name
	})
	return mailboxes, nil
}

// Status queries a mailbox without selecting it.
func (c *Client) Status(
	ctx context.Context,
	mailbox string,
	items []domain.StatusItem,
) (*domain.MailboxStatus, error) {
	if mailbox == "" {
		return nil, fmt.Errorf("%w: empty mailbox name", domain.ErrInvalidInput)
	}
	if len(items) == 0 {
		items = domain.AllStatusItems()
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if !item.IsValid() {
			return nil, fmt.Errorf("%w: status item %q", domain.ErrInvalidInput, item)
		}
		names = append(names, strings.ToUpper(string(item)))
	}

	quoted, err := quoteString(mailbox)
	if err != nil {
		return nil, err
	}
	res, err := c.execute(ctx, fmt.Sprintf("STATUS %s (%s)", quoted, strings.Join(names, " ")))
	if err != nil {
		return nil, err
	}
	if err := res.err(); err != nil {
		return nil, fmt.Errorf("status %s: %w", mailbox, err)
	}

	for _, l := range res.untagged {
		if strings.HasPrefix(strings.ToUpper(l.text), "* STATUS ") {
			return parseStatus(l)
		}
	}
	return nil, fmt.Errorf("%w: STATUS completed without a STATUS reply", domain.ErrBadResponse)
}

// Search returns the sequence numbers matching the criteria in the
// selected mailbox.
func (c *Client) Search(ctx context.Context, charset string, criteria ...string) ([]uint32, error) {
	if c.selected == "" {
		return nil, domain.ErrNoMailboxSelected
	}
	if len(criteria) == 0 {
		criteria = []string{"ALL"}
	}

	cmd := "SEARCH"
	if charset != "" {
		cmd += " CHARSET " + charset
	}
	cmd += " " + strings.Join(criteria, " ")

	res, err := c.execute(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if err := res.err(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var nums []uint32
	for _, l := range res.untagged {
		if !strings.HasPrefix(strings.ToUpper(l.text), "* SEARCH") {
			continue
		}
		found, err := parseSearch(l)
		if err != nil {
			return nil, err
		}
		nums = append(nums, found...)
	}
	return nums, nil
}

// Fetch retrieves the given data items for a sequence set in the
// selected mailbox.
func (c *Client) Fetch(
	ctx context.Context,
	seqSet string,
	items ...driven.FetchItem,
) ([]driven.FetchedMessage, error) {
	if c.selected == "" {
		return nil, domain.ErrNoMailboxSelected
	}
	if err := domain.ValidateSeqSet(seqSet); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		items = []driven.FetchItem{driven.FetchFlags}
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = string(item)
	}

	res, err := c.execute(ctx, fmt.Sprintf("FETCH %s (%s)", seqSet, strings.Join(names, " ")))
	if err != nil {
		return nil, err
	}
	if err := res.err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", seqSet, err)
	}

	var messages []driven.FetchedMessage
	for _, l := range res.untagged {
		if !strings.Contains(strings.ToUpper(l.text), " FETCH ") {
			continue
		}
		msg, err := parseFetch(l)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Store changes message flags for a sequence set in the selected mailbox.
func (c *Client) Store(
	ctx context.Context,
	seqSet string,
	action domain.StoreAction,
	flags ...string,
) error {
	if c.selected == "" {
		return domain.ErrNoMailboxSelected
	}
	if err := domain.ValidateSeqSet(seqSet); err != nil {
		return err
	}
	if !action.IsValid() {
		return fmt.Errorf("%w: store action %q", domain.ErrInvalidInput, action)
	}
	if len(flags) == 0 {
		return fmt.Errorf("%w: no flags given", domain.ErrInvalidInput)
	}

	res, err := c.execute(ctx, fmt.Sprintf("STORE %s %s (%s)", seqSet, action, strings.Join(flags, " ")))
	if err != nil {
		return err
	}
	if err := res.err(); err != nil {
		return fmt.Errorf("store %s: %w", seqSet, err)
	}
	return nil
}

// Expunge permanently removes \Deleted messages from the selected
// mailbox and returns the expunged sequence numbers.
func (c *Client) Expunge(ctx context.Context) ([]uint32, error) {
	if c.selected == "" {
		return nil, domain.ErrNoMailboxSelected
	}
	res, err := c.execute(ctx, "EXPUNGE")
	if err != nil {
		return nil, err
	}
	if err := res.err(); err != nil {
		return nil, fmt.Errorf("expunge: %w", err)
	}

	var expunged []uint32
	for _, l := range res.untagged {
		if n, ok := parseExpunge(l); ok {
			expunged = append(expunged, n)
		}
	}
	return expunged, nil
}

// Check requests a server checkpoint of the selected mailbox.
func (c *Client) Check(ctx context.Context) error {
	if c.selected == "" {
		return domain.ErrNoMailboxSelected
	}
	res, err := c.execute(ctx, "CHECK")
	if err != nil {
		return err
	}
	if err := res.err(); err != nil {
		return fmt.Errorf("check: %w", err)
	}
	return nil
}

// Noop pings the server.
func (c *Client) Noop(ctx context.Context) error {
	res, err := c.execute(ctx, "NOOP")
	if err != nil {
		return err
	}
	if err := res.err(); err != nil {
		return fmt.Errorf("noop: %w", err)
	}
	return nil
}

// Logout ends the session politely and closes the connection.
func (c *Client) Logout(ctx context.Context) error {
	if c.closed {
		return nil
	}
	res, err := c.execute(ctx, "LOGOUT")
	if err != nil {
		c.Close()
		return err
	}
	c.Close()
	if err := res.err(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Close tears down the connection without a LOGOUT exchange.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.selected = ""
	return c.conn.close()
}

// Selected returns the currently selected mailbox, or "".
func (c *Client) Selected() string {
	return c.selected
}
