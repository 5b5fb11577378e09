package imap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/epistle-sh/epistle/internal/logger"
)

// ioTimeout bounds a single command exchange when the caller's context
// carries no deadline of its own.
const ioTimeout = 60 * time.Second

// line is one logical response line. Literal octets announced with
// {N} syntax are read off the wire and kept alongside the text, which
// retains the {N} markers in order.
type line struct {
	text     string
	literals [][]byte
}

// isUntagged reports whether the line is an untagged (*) response.
func (l *line) isUntagged() bool {
	return strings.HasPrefix(l.text, "* ")
}

// isContinuation reports whether the line is a command continuation request.
func (l *line) isContinuation() bool {
	return strings.HasPrefix(l.text, "+")
}

// conn wraps the network connection with buffered IO and tag state.
type conn struct {
	nc      net.Conn
	r       *bufio.Reader
	w       *bufio.Writer
	tagSeq  int
	timeout time.Duration
}

func newConn(nc net.Conn) *conn {
	return &conn{
		nc:      nc,
		r:       bufio.NewReader(nc),
		w:       bufio.NewWriter(nc),
		timeout: ioTimeout,
	}
}

// nextTag returns the next command tag (a0001, a0002, ...).
func (c *conn) nextTag() string {
	c.tagSeq++
	return fmt.Sprintf("a%04d", c.tagSeq)
}

// applyDeadline maps the context deadline onto the socket.
func (c *conn) applyDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	return c.nc.SetDeadline(deadline)
}

// writeLine sends one raw protocol line.
func (c *conn) writeLine(s string) error {
	logger.Debug("C: %s", s)
	if _, err := c.w.WriteString(s); err != nil {
		return fmt.Errorf("writing command: %w", err)
	}
	if _, err := c.w.WriteString("\r\n"); err != nil {
		return fmt.Errorf("writing command: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("flushing command: %w", err)
	}
	return nil
}

// readLine reads one logical response line, pulling in any literals.
func (c *conn) readLine() (*line, error) {
	l := &line{}
	var text strings.Builder

	for {
		raw, err := c.r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		raw = strings.TrimRight(raw, "\r\n")
		text.WriteString(raw)

		size, ok := trailingLiteralSize(raw)
		if !ok {
			break
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(c.r, buf); err != nil {
			return nil, fmt.Errorf("reading literal (%d octets): %w", size, err)
		}
		l.literals = append(l.literals, buf)
	}

	l.text = text.String()
	logger.Debug("S: %s", l.text)
	return l, nil
}

// trailingLiteralSize reports the size of a literal announced at the
// end of a response line, e.g. `... RFC822.HEADER {342}`.
func trailingLiteralSize(s string) (int, bool) {
	if !strings.HasSuffix(s, "}") {
		return 0, false
	}
	open := strings.LastIndex(s, "{")
	if open < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (c *conn) close() error {
	return c.nc.Close()
}
