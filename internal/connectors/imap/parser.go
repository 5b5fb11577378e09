package imap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
)

// scanner walks one logical response line. Literal markers ({N}) in
// the text consume the corresponding stored literal.
type scanner struct {
	s    string
	pos  int
	lits [][]byte
	liti int
}

func newScanner(l *line) *scanner {
	return &scanner{s: l.text, lits: l.literals}
}

func (sc *scanner) skipSpace() {
	for sc.pos < len(sc.s) && sc.s[sc.pos] == ' ' {
		sc.pos++
	}
}

func (sc *scanner) eof() bool {
	sc.skipSpace()
	return sc.pos >= len(sc.s)
}

func (sc *scanner) peek() byte {
	sc.skipSpace()
	if sc.pos >= len(sc.s) {
		return 0
	}
	return sc.s[sc.pos]
}

// readAtom reads up to the next space or closing parenthesis.
func (sc *scanner) readAtom() string {
	sc.skipSpace()
	start := sc.pos
	for sc.pos < len(sc.s) {
		ch := sc.s[sc.pos]
		if ch == ' ' || ch == ')' || ch == '(' {
			break
		}
		sc.pos++
	}
	return sc.s[start:sc.pos]
}

// readQuoted reads a double-quoted string, honouring backslash escapes.
func (sc *scanner) readQuoted() (string, error) {
	sc.skipSpace()
	if sc.pos >= len(sc.s) || sc.s[sc.pos] != '"' {
		return "", fmt.Errorf("%w: expected quoted string at %q", domain.ErrBadResponse, sc.rest())
	}
	sc.pos++
	var out strings.Builder
	for sc.pos < len(sc.s) {
		ch := sc.s[sc.pos]
		switch ch {
		case '\\':
			if sc.pos+1 >= len(sc.s) {
				return "", fmt.Errorf("%w: dangling escape", domain.ErrBadResponse)
			}
			out.WriteByte(sc.s[sc.pos+1])
			sc.pos += 2
		case '"':
			sc.pos++
			return out.String(), nil
		default:
			out.WriteByte(ch)
			sc.pos++
		}
	}
	return "", fmt.Errorf("%w: unterminated quoted string", domain.ErrBadResponse)
}

// readLiteralMarker consumes a {N} marker and returns the matching
// literal octets read off the wire.
func (sc *scanner) readLiteralMarker() ([]byte, error) {
	sc.skipSpace()
	end := strings.IndexByte(sc.s[sc.pos:], '}')
	if sc.pos >= len(sc.s) || sc.s[sc.pos] != '{' || end < 0 {
		return nil, fmt.Errorf("%w: expected literal at %q", domain.ErrBadResponse, sc.rest())
	}
	sc.pos += end + 1
	if sc.liti >= len(sc.lits) {
		return nil, fmt.Errorf("%w: literal marker without data", domain.ErrBadResponse)
	}
	lit := sc.lits[sc.liti]
	sc.liti++
	return lit, nil
}

// readString reads a quoted string, a literal or an atom. NIL yields
// the empty string.
func (sc *scanner) readString() (string, error) {
	switch sc.peek() {
	case '"':
		return sc.readQuoted()
	case '{':
		lit, err := sc.readLiteralMarker()
		if err != nil {
			return "", err
		}
		return string(lit), nil
	default:
		atom := sc.readAtom()
		if strings.EqualFold(atom, "NIL") {
			return "", nil
		}
		return atom, nil
	}
}

// readParenList reads a flat parenthesised list of atoms.
func (sc *scanner) readParenList() ([]string, error) {
	sc.skipSpace()
	if sc.pos >= len(sc.s) || sc.s[sc.pos] != '(' {
		return nil, fmt.Errorf("%w: expected list at %q", domain.ErrBadResponse, sc.rest())
	}
	sc.pos++
	var items []string
	for {
		sc.skipSpace()
		if sc.pos >= len(sc.s) {
			return nil, fmt.Errorf("%w: unterminated list", domain.ErrBadResponse)
		}
		if sc.s[sc.pos] == ')' {
			sc.pos++
			return items, nil
		}
		atom := sc.readAtom()
		if atom == "" {
			return nil, fmt.Errorf("%w: empty list item at %q", domain.ErrBadResponse, sc.rest())
		}
		items = append(items, atom)
	}
}

func (sc *scanner) expectAtom(want string) error {
	got := sc.readAtom()
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: expected %s, got %q", domain.ErrBadResponse, want, got)
	}
	return nil
}

func (sc *scanner) readNumber() (uint32, error) {
	atom := sc.readAtom()
	n, err := strconv.ParseUint(atom, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: expected number, got %q", domain.ErrBadResponse, atom)
	}
	return uint32(n), nil
}

func (sc *scanner) rest() string {
	if sc.pos >= len(sc.s) {
		return ""
	}
	return sc.s[sc.pos:]
}

// parseList parses one untagged LIST reply:
//
//	* LIST (\HasNoChildren \Marked) "/" "INBOX/Receipts"
//
// The delimiter may be NIL and the name may be quoted, an atom or a
// literal.
func parseList(l *line) (domain.MailboxInfo, error) {
	sc := newScanner(l)
	if err := sc.expectAtom("*"); err != nil {
		return domain.MailboxInfo{}, err
	}
	if err := sc.expectAtom("LIST"); err != nil {
		return domain.MailboxInfo{}, err
	}

	attrs, err := sc.readParenList()
	if err != nil {
		return domain.MailboxInfo{}, fmt.Errorf("list attributes: %w", err)
	}

	delim, err := sc.readString()
	if err != nil {
		return domain.MailboxInfo{}, fmt.Errorf("list delimiter: %w", err)
	}

	name, err := sc.readString()
	if err != nil {
		return domain.MailboxInfo{}, fmt.Errorf("list name: %w", err)
	}
	if name == "" {
		return domain.MailboxInfo{}, fmt.Errorf("%w: LIST reply without mailbox name", domain.ErrBadResponse)
	}

	return domain.MailboxInfo{
		Attributes: attrs,
		Delimiter:  delim,
		Name:       name,
	}, nil
}

// parseStatus parses one untagged STATUS reply:
//
//	* STATUS "Spam" (MESSAGES 231 UIDNEXT 44292)
func parseStatus(l *line) (*domain.MailboxStatus, error) {
	sc := newScanner(l)
	if err := sc.expectAtom("*"); err != nil {
		return nil, err
	}
	if err := sc.expectAtom("STATUS"); err != nil {
		return nil, err
	}

	name, err := sc.readString()
	if err != nil {
		return nil, fmt.Errorf("status mailbox: %w", err)
	}

	items, err := sc.readParenList()
	if err != nil {
		return nil, fmt.Errorf("status items: %w", err)
	}
	if len(items)%2 != 0 {
		return nil, fmt.Errorf("%w: odd STATUS item list", domain.ErrBadResponse)
	}

	status := &domain.MailboxStatus{Name: name}
	for i := 0; i < len(items); i += 2 {
		value, err := strconv.ParseUint(items[i+1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: STATUS %s value %q", domain.ErrBadResponse, items[i], items[i+1])
		}
		switch domain.StatusItem(strings.ToUpper(items[i])) {
		case domain.StatusMessages:
			status.Exists = uint32(value)
		case domain.StatusUIDNext:
			status.UIDNext = uint32(value)
		case domain.StatusUIDValidity:
			status.UIDValidity = uint32(value)
		case domain.StatusUnseen:
			status.Unseen = uint32(value)
		case domain.StatusDeleted:
			status.Deleted = uint32(value)
		case domain.StatusSize:
			status.Size = value
		}
	}
	return status, nil
}

// applySelectData folds one untagged SELECT reply into the status.
// Unknown untagged data is ignored, as the protocol requires.
func applySelectData(l *line, status *domain.MailboxStatus) error {
	sc := newScanner(l)
	if err := sc.expectAtom("*"); err != nil {
		return err
	}

	first := sc.readAtom()

	// `* 23 EXISTS` / `* 1 RECENT`
	if n, err := strconv.ParseUint(first, 10, 32); err == nil {
		switch strings.ToUpper(sc.readAtom()) {
		case "EXISTS":
			status.Exists = uint32(n)
		case "RECENT":
			status.Recent = uint32(n)
		}
		return nil
	}

	switch strings.ToUpper(first) {
	case "FLAGS":
		flags, err := sc.readParenList()
		if err != nil {
			return fmt.Errorf("select flags: %w", err)
		}
		status.Flags = flags
	case "OK":
		// `* OK [UIDVALIDITY 3857529045] UIDs valid`
		rest := strings.TrimSpace(sc.rest())
		if !strings.HasPrefix(rest, "[") {
			return nil
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil
		}
		code := rest[1:end]
		applyResponseCode(code, status)
	}
	return nil
}

// applyResponseCode folds an OK response code (UIDVALIDITY, UNSEEN,
// UIDNEXT, PERMANENTFLAGS) into the status.
func applyResponseCode(code string, status *domain.MailboxStatus) {
	name, arg, _ := strings.Cut(code, " ")
	switch strings.ToUpper(name) {
	case "UIDVALIDITY":
		if n, err := strconv.ParseUint(arg, 10, 32); err == nil {
			status.UIDValidity = uint32(n)
		}
	case "UIDNEXT":
		if n, err := strconv.ParseUint(arg, 10, 32); err == nil {
			status.UIDNext = uint32(n)
		}
	case "UNSEEN":
		if n, err := strconv.ParseUint(arg, 10, 32); err == nil {
			status.Unseen = uint32(n)
		}
	case "PERMANENTFLAGS":
		arg = strings.TrimPrefix(arg, "(")
		arg = strings.TrimSuffix(arg, ")")
		if arg != "" {
			status.PermanentFlags = strings.Fields(arg)
		}
	}
}

// parseSearch parses one untagged SEARCH reply:
//
//	* SEARCH 2 84 882
func parseSearch(l *line) ([]uint32, error) {
	sc := newScanner(l)
	if err := sc.expectAtom("*"); err != nil {
		return nil, err
	}
	if err := sc.expectAtom("SEARCH"); err != nil {
		return nil, err
	}

	var nums []uint32
	for !sc.eof() {
		n, err := sc.readNumber()
		if err != nil {
			return nil, fmt.Errorf("search result: %w", err)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

// parseFetch parses one untagged FETCH reply:
//
//	* 12 FETCH (FLAGS (\Seen) RFC822.HEADER {342} ...)
func parseFetch(l *line) (driven.FetchedMessage, error) {
	var msg driven.FetchedMessage

	sc := newScanner(l)
	if err := sc.expectAtom("*"); err != nil {
		return msg, err
	}
	seq, err := sc.readNumber()
	if err != nil {
		return msg, fmt.Errorf("fetch sequence number: %w", err)
	}
	msg.SeqNum = seq
	if err := sc.expectAtom("FETCH"); err != nil {
		return msg, err
	}

	sc.skipSpace()
	if sc.peek() != '(' {
		return msg, fmt.Errorf("%w: FETCH reply without item list", domain.ErrBadResponse)
	}
	sc.pos++

	for {
		sc.skipSpace()
		if sc.pos >= len(sc.s) {
			return msg, fmt.Errorf("%w: unterminated FETCH item list", domain.ErrBadResponse)
		}
		if sc.s[sc.pos] == ')' {
			return msg, nil
		}

		item := strings.ToUpper(sc.readAtom())
		switch item {
		case "FLAGS":
			flags, err := sc.readParenList()
			if err != nil {
				return msg, fmt.Errorf("fetch flags: %w", err)
			}
			msg.Flags = flags
		case "RFC822.HEADER", "BODY[HEADER]":
			data, err := sc.readStringBytes()
			if err != nil {
				return msg, fmt.Errorf("fetch header: %w", err)
			}
			msg.Header = data
		case "RFC822", "BODY[]":
			data, err := sc.readStringBytes()
			if err != nil {
				return msg, fmt.Errorf("fetch body: %w", err)
			}
			msg.Body = data
		case "UID", "RFC822.SIZE":
			// Value is a number; servers may volunteer these.
			if _, err := sc.readNumber(); err != nil {
				return msg, fmt.Errorf("fetch %s: %w", item, err)
			}
		default:
			// Unknown item: swallow one value so parsing can continue.
			// Volunteered items like MODSEQ or BODYSTRUCTURE carry
			// parenthesised values.
			if sc.peek() == '(' {
				if err := sc.skipParens(); err != nil {
					return msg, fmt.Errorf("fetch %s: %w", item, err)
				}
				continue
			}
			start := sc.pos
			if _, err := sc.readStringBytes(); err != nil {
				return msg, fmt.Errorf("fetch %s: %w", item, err)
			}
			if sc.pos == start {
				return msg, fmt.Errorf("%w: FETCH item %q without value at %q", domain.ErrBadResponse, item, sc.rest())
			}
		}
	}
}

// skipParens consumes a balanced parenthesised value, honouring
// quoted strings and literal markers nested inside it.
func (sc *scanner) skipParens() error {
	sc.skipSpace()
	if sc.pos >= len(sc.s) || sc.s[sc.pos] != '(' {
		return fmt.Errorf("%w: expected list at %q", domain.ErrBadResponse, sc.rest())
	}
	depth := 0
	for sc.pos < len(sc.s) {
		switch sc.s[sc.pos] {
		case '(':
			depth++
			sc.pos++
		case ')':
			depth--
			sc.pos++
			if depth == 0 {
				return nil
			}
		case '"':
			if _, err := sc.readQuoted(); err != nil {
				return err
			}
		case '{':
			if _, err := sc.readLiteralMarker(); err != nil {
				return err
			}
		default:
			sc.pos++
		}
	}
	return fmt.Errorf("%w: unterminated list", domain.ErrBadResponse)
}

// readStringBytes reads a string value preserving raw octets for
// literal forms.
func (sc *scanner) readStringBytes() ([]byte, error) {
	if sc.peek() == '{' {
		return sc.readLiteralMarker()
	}
	s, err := sc.readString()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// parseExpunge parses one untagged EXPUNGE reply (`* 3 EXPUNGE`),
// returning the expunged sequence number.
func parseExpunge(l *line) (uint32, bool) {
	sc := newScanner(l)
	if sc.readAtom() != "*" {
		return 0, false
	}
	n, err := sc.readNumber()
	if err != nil {
		return 0, false
	}
	if !strings.EqualFold(sc.readAtom(), "EXPUNGE") {
		return 0, false
	}
	return n, true
}

// quoteString renders s as an IMAP quoted string. Quoted strings may
// not contain CR, LF or NUL; such input is rejected rather than let a
// stray newline start a second protocol line.
func quoteString(s string) (string, error) {
	var out strings.Builder
	out.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r', '\n', 0:
			return "", fmt.Errorf("%w: control character in %q", domain.ErrInvalidInput, s)
		case '"', '\\':
			out.WriteByte('\\')
		}
		out.WriteByte(s[i])
	}
	out.WriteByte('"')
	return out.String(), nil
}
