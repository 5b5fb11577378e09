package domain

import (
	"fmt"
	"strings"
	"time"
)

// System flags defined by RFC 9051 §2.3.2.
const (
	FlagSeen     = `\Seen`
	FlagAnswered = `\Answered`
	FlagFlagged  = `\Flagged`
	FlagDeleted  = `\Deleted`
	FlagDraft    = `\Draft`
	FlagRecent   = `\Recent`
)

// StoreAction is the message data item name for a STORE command.
type StoreAction string

const (
	// StoreAdd adds the listed flags (+FLAGS).
	StoreAdd StoreAction = "+FLAGS"

	// StoreRemove removes the listed flags (-FLAGS).
	StoreRemove StoreAction = "-FLAGS"

	// StoreReplace replaces the flags (FLAGS).
	StoreReplace StoreAction = "FLAGS"
)

// IsValid reports whether the action is a defined STORE data item name.
func (a StoreAction) IsValid() bool {
	switch a {
	case StoreAdd, StoreRemove, StoreReplace:
		return true
	}
	return false
}

// ValidateSeqSet checks that s is a plausible RFC 9051 §4.1.1 sequence
// set: comma-separated sequence numbers or colon ranges, where each
// element is a non-zero number or "*".
func ValidateSeqSet(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty sequence set", ErrInvalidInput)
	}
	for _, part := range strings.Split(s, ",") {
		bounds := strings.Split(part, ":")
		if len(bounds) > 2 {
			return fmt.Errorf("%w: malformed sequence set %q", ErrInvalidInput, s)
		}
		for _, b := range bounds {
			if b == "*" {
				continue
			}
			if b == "" {
				return fmt.Errorf("%w: malformed sequence set %q", ErrInvalidInput, s)
			}
			for _, r := range b {
				if r < '0' || r > '9' {
					return fmt.Errorf("%w: malformed sequence set %q", ErrInvalidInput, s)
				}
			}
			if strings.TrimLeft(b, "0") == "" {
				return fmt.Errorf("%w: sequence numbers start at 1", ErrInvalidInput)
			}
		}
	}
	return nil
}

// Envelope is the header summary of one message.
type Envelope struct {
	// SeqNum is the message sequence number within the selected mailbox.
	SeqNum uint32

	// From, To, Subject and Date are the decoded header values.
	From    string
	To      string
	Subject string
	Date    string

	// Flags are the message flags at fetch time.
	Flags []string
}

// HasFlag reports whether the envelope carries the given flag.
// Flag matching is case-insensitive.
func (e Envelope) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// RenderedMessage is a fetched message reduced to readable text:
// the decoded envelope plus a plain-text body extracted from the
// MIME structure.
type RenderedMessage struct {
	// Envelope is the decoded header summary.
	Envelope Envelope

	// Body is the extracted plain-text body.
	Body string

	// Multipart reports whether the message had multiple MIME parts.
	Multipart bool

	// FromHTML reports whether the body was recovered from an
	// HTML-only message.
	FromHTML bool
}

// CachedHeader is a locally cached message summary. Cached headers let
// repeated listings skip the round trip to the server.
type CachedHeader struct {
	// ID is the cache entry identifier.
	ID string

	// Account is the account user@host the entry belongs to.
	Account string

	// Mailbox is the mailbox the message was fetched from.
	Mailbox string

	// Envelope is the cached header summary.
	Envelope Envelope

	// FetchedAt is when the entry was stored.
	FetchedAt time.Time
}
