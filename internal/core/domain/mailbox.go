package domain

import "strings"

// Well-known mailbox name attributes from LIST replies.
const (
	AttrNoselect       = `\Noselect`
	AttrNoinferiors    = `\Noinferiors`
	AttrMarked         = `\Marked`
	AttrUnmarked       = `\Unmarked`
	AttrHasChildren    = `\HasChildren`
	AttrHasNoChildren  = `\HasNoChildren`
	AttrNonExistent    = `\NonExistent`
	AttrSubscribedAttr = `\Subscribed`
)

// MailboxInfo is one untagged LIST reply: the name attributes, the
// hierarchy delimiter and the mailbox name.
type MailboxInfo struct {
	// Attributes are the name attributes, e.g. \Noselect, \HasChildren.
	Attributes []string

	// Delimiter is the hierarchy delimiter. Empty when the server
	// returned NIL (flat namespace).
	Delimiter string

	// Name is the mailbox name, decoded from the quoted or literal form.
	Name string
}

// HasAttribute reports whether the mailbox carries the given name
// attribute. Attribute matching is case-insensitive per RFC 9051.
func (m MailboxInfo) HasAttribute(attr string) bool {
	for _, a := range m.Attributes {
		if strings.EqualFold(a, attr) {
			return true
		}
	}
	return false
}

// Selectable reports whether the mailbox can be SELECTed.
func (m MailboxInfo) Selectable() bool {
	return !m.HasAttribute(AttrNoselect) && !m.HasAttribute(AttrNonExistent)
}

// StatusItem is one of the STATUS data item names defined in RFC 9051 §6.3.11.
type StatusItem string

const (
	StatusMessages    StatusItem = "MESSAGES"
	StatusUIDNext     StatusItem = "UIDNEXT"
	StatusUIDValidity StatusItem = "UIDVALIDITY"
	StatusUnseen      StatusItem = "UNSEEN"
	StatusDeleted     StatusItem = "DELETED"
	StatusSize        StatusItem = "SIZE"
)

// AllStatusItems returns the status data items the client may request.
func AllStatusItems() []StatusItem {
	return []StatusItem{
		StatusMessages,
		StatusUIDNext,
		StatusUIDValidity,
		StatusUnseen,
		StatusDeleted,
		StatusSize,
	}
}

// IsValid reports whether the item is a defined STATUS data item.
func (s StatusItem) IsValid() bool {
	for _, item := range AllStatusItems() {
		if StatusItem(strings.ToUpper(string(s))) == item {
			return true
		}
	}
	return false
}

// MailboxStatus holds the mailbox state reported by SELECT and STATUS.
type MailboxStatus struct {
	// Name is the mailbox this status describes.
	Name string

	// Exists is the number of messages in the mailbox.
	Exists uint32

	// Recent is the number of messages with the \Recent flag.
	Recent uint32

	// Unseen is, after SELECT, the sequence number of the first unseen
	// message; after STATUS, the count of unseen messages.
	Unseen uint32

	// UIDNext is the next unique identifier value.
	UIDNext uint32

	// UIDValidity is the unique identifier validity value.
	UIDValidity uint32

	// Deleted is the number of messages with the \Deleted flag
	// (STATUS DELETED only).
	Deleted uint32

	// Size is the mailbox size in octets (STATUS SIZE only).
	Size uint64

	// Flags are the defined flags in the mailbox.
	Flags []string

	// PermanentFlags are the flags the client can change permanently.
	PermanentFlags []string
}
