// Package imap implements an IMAP4rev1 client session over TLS.
//
// The connector speaks the wire protocol directly: tagged commands,
// untagged response collection and literal handling. Parsed replies
// surface as core domain types via the driven.MailSession port.
package imap
