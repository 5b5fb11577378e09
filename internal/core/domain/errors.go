package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPlaceholderConfig indicates the account config still carries
	// the generated placeholder values and cannot be used to connect.
	ErrPlaceholderConfig = errors.New("account config contains placeholder values")

	// Authentication errors.

	// ErrAuthRequired indicates the account requires credentials but none are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the server rejected the credentials.
	ErrAuthInvalid = errors.New("authentication invalid")

	// Session errors.

	// ErrNoMailboxSelected indicates an operation that needs a selected
	// mailbox (search, fetch, store, expunge) ran before SELECT.
	ErrNoMailboxSelected = errors.New("no mailbox selected")

	// ErrSessionClosed indicates the IMAP session has been logged out or closed.
	ErrSessionClosed = errors.New("session closed")

	// ErrBadResponse indicates the server sent data the client could not parse.
	ErrBadResponse = errors.New("malformed server response")
)
