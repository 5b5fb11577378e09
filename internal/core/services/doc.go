// Package services implements the driving port interfaces over a
// shared IMAP session: account configuration, mailbox operations and
// message operations. The SessionManager dials lazily and keeps one
// connection for the life of the command.
package services
