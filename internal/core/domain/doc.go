// Package domain contains the core business entities for epistle:
// accounts, mailboxes, messages and their invariants. It has no
// dependencies on adapters or external services.
package domain
