// Package file stores the account configuration in a TOML file under
// the epistle config directory.
package file
