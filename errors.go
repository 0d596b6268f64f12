// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// errors.go — sentinel error variables returned by the public gridio API,
// covering grammar parsing, encryption, registry dispatch, format migration,
// and backend adapter failures.

// Package gridio serializes electrical-network simulation documents to a
// textual interchange format and restores them with full fidelity: structural
// entry kinds, column data types, and the class identity of embedded
// behavioral objects all survive a round trip.
package gridio

import (
	"errors"
	"fmt"
)

// Grammar errors
var (
	// ErrMalformedPayload reports text that does not parse as the
	// interchange grammar, including an encrypted payload fed to the
	// decoder without decryption.
	ErrMalformedPayload = errors.New("gridio: payload does not parse as the interchange grammar")
)

// Encryption errors
var (
	// ErrAuthentication reports a well-formed encrypted envelope whose
	// authentication tag does not verify under the supplied passphrase.
	ErrAuthentication = errors.New("gridio: decryption rejected, wrong passphrase or tampered payload")
)

// Registry errors
var (
	ErrUnknownTag       = errors.New("gridio: no decoder registered for tag")
	ErrUnregisteredType = errors.New("gridio: no encoder registered for type")
)

// Migration errors
var (
	ErrMigration = errors.New("gridio: format migration failed")
)

// Adapter errors
var (
	ErrAdapter = errors.New("gridio: backend adapter failure")
)

// MigrationError reports a migration step whose structural precondition did
// not hold. It names the step and the document entry it was inspecting.
type MigrationError struct {
	Step   string
	Entry  string
	Reason string
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("gridio: migration step %q on entry %q: %s", e.Step, e.Entry, e.Reason)
}

// Unwrap makes errors.Is(err, ErrMigration) hold for every MigrationError.
func (e *MigrationError) Unwrap() error { return ErrMigration }

// AdapterError reports a backend-specific I/O or schema failure. Backend is
// the adapter name ("excel", "sqlite", "postgres", "snapshot"), Op the
// operation that failed.
type AdapterError struct {
	Backend string
	Op      string
	Cause   error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("gridio: %s adapter: %s: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap exposes both the ErrAdapter sentinel and the backend cause, so
// errors.Is matches either.
func (e *AdapterError) Unwrap() []error { return []error{ErrAdapter, e.Cause} }

// NewAdapterError wraps cause for a backend adapter. Adapters in the excel,
// sqlite, postgres and snapshot packages surface all failures through it.
func NewAdapterError(backend, op string, cause error) error {
	return &AdapterError{Backend: backend, Op: op, Cause: cause}
}
