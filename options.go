// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// options.go — functional options shared by the encode and decode entry
// points: encryption passphrase, selective materialization, migration
// control, logging and metrics.

package gridio

// SelectMode chooses how entries outside the requested set are handled
// during a selective decode.
type SelectMode int

const (
	// SkipUnlisted decodes unlisted entries and then replaces them with a
	// minimal placeholder of the correct kind: an empty table keeping the
	// full original column schema, an empty graph or geometry collection.
	SkipUnlisted SelectMode = iota

	// DropUnlisted yields the same placeholders but skips the structural
	// materialization of unlisted entries entirely. An optimization only;
	// the decoded result is identical to SkipUnlisted.
	DropUnlisted
)

type options struct {
	passphrase   string
	entries      map[string]bool
	selectActive bool
	mode         SelectMode
	migrate      bool
	logger       Logger
	metrics      MetricsRecorder
}

func applyOptions(opts []Option) options {
	o := options{
		migrate: true,
		logger:  noopLogger{},
		metrics: noopMetrics{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Option configures a ToJSON/FromJSON call.
type Option func(*options)

// WithEncryption wraps the payload with passphrase-derived symmetric
// encryption on encode, and unwraps it before parsing on decode.
func WithEncryption(passphrase string) Option {
	return func(o *options) { o.passphrase = passphrase }
}

// WithEntries restricts decoding to the named document entries. Scalars,
// nested maps and the version tag are always materialized regardless of the
// selection; they are required for structural integrity.
func WithEntries(names []string, mode SelectMode) Option {
	return func(o *options) {
		o.selectActive = true
		o.mode = mode
		o.entries = make(map[string]bool, len(names))
		for _, n := range names {
			o.entries[n] = true
		}
	}
}

// EntrySelected reports whether the named entry falls inside the selection
// configured by the given options. With no WithEntries option every entry
// counts as selected. Backend adapters use it to leave unlisted tables as
// schema-only placeholders instead of reading their rows.
func EntrySelected(name string, opts ...Option) bool {
	o := applyOptions(opts)
	return !o.selectActive || o.entries[name]
}

// WithoutMigration leaves a document decoded from an older format version
// untouched instead of migrating it to the current version.
func WithoutMigration() Option {
	return func(o *options) { o.migrate = false }
}

// WithLogger routes decode diagnostics (applied migration steps, skipped
// entries) to l instead of discarding them.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records encode/decode durations and payload sizes.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}
