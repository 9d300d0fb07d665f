// Package constants provides shared constants used throughout congressmap.
// This includes timeouts, limits, file permissions and default paths that
// should be consistent across the library and the CLI.
package constants

import "time"

// Timeout constants
const (
	// CollectorTimeout bounds a single collaborator call when its source
	// config does not set its own timeout
	CollectorTimeout = 60 * time.Second

	// HTTPTimeout is the per-request timeout for HTTP collaborators
	HTTPTimeout = 20 * time.Second

	// UpdateTimeout bounds a whole update run from the CLI
	UpdateTimeout = 10 * time.Minute

	// WatchDebounce coalesces bursts of file events in watch mode
	WatchDebounce = 500 * time.Millisecond
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// MaxConcurrentCollectors caps how many collaborators run at once
	MaxConcurrentCollectors = 8

	// MaxSnippetLength bounds conflict snippets, in runes
	MaxSnippetLength = 220

	// IDHashLength is the number of hex digits kept from the identity digest
	IDHashLength = 10

	// MaxResponseBytes caps how much of an HTTP body a collaborator reads
	MaxResponseBytes = 8 << 20
)

// Path constants
const (
	// DefaultDataDir holds the ledger, feed and debug artifacts
	DefaultDataDir = "data"

	// DefaultSourcesFile is the collaborator configuration document
	DefaultSourcesFile = "sources.yaml"

	// DefaultLedgerFile is the persisted cross-run ledger
	DefaultLedgerFile = "ledger.json"

	// DefaultFeedFile is the public feed
	DefaultFeedFile = "events.json"

	// DefaultOverridesFile is the curated manual override document
	DefaultOverridesFile = "manual_overrides.json"

	// DefaultDebugFile receives events and errors when validation fails
	DefaultDebugFile = "events.debug.json"
)

// HTTP header constants sent by HTTP collaborators
const (
	// UserAgent identifies the collector to remote sites
	UserAgent = "Mozilla/5.0 (compatible; congressmap/1.0; +https://github.com/agentstation/congressmap)"

	// AcceptLanguage prefers English with Portuguese fallbacks
	AcceptLanguage = "en,pt-BR;q=0.8,pt;q=0.7"
)

// Format constants
const (
	// DateLayout is the canonical calendar date layout for event dates
	DateLayout = "2006-01-02"

	// TimestampLayout is used for generated_at, updated_at and ledger timestamps
	TimestampLayout = time.RFC3339
)
