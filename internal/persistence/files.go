package persistence

import (
	"context"
	"fmt"

	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/feed"
	"github.com/agentstation/congressmap/pkg/ledger"
	"github.com/agentstation/congressmap/pkg/overrides"
	"github.com/agentstation/congressmap/pkg/sources"
)

// LedgerFile is a ledger.Store backed by a JSON file.
type LedgerFile struct {
	Path string
}

var _ ledger.Store = (*LedgerFile)(nil)

// NewLedgerFile returns a store for path.
func NewLedgerFile(path string) *LedgerFile {
	return &LedgerFile{Path: path}
}

// Load implements ledger.Store. A missing file yields an empty ledger; an
// unreadable or malformed one returns an error the caller may recover from.
func (f *LedgerFile) Load(ctx context.Context) (ledger.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Ledger{}, err
	}
	data, err := readOptional(f.Path)
	if err != nil {
		return ledger.Ledger{}, err
	}
	if data == nil {
		return ledger.New(), nil
	}
	l, err := ledger.Decode(data)
	if err != nil {
		return ledger.Ledger{}, errors.WrapParse("json", f.Path, err)
	}
	return l, nil
}

// Save implements ledger.Store.
func (f *LedgerFile) Save(ctx context.Context, l ledger.Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteJSON(f.Path, l)
}

// FeedFile publishes the feed and the debug artifact as JSON files.
type FeedFile struct {
	FeedPath  string
	DebugPath string
}

// NewFeedFile returns a publisher writing to feedPath and debugPath.
func NewFeedFile(feedPath, debugPath string) *FeedFile {
	return &FeedFile{FeedPath: feedPath, DebugPath: debugPath}
}

// Publish atomically replaces the public feed.
func (f *FeedFile) Publish(ctx context.Context, fd feed.Feed) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fd.Events == nil {
		fd.Events = []feed.Entry{}
	}
	return WriteJSON(f.FeedPath, fd)
}

// PublishDebug writes the debug artifact and returns where it went.
func (f *FeedFile) PublishDebug(ctx context.Context, d feed.Debug) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.DebugPath == "" {
		return "", nil
	}
	return f.DebugPath, WriteJSON(f.DebugPath, d)
}

// ReadFeed loads a published feed.
func ReadFeed(path string) (feed.Feed, error) {
	data, err := readOptional(path)
	if err != nil {
		return feed.Feed{}, err
	}
	if data == nil {
		return feed.Feed{}, errors.NewNotFoundError("feed", path)
	}
	f, err := feed.Decode(data)
	if err != nil {
		return feed.Feed{}, errors.WrapParse("json", path, err)
	}
	return f, nil
}

// SourcesFile loads collaborator configuration from a YAML or JSON file.
type SourcesFile struct {
	Path string
}

// NewSourcesFile returns a loader for path.
func NewSourcesFile(path string) *SourcesFile {
	return &SourcesFile{Path: path}
}

// LoadSources returns the configured sources. A missing file yields no
// sources and a warning.
func (f *SourcesFile) LoadSources(ctx context.Context) ([]sources.Config, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	data, err := readOptional(f.Path)
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		return nil, []string{fmt.Sprintf("[sources] %s not found; nothing to collect", f.Path)}, nil
	}
	cfgs, warnings, err := sources.ParseConfigs(data)
	if err != nil {
		return nil, nil, errors.WrapParse("yaml", f.Path, err)
	}
	return cfgs, warnings, nil
}

// OverridesFile loads the manual override document.
type OverridesFile struct {
	Path string
}

// NewOverridesFile returns a loader for path.
func NewOverridesFile(path string) *OverridesFile {
	return &OverridesFile{Path: path}
}

// LoadOverrides returns the overrides. A missing file yields none.
func (f *OverridesFile) LoadOverrides(ctx context.Context) (overrides.Overrides, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	data, err := readOptional(f.Path)
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		return overrides.Overrides{}, nil, nil
	}
	ovr, warnings, err := overrides.Parse(data)
	if err != nil {
		return nil, nil, errors.WrapParse("json", f.Path, err)
	}
	return ovr, warnings, nil
}
