package congressmap

import (
	"context"
	"path/filepath"
	"time"

	"github.com/agentstation/congressmap/internal/metrics"
	"github.com/agentstation/congressmap/internal/persistence"
	"github.com/agentstation/congressmap/internal/sources/jsonfeed"
	"github.com/agentstation/congressmap/internal/sources/static"
	"github.com/agentstation/congressmap/pkg/authority"
	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/feed"
	"github.com/agentstation/congressmap/pkg/ledger"
	"github.com/agentstation/congressmap/pkg/overrides"
	"github.com/agentstation/congressmap/pkg/sources"
	"github.com/agentstation/utc"
)

// SourcesLoader provides the source configuration of a run.
type SourcesLoader interface {
	LoadSources(ctx context.Context) ([]sources.Config, []string, error)
}

// OverridesLoader provides the manual overrides of a run.
type OverridesLoader interface {
	LoadOverrides(ctx context.Context) (overrides.Overrides, []string, error)
}

// Publisher writes the public feed and, after a failed validation, the debug
// artifact.
type Publisher interface {
	Publish(ctx context.Context, f feed.Feed) error
	PublishDebug(ctx context.Context, d feed.Debug) (string, error)
}

// Clock returns the current time.
type Clock func() time.Time

// options holds the configuration for a Client.
type options struct {
	registry  *sources.Registry
	sources   SourcesLoader
	overrides OverridesLoader
	store     ledger.Store
	publisher Publisher

	clock            Clock
	trust            authority.Table
	concurrency      int
	collectorTimeout time.Duration
	includeMissing   bool

	metrics         *metrics.Recorder
	metricsTextfile string

	autoUpdatesEnabled bool
	autoUpdateInterval time.Duration
}

// Option configures a Client.
type Option func(*options) error

// defaults returns options reading and writing the files of the default
// data directory, with the built-in collectors registered.
func defaults() *options {
	o := &options{
		registry:         DefaultRegistry(""),
		clock:            func() time.Time { return utc.Now().Time },
		trust:            authority.Defaults(),
		concurrency:      constants.MaxConcurrentCollectors,
		collectorTimeout: constants.CollectorTimeout,
	}
	o.useDataDir(constants.DefaultDataDir)
	return o
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *options) useDataDir(dir string) {
	feedFile := persistence.NewFeedFile(
		filepath.Join(dir, constants.DefaultFeedFile),
		filepath.Join(dir, constants.DefaultDebugFile),
	)
	o.sources = persistence.NewSourcesFile(filepath.Join(dir, constants.DefaultSourcesFile))
	o.overrides = persistence.NewOverridesFile(filepath.Join(dir, constants.DefaultOverridesFile))
	o.store = persistence.NewLedgerFile(filepath.Join(dir, constants.DefaultLedgerFile))
	o.publisher = feedFile
}

// DefaultRegistry returns a registry with the built-in collectors. Relative
// static files are resolved against baseDir.
func DefaultRegistry(baseDir string) *sources.Registry {
	reg := sources.NewRegistry()
	reg.Register(static.Kind, static.New(static.WithBaseDir(baseDir)))
	reg.Register(jsonfeed.Kind, jsonfeed.New())
	return reg
}

// WithDataDir reads sources and overrides from, and writes the ledger, feed
// and debug artifact to, the default file names inside dir. Relative static
// source files resolve against dir.
func WithDataDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return &errors.ValidationError{Field: "dataDir", Message: "data directory must not be empty"}
		}
		o.useDataDir(dir)
		o.registry.Register(static.Kind, static.New(static.WithBaseDir(dir)))
		return nil
	}
}

// WithRegistry replaces the collector registry.
func WithRegistry(reg *sources.Registry) Option {
	return func(o *options) error {
		if reg == nil {
			return &errors.ValidationError{Field: "registry", Message: "registry must not be nil"}
		}
		o.registry = reg
		return nil
	}
}

// WithCollector registers a collector for kind in the current registry.
func WithCollector(kind string, c sources.Collector) Option {
	return func(o *options) error {
		o.registry.Register(kind, c)
		return nil
	}
}

// WithSourcesLoader sets where source configuration comes from.
func WithSourcesLoader(l SourcesLoader) Option {
	return func(o *options) error {
		o.sources = l
		return nil
	}
}

// WithSources uses a fixed source configuration.
func WithSources(cfgs ...sources.Config) Option {
	return WithSourcesLoader(StaticSources(cfgs))
}

// WithOverridesLoader sets where manual overrides come from.
func WithOverridesLoader(l OverridesLoader) Option {
	return func(o *options) error {
		o.overrides = l
		return nil
	}
}

// WithOverrides uses a fixed override document.
func WithOverrides(ovr overrides.Overrides) Option {
	return WithOverridesLoader(StaticOverrides(ovr))
}

// WithLedgerStore sets where the ledger is loaded from and saved to.
func WithLedgerStore(s ledger.Store) Option {
	return func(o *options) error {
		o.store = s
		return nil
	}
}

// WithPublisher sets where the feed and debug artifact are written.
func WithPublisher(p Publisher) Option {
	return func(o *options) error {
		o.publisher = p
		return nil
	}
}

// WithClock sets the time source used to stamp ledgers and feeds.
func WithClock(clock Clock) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "clock must not be nil"}
		}
		o.clock = clock
		return nil
	}
}

// WithTrustTable replaces the default trust of each role.
func WithTrustTable(t authority.Table) Option {
	return func(o *options) error {
		o.trust = t
		return nil
	}
}

// WithConcurrency bounds how many collectors run at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return &errors.ValidationError{Field: "concurrency", Value: n, Message: "concurrency must be positive"}
		}
		o.concurrency = n
		return nil
	}
}

// WithCollectorTimeout sets the timeout of sources that configure none.
func WithCollectorTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return &errors.ValidationError{Field: "collectorTimeout", Value: d, Message: "collector timeout must be positive"}
		}
		o.collectorTimeout = d
		return nil
	}
}

// WithIncludeMissing publishes missing ledger items by default.
func WithIncludeMissing(include bool) Option {
	return func(o *options) error {
		o.includeMissing = include
		return nil
	}
}

// WithMetrics records every run in rec and, when textfile is not empty,
// writes the metrics there after each run.
func WithMetrics(rec *metrics.Recorder, textfile string) Option {
	return func(o *options) error {
		o.metrics = rec
		o.metricsTextfile = textfile
		return nil
	}
}

// WithAutoUpdates configures whether interval updates start with the client.
func WithAutoUpdates(enabled bool) Option {
	return func(o *options) error {
		o.autoUpdatesEnabled = enabled
		return nil
	}
}

// WithAutoUpdateInterval configures how often interval updates run.
func WithAutoUpdateInterval(interval time.Duration) Option {
	return func(o *options) error {
		o.autoUpdateInterval = interval
		return nil
	}
}

// StaticSources is a SourcesLoader over a fixed configuration.
type StaticSources []sources.Config

// LoadSources implements SourcesLoader.
func (s StaticSources) LoadSources(context.Context) ([]sources.Config, []string, error) {
	out := make([]sources.Config, len(s))
	for i, cfg := range s {
		out[i] = cfg.Clone()
	}
	return out, nil, nil
}

// StaticOverrides is an OverridesLoader over a fixed document.
type StaticOverrides overrides.Overrides

// LoadOverrides implements OverridesLoader.
func (s StaticOverrides) LoadOverrides(context.Context) (overrides.Overrides, []string, error) {
	return overrides.Overrides(s), nil, nil
}
