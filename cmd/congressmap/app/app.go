// Package app wires configuration, logging and the congressmap client into
// the cobra commands of the congressmap CLI.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/congressmap"
	"github.com/agentstation/congressmap/internal/metrics"
	"github.com/agentstation/congressmap/internal/persistence"
	"github.com/agentstation/congressmap/internal/sources/static"
	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/logging"
)

// BuildInfo is stamped into the binary at release time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

// App holds what every command shares.
type App struct {
	build  BuildInfo
	config *Config
	logger *zerolog.Logger

	stdout io.Writer
	stderr io.Writer

	// appended after the options derived from config
	clientOpts []congressmap.Option

	mu       sync.Mutex
	client   congressmap.Client
	injected bool
}

// Option configures an App.
type Option func(*App) error

// New loads configuration from the default locations and applies opts.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	a := &App{
		build:  BuildInfo{Version: version, Commit: commit, Date: date, BuiltBy: builtBy},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	a.setConfig(config)

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Build returns the version stamp.
func (a *App) Build() BuildInfo { return a.build }

// Config returns the active configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the CLI logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Context attaches the CLI logger to ctx.
func (a *App) Context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, a.logger)
}

// Client returns the shared client, building it from config on first use.
func (a *App) Client() (congressmap.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		c, err := congressmap.New(a.clientOptions()...)
		if err != nil {
			return nil, errors.WrapResource("create", "client", "", err)
		}
		a.client = c
	}
	return a.client, nil
}

// ClientWithOptions builds a fresh client from config plus opts. The caller
// owns it and must turn its auto updates off.
func (a *App) ClientWithOptions(opts ...congressmap.Option) (congressmap.Client, error) {
	c, err := congressmap.New(append(a.clientOptions(), opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "with custom options", err)
	}
	return c, nil
}

// Shutdown stops background updates of the shared client.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	c := a.client
	a.mu.Unlock()
	if c == nil {
		return nil
	}
	if err := c.AutoUpdatesOff(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop auto updates")
		return err
	}
	return nil
}

// resetClient drops a config-built client after the config changed.
// Injected clients are kept.
func (a *App) resetClient() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil || a.injected {
		return
	}
	_ = a.client.AutoUpdatesOff()
	a.client = nil
}

func (a *App) setConfig(config *Config) {
	a.config = config
	logger := NewLogger(config)
	a.logger = &logger
}

func (a *App) clientOptions() []congressmap.Option {
	cfg := a.config
	paths := cfg.Paths()
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}

	opts := []congressmap.Option{
		congressmap.WithDataDir(dataDir),
		congressmap.WithSourcesLoader(persistence.NewSourcesFile(paths.Sources)),
		congressmap.WithOverridesLoader(persistence.NewOverridesFile(paths.Overrides)),
		congressmap.WithLedgerStore(persistence.NewLedgerFile(paths.Ledger)),
		congressmap.WithPublisher(persistence.NewFeedFile(paths.Feed, paths.Debug)),
		// static event files resolve relative to the sources document
		congressmap.WithCollector(static.Kind, static.New(static.WithBaseDir(filepath.Dir(paths.Sources)))),
		congressmap.WithIncludeMissing(cfg.IncludeMissing),
	}
	if cfg.CollectorTimeout > 0 {
		opts = append(opts, congressmap.WithCollectorTimeout(cfg.CollectorTimeout))
	}
	if cfg.Concurrency > 0 {
		opts = append(opts, congressmap.WithConcurrency(cfg.Concurrency))
	}
	if cfg.MetricsTextfile != "" {
		opts = append(opts, congressmap.WithMetrics(metrics.New(), cfg.MetricsTextfile))
	}
	return append(opts, a.clientOpts...)
}

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "must not be nil")
		}
		a.setConfig(config)
		return nil
	}
}

// WithLogger replaces the CLI logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output and diagnostics.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) error {
		a.stdout, a.stderr = stdout, stderr
		return nil
	}
}

// WithClientOptions appends options to every client the app builds.
func WithClientOptions(opts ...congressmap.Option) Option {
	return func(a *App) error {
		a.clientOpts = append(a.clientOpts, opts...)
		return nil
	}
}

// WithClient injects a client. It survives config reloads.
func WithClient(c congressmap.Client) Option {
	return func(a *App) error {
		a.client, a.injected = c, c != nil
		return nil
	}
}
