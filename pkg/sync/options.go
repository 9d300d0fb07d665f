// Package sync provides the per-run options and the result of an update run.
package sync

import (
	"slices"
	"strings"
	"time"

	"github.com/agentstation/congressmap/pkg/errors"
)

// Options controls one update run.
type Options struct {
	// DryRun computes everything and persists nothing.
	DryRun bool
	// IncludeMissing appends ledger items that went missing to the feed.
	IncludeMissing bool
	// Timeout bounds the whole run; zero means no bound beyond the context.
	Timeout time.Duration
	// Sources restricts collection to the named series; empty means all.
	Sources []string
}

// Option configures Options.
type Option func(*Options)

// Defaults returns the default run options.
func Defaults() *Options {
	return &Options{
		DryRun:         false,
		IncludeMissing: false,
		Timeout:        0,
		Sources:        nil,
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   o.Timeout,
			Message: "timeout must be non-negative",
		}
	}
	for _, s := range o.Sources {
		if strings.TrimSpace(s) == "" {
			return &errors.ValidationError{
				Field:   "Sources",
				Value:   o.Sources,
				Message: "source names must not be empty",
			}
		}
	}
	return nil
}

// Selected reports whether series takes part in the run.
func (o *Options) Selected(series string) bool {
	if len(o.Sources) == 0 {
		return true
	}
	return slices.ContainsFunc(o.Sources, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), series)
	})
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithIncludeMissing configures whether missing items are published.
func WithIncludeMissing(include bool) Option {
	return func(o *Options) {
		o.IncludeMissing = include
	}
}

// WithTimeout configures the run timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithSources restricts the run to the given series.
func WithSources(series ...string) Option {
	return func(o *Options) {
		o.Sources = series
	}
}
