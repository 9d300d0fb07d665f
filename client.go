// Package congressmap provides the main entry point for the congress event
// pipeline. A Client runs update passes: it collects raw events from every
// configured source, derives stable ids, resolves competing values by source
// trust, applies manual overrides, validates the result and, when the feed is
// valid, reconciles the ledger and publishes the feed.
//
// Example usage:
//
//	c, err := congressmap.New(congressmap.WithDataDir("data"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c.OnEventAdded(func(e events.Event) {
//	    log.Printf("new event: %s", e.ID)
//	})
//
//	result, err := c.Update(ctx)
//	if errors.IsNotPublished(err) {
//	    // the feed failed validation; see result.DebugPath
//	}
package congressmap

import (
	"sync"

	"github.com/agentstation/congressmap/pkg/ledger"
)

// Client runs update passes and exposes the resulting state.
type Client interface {

	// Updater runs the update pipeline
	Updater

	// Persistence gives read access to persisted state
	Persistence

	// AutoUpdater provides access to interval updates
	AutoUpdater

	// Hooks provides access to event callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	// runMu serializes update runs so two passes never interleave ledger
	// load and save
	runMu sync.Mutex

	// last holds the ledger written by the most recent published run
	mu   sync.RWMutex
	last *ledger.Ledger

	// sched is the running interval loop, if any
	schedMu sync.Mutex
	sched   *scheduler

	hooks *hooks
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		hooks:   newHooks(),
	}

	if o.autoUpdatesEnabled {
		if err := c.AutoUpdatesOn(); err != nil {
			return nil, err
		}
	}
	return c, nil
}
