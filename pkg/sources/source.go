// Package sources defines the contract between the orchestrator and the
// collaborators that fetch events from external sites.
//
// A collaborator receives its own configuration slice and returns a Result:
// either Ok with raw events and warnings, or Err with the reason it could
// not produce any. Expected failures are reported through the Result; the
// orchestrator also recovers from panics and enforces a timeout, so one
// misbehaving source never aborts a run.
//
// Example usage:
//
//	reg := sources.NewRegistry()
//	reg.Register("static", static.New())
//	c, ok := reg.Get(cfg.Key())
//	res := c.Collect(ctx, cfg)
package sources

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/agentstation/congressmap/pkg/events"
)

// Result is the outcome of one collaborator call.
type Result struct {
	// Series names the source the result belongs to.
	Series   string
	Events   []events.Raw
	Warnings []string
	// Err is set when the collaborator produced nothing usable.
	Err error
}

// Ok returns a successful result.
func Ok(series string, evs []events.Raw, warnings []string) Result {
	return Result{Series: series, Events: evs, Warnings: warnings}
}

// Err returns a failed result.
func Err(series string, err error) Result {
	return Result{Series: series, Err: err}
}

// OK reports whether the collaborator succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Collector fetches raw events for one source configuration.
type Collector interface {
	Collect(ctx context.Context, cfg Config) Result
}

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc func(ctx context.Context, cfg Config) Result

// Collect implements Collector.
func (f CollectorFunc) Collect(ctx context.Context, cfg Config) Result {
	return f(ctx, cfg)
}

// Registry is a thread-safe set of collectors keyed by kind.
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[string]Collector)}
}

// Register adds or replaces the collector for kind. Kinds are case
// insensitive.
func (r *Registry) Register(kind string, c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[normalizeKind(kind)] = c
}

// Get returns the collector registered for kind.
func (r *Registry) Get(kind string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[normalizeKind(kind)]
	return c, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.collectors))
	for k := range r.collectors {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Len returns the number of registered collectors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.collectors)
}

// String implements fmt.Stringer.
func (r *Registry) String() string {
	return fmt.Sprintf("Registry%v", r.Kinds())
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
