package congressmap

import (
	"slices"
	"sync"

	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/ledger"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hooks registers callbacks for ledger transitions.
type Hooks interface {
	// OnEventAdded registers a callback for ids seen for the first time
	OnEventAdded(EventAddedHook)

	// OnEventMissing registers a callback for ids no source reports anymore
	OnEventMissing(EventMissingHook)

	// OnEventReturned registers a callback for missing ids observed again
	OnEventReturned(EventReturnedHook)
}

// Hook function types for ledger transitions
type (
	// EventAddedHook is called when an event enters the ledger
	EventAddedHook func(e events.Event)

	// EventMissingHook is called when an item becomes missing; the item
	// carries the last observed event
	EventMissingHook func(item ledger.Item)

	// EventReturnedHook is called when a missing event is observed again
	EventReturnedHook func(e events.Event)
)

// OnEventAdded registers a callback for when events are added.
func (c *client) OnEventAdded(fn EventAddedHook) {
	c.hooks.OnEventAdded(fn)
}

// OnEventMissing registers a callback for when events go missing.
func (c *client) OnEventMissing(fn EventMissingHook) {
	c.hooks.OnEventMissing(fn)
}

// OnEventReturned registers a callback for when events return.
func (c *client) OnEventReturned(fn EventReturnedHook) {
	c.hooks.OnEventReturned(fn)
}

// hooks manages event callbacks for ledger transitions
type hooks struct {
	mu         sync.RWMutex
	onAdded    []EventAddedHook
	onMissing  []EventMissingHook
	onReturned []EventReturnedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnEventAdded registers a callback for when events are added
func (h *hooks) OnEventAdded(fn EventAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAdded = append(h.onAdded, fn)
}

// OnEventMissing registers a callback for when events go missing
func (h *hooks) OnEventMissing(fn EventMissingHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMissing = append(h.onMissing, fn)
}

// OnEventReturned registers a callback for when events return
func (h *hooks) OnEventReturned(fn EventReturnedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReturned = append(h.onReturned, fn)
}

// trigger fires the callbacks for the transitions between two ledgers, in
// sorted id order
func (h *hooks) trigger(next ledger.Ledger, t ledger.Transitions) {
	h.mu.RLock()
	onAdded := slices.Clone(h.onAdded)
	onReturned := slices.Clone(h.onReturned)
	onMissing := slices.Clone(h.onMissing)
	h.mu.RUnlock()

	for _, id := range t.Added {
		item := next.Items[id]
		for _, hook := range onAdded {
			hook(item.Event.Clone())
		}
	}
	for _, id := range t.Returned {
		item := next.Items[id]
		for _, hook := range onReturned {
			hook(item.Event.Clone())
		}
	}
	for _, id := range t.WentMissing {
		item := next.Items[id]
		item.Event = item.Event.Clone()
		for _, hook := range onMissing {
			hook(item)
		}
	}
}
