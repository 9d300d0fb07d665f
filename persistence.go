package congressmap

import (
	"context"

	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/ledger"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence gives read access to persisted state.
type Persistence interface {
	// Ledger returns the most recently published ledger, loading it from
	// the store when this client has not published one yet
	Ledger(ctx context.Context) (ledger.Ledger, error)
}

// Ledger returns a private copy of the current ledger.
func (c *client) Ledger(ctx context.Context) (ledger.Ledger, error) {
	c.mu.RLock()
	last := c.last
	c.mu.RUnlock()

	if last != nil {
		return copyLedger(*last), nil
	}

	l, err := c.options.store.Load(ctx)
	if err != nil {
		return ledger.Ledger{}, errors.WrapResource("load", "ledger", "", err)
	}
	return l, nil
}

func copyLedger(l ledger.Ledger) ledger.Ledger {
	out := ledger.Ledger{
		UpdatedAt: l.UpdatedAt,
		Items:     make(map[string]ledger.Item, len(l.Items)),
		Warnings:  append([]string{}, l.Warnings...),
	}
	for id, item := range l.Items {
		item.Event = item.Event.Clone()
		out.Items[id] = item
	}
	return out
}
