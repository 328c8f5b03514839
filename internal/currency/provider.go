package currency

import "sync/atomic"

// Provider holds the live rate table. Readers get a consistent immutable
// snapshot; the sync service swaps in a rebuilt table atomically so
// in-flight computations never observe a partial update.
type Provider struct {
	table atomic.Pointer[Table]
}

// NewProvider creates a provider seeded with the given table.
func NewProvider(initial *Table) *Provider {
	p := &Provider{}
	p.table.Store(initial)
	return p
}

// Current returns the current table snapshot.
func (p *Provider) Current() *Table {
	return p.table.Load()
}

// Swap replaces the table.
func (p *Provider) Swap(t *Table) {
	p.table.Store(t)
}
