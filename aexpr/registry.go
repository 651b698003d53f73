package aexpr

import "log/slog"

// registry maps location identities to cells, at most one cell per identity.
// Cells are created lazily when a tracked evaluation commits a read and are
// evicted once their last dependent unsubscribes.
type registry struct {
	logger *slog.Logger
	cells  map[Identity]*Cell
}

func newRegistry(logger *slog.Logger) *registry {
	return &registry{
		logger: logger,
		cells:  map[Identity]*Cell{},
	}
}

// resolve returns the cell for id, creating it with value if absent.
func (r *registry) resolve(id Identity, value any) *Cell {
	if c, ok := r.cells[id]; ok {
		c.value = value
		return c
	}
	c := newCell(id, value)
	r.cells[id] = c
	r.logger.Debug("cell created", "cell", id.String(), "hash", id.Hash())
	return c
}

func (r *registry) lookup(id Identity) (*Cell, bool) {
	c, ok := r.cells[id]
	return c, ok
}

// release evicts c if nothing depends on it anymore.
func (r *registry) release(c *Cell) {
	if c.DependentCount() != 0 {
		return
	}
	if current, ok := r.cells[c.id]; ok && current == c {
		delete(r.cells, c.id)
		r.logger.Debug("cell evicted", "cell", c.id.String(), "hash", c.id.Hash())
	}
}

func (r *registry) len() int {
	return len(r.cells)
}
