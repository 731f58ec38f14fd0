package face

import (
	"sync"

	"github.com/ccnfwd/ccnfwd/pkg/ndnerr"
	"github.com/ccnfwd/ccnfwd/pkg/types"
)

// RemoveListener is invoked synchronously, before a Connection handle is
// dropped, so that PIT reverse-path membership and FIB next-hop membership
// are purged before any dangling id could leak into a subsequent operation
// (spec.md 5's "Cancellation and timeouts" paragraph).
type RemoveListener func(id types.ConnId)

// Table is a bidirectional map {connection id <-> Connection}, with a
// secondary fd index for locally connected applications, per spec.md 4.3.
// It is only ever mutated from the reactor thread (by the control-message
// handler); the pipeline only reads it, so no locking is required for the
// maps themselves. A mutex guards registration of RemoveListeners, which
// may be installed once at startup from a different goroutine.
type Table struct {
	byId map[types.ConnId]*Connection
	byFd map[int]types.ConnId

	mu        sync.Mutex
	listeners []RemoveListener
}

func NewTable() *Table {
	return &Table{
		byId: make(map[types.ConnId]*Connection),
		byFd: make(map[int]types.ConnId),
	}
}

// OnRemove registers a listener invoked synchronously inside Remove.
func (t *Table) OnRemove(l RemoveListener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// Insert adds a connection, failing if its id already exists.
func (t *Table) Insert(c *Connection) error {
	if _, exists := t.byId[c.Id]; exists {
		return ndnerr.ErrDuplicateConnection{Id: uint64(c.Id)}
	}
	t.byId[c.Id] = c
	if c.Fd >= 0 {
		t.byFd[c.Fd] = c.Id
	}
	return nil
}

// Remove tears down a connection: it notifies every registered listener
// (PIT/FIB cleanup) before deleting the connection from both indexes and
// closing its transport.
func (t *Table) Remove(id types.ConnId) {
	c, ok := t.byId[id]
	if !ok {
		return
	}

	t.mu.Lock()
	listeners := append([]RemoveListener(nil), t.listeners...)
	t.mu.Unlock()
	for _, l := range listeners {
		l(id)
	}

	delete(t.byId, id)
	if c.Fd >= 0 {
		delete(t.byFd, c.Fd)
	}
	_ = c.Transport.Close()
}

// Get returns the connection for id, or nil if none exists.
func (t *Table) Get(id types.ConnId) *Connection {
	return t.byId[id]
}

// GetByFd resolves a connection by its local file descriptor.
func (t *Table) GetByFd(fd int) *Connection {
	id, ok := t.byFd[fd]
	if !ok {
		return nil
	}
	return t.byId[id]
}

// Len returns the number of live connections.
func (t *Table) Len() int { return len(t.byId) }

// All returns every connection id currently registered, for management
// listing commands (spec.md 6's ListConnections).
func (t *Table) All() []types.ConnId {
	ids := make([]types.ConnId, 0, len(t.byId))
	for id := range t.byId {
		ids = append(ids, id)
	}
	return ids
}
