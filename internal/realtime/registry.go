package realtime

import (
	"sync"

	"github.com/google/uuid"

	"pub-order-system/internal/domain"
)

const eventBuffer = 64

// Connection is one live observer. Events arrive on a buffered channel; the
// owning writer goroutine (the SSE handler) drains it until Close.
type Connection struct {
	ID     string
	events chan domain.Event

	mu      sync.Mutex
	closed  bool
	dropped int
}

func (c *Connection) Events() <-chan domain.Event { return c.events }

// send never blocks. A full buffer means the observer is too slow; the event
// is dropped and the observer recovers from its next snapshot.
func (c *Connection) send(ev domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.events <- ev:
		return true
	default:
		c.dropped++
		return false
	}
}

func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

// Registry tracks connected observers and their channel membership. Purely
// in-memory: a restart loses nothing that a reconnect-plus-snapshot does not
// rebuild.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*Connection
	channels map[domain.Channel]map[string]*Connection
}

func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[string]*Connection),
		channels: make(map[domain.Channel]map[string]*Connection),
	}
}

func (r *Registry) Register() *Connection {
	c := &Connection{
		ID:     uuid.NewString(),
		events: make(chan domain.Event, eventBuffer),
	}
	r.mu.Lock()
	r.conns[c.ID] = c
	r.mu.Unlock()
	return c
}

func (r *Registry) Subscribe(connID string, ch domain.Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	if !ok {
		return false
	}
	members, ok := r.channels[ch]
	if !ok {
		members = make(map[string]*Connection)
		r.channels[ch] = members
	}
	members[connID] = c
	return true
}

// Unregister removes the connection from every channel and closes its event
// stream. Safe to call more than once.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	c, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
		for _, members := range r.channels {
			delete(members, connID)
		}
	}
	r.mu.Unlock()
	if ok {
		c.close()
	}
}

func (r *Registry) MembersOf(ch domain.Channel) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.channels[ch]
	out := make([]*Connection, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
