// Package events provides a synchronous signal with connect/disconnect
// semantics, used for the router's "routed" notification.
package events

import (
	"sync"

	"github.com/fruitsalade/drivesbrowser/internal/metrics"
)

// Listener is invoked on every emission until disconnected.
type Listener func()

// Subscription identifies a connected listener.
type Subscription uint64

type connection struct {
	id       Subscription
	listener Listener
}

// Signal manages listeners and emits to them in connection order.
type Signal struct {
	mu     sync.RWMutex
	conns  []connection
	nextID Subscription
}

// NewSignal creates a signal with no listeners.
func NewSignal() *Signal {
	return &Signal{}
}

// Connect adds a listener and returns its subscription.
// The caller must Disconnect it when done.
func (s *Signal) Connect(l Listener) Subscription {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.conns = append(s.conns, connection{id: id, listener: l})
	s.mu.Unlock()
	metrics.AddSignalListeners(1)
	return id
}

// Disconnect removes a listener. It reports whether the subscription was
// still connected; disconnecting twice is a no-op.
func (s *Signal) Disconnect(sub Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.conns {
		if c.id == sub {
			s.conns = append(s.conns[:i:i], s.conns[i+1:]...)
			metrics.AddSignalListeners(-1)
			return true
		}
	}
	return false
}

// Emit calls every connected listener on the calling goroutine. Listeners
// disconnected by an earlier listener in the same emission are skipped, and
// listeners may disconnect themselves.
func (s *Signal) Emit() {
	s.mu.RLock()
	snapshot := make([]connection, len(s.conns))
	copy(snapshot, s.conns)
	s.mu.RUnlock()

	for _, c := range snapshot {
		if !s.connected(c.id) {
			continue
		}
		c.listener()
	}
}

// Count returns the current number of listeners.
func (s *Signal) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// DisconnectAll removes every listener. Hosts call it on shutdown.
func (s *Signal) DisconnectAll() {
	s.mu.Lock()
	n := len(s.conns)
	s.conns = nil
	s.mu.Unlock()
	metrics.AddSignalListeners(-n)
}

func (s *Signal) connected(id Subscription) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.conns {
		if c.id == id {
			return true
		}
	}
	return false
}
