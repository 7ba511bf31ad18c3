package store

import (
	"sync"

	"github.com/babylonchain/staking-ledger/types"
)

// EventRecorder buffers the events published by the ledger until they are
// journaled by Save
type EventRecorder struct {
	mu     sync.Mutex
	events []types.Event
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Publish(ev types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Drain returns the buffered events and empties the buffer
func (r *EventRecorder) Drain() []types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events
	r.events = nil
	return events
}
