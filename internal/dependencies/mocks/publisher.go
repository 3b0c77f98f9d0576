package mocks

import (
	"sync"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// Delivery is one event recorded by MockPublisher. To is empty for broadcasts.
type Delivery struct {
	To    model.ConnectionID
	Event model.Event
}

// MockPublisher records every event it is asked to deliver
type MockPublisher struct {
	mu         sync.Mutex
	deliveries []Delivery
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// SendTo records an event for a single connection
func (p *MockPublisher) SendTo(conn model.ConnectionID, evt model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deliveries = append(p.deliveries, Delivery{To: conn, Event: evt})
}

// BroadcastAll records an event for every connection
func (p *MockPublisher) BroadcastAll(evt model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deliveries = append(p.deliveries, Delivery{Event: evt})
}

// Deliveries returns a copy of everything recorded so far
func (p *MockPublisher) Deliveries() []Delivery {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Delivery, len(p.deliveries))
	copy(out, p.deliveries)
	return out
}

// EventsTo returns the events sent to conn with the given type, in order
func (p *MockPublisher) EventsTo(conn model.ConnectionID, eventType model.EventType) []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.Event
	for _, d := range p.deliveries {
		if d.To == conn && d.Event.Type == eventType {
			out = append(out, d.Event)
		}
	}
	return out
}

// Broadcasts returns the broadcast events with the given type, in order
func (p *MockPublisher) Broadcasts(eventType model.EventType) []model.Event {
	return p.EventsTo("", eventType)
}

// Count returns how many events of the given type were recorded
func (p *MockPublisher) Count(eventType model.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, d := range p.deliveries {
		if d.Event.Type == eventType {
			n++
		}
	}
	return n
}

// Reset forgets all recorded deliveries
func (p *MockPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deliveries = nil
}
