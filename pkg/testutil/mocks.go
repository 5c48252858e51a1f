// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/glosslab/salon-service/internal/app/domain/booking"
	"github.com/glosslab/salon-service/internal/app/domain/cart"
)

// MockResolver is a metadata resolver backed by a fixed map.
type MockResolver struct {
	mu       sync.RWMutex
	metadata map[string]cart.Metadata
	calls    int
}

// NewMockResolver creates a resolver that knows the given designs.
func NewMockResolver(metadata map[string]cart.Metadata) *MockResolver {
	if metadata == nil {
		metadata = make(map[string]cart.Metadata)
	}
	return &MockResolver{metadata: metadata}
}

// SetMetadata adds or replaces one design's metadata.
func (m *MockResolver) SetMetadata(designID string, meta cart.Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[designID] = meta
}

// ResolveMetadata returns the known subset of the requested IDs.
func (m *MockResolver) ResolveMetadata(_ context.Context, designIDs []string) (map[string]cart.Metadata, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]cart.Metadata, len(designIDs))
	for _, id := range designIDs {
		if meta, ok := m.metadata[id]; ok {
			out[id] = meta
		}
	}
	return out, nil
}

// Calls reports how many resolutions were requested.
func (m *MockResolver) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// MockNotifier records appointment reminders.
type MockNotifier struct {
	mu       sync.Mutex
	notified []booking.Appointment
	err      error
}

// NewMockNotifier creates a notifier that records deliveries.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// FailWith makes subsequent deliveries return err.
func (m *MockNotifier) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Notify records the appointment.
func (m *MockNotifier) Notify(_ context.Context, appt booking.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.notified = append(m.notified, appt)
	return nil
}

// Notified returns a copy of the recorded appointments.
func (m *MockNotifier) Notified() []booking.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]booking.Appointment, len(m.notified))
	copy(out, m.notified)
	return out
}

// FixedClock returns a clock function pinned to t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
