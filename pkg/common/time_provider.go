package common

import "time"

// TimeProvider abstracts the clock so ticket and event timestamps are
// deterministic under test.
type TimeProvider interface {
	Now() time.Time
}

// NewRealTimeProvider returns a provider backed by the system clock.
func NewRealTimeProvider() TimeProvider {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// MockTimeProvider is a settable clock for tests.
type MockTimeProvider struct {
	now time.Time
}

func NewMockTimeProvider(initial time.Time) *MockTimeProvider {
	return &MockTimeProvider{now: initial}
}

func (m *MockTimeProvider) Now() time.Time {
	return m.now
}

func (m *MockTimeProvider) SetTime(t time.Time) {
	m.now = t
}

// AdvanceTime moves the clock forward by d.
func (m *MockTimeProvider) AdvanceTime(d time.Duration) {
	m.now = m.now.Add(d)
}
