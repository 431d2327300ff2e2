package utils

import "time"

// Clock is the source of "now" for anything that depends on the current month.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock always reports FixedNow.
type MockClock struct {
	FixedNow time.Time
}

func NewMockClock(year int, month time.Month, day int) *MockClock {
	return &MockClock{FixedNow: time.Date(year, month, day, 12, 0, 0, 0, time.UTC)}
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}
