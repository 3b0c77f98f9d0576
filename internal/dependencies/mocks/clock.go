package mocks

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
)

// Ensure the fake clock implements Clock
var _ clock.Clock = (*clockwork.FakeClock)(nil)

// NewMockClock creates a fake clock set to the given time. Advance it to
// fire tickers and timers created from it.
func NewMockClock(t time.Time) *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(t)
}
