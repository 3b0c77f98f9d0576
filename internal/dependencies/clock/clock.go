package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock provides time operations that can be faked for testing.
// clockwork.Clock and *clockwork.FakeClock both satisfy it.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) clockwork.Ticker
	AfterFunc(d time.Duration, f func()) clockwork.Timer
}

// New creates a Clock backed by the system clock
func New() Clock {
	return clockwork.NewRealClock()
}
