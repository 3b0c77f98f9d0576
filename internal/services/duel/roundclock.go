package duel

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// clockState is the lifecycle of a session's round clock
type clockState int

const (
	stateRunning clockState = iota
	stateCompleted
	stateCancelled
)

func (s clockState) String() string {
	switch s {
	case stateRunning:
		return "running"
	case stateCompleted:
		return "completed"
	case stateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RoundAt derives the current round and whole seconds left in it from the
// time elapsed since the duel started. Elapsed time is truncated to seconds
// and clamped to the duel length; once it is reached the result is the last
// round with nothing left.
func RoundAt(elapsed time.Duration, roundDuration int) (round, timeLeft int) {
	if roundDuration <= 0 {
		return model.RoundsPerDuel, 0
	}

	total := roundDuration * model.RoundsPerDuel
	secs := int(elapsed / time.Second)
	if secs < 0 {
		secs = 0
	}
	if secs >= total {
		return model.RoundsPerDuel, 0
	}
	return secs/roundDuration + 1, roundDuration - secs%roundDuration
}

// roundClock owns a session's ticker and completion timer. Stopping it
// stops both exactly once.
type roundClock struct {
	ticker clockwork.Ticker
	timer  clockwork.Timer
	done   chan struct{}
	once   sync.Once
}

// startRoundClock starts ticking immediately. onTick is called with the
// derived round for every tick until it returns false, the clock is stopped,
// or a tick reports expiry. onExpire fires once, grace after the last round
// as measured from startedAt.
func startRoundClock(
	c clock.Clock,
	cfg Config,
	startedAt time.Time,
	onTick func(round, timeLeft int) bool,
	onExpire func(),
) *roundClock {
	total := time.Duration(cfg.RoundDuration*model.RoundsPerDuel) * time.Second

	rc := &roundClock{
		ticker: c.NewTicker(cfg.TickInterval),
		done:   make(chan struct{}),
	}
	// Expiry is measured from startedAt, not from when the clock starts
	delay := total + cfg.Grace - c.Now().Sub(startedAt)
	if delay < 0 {
		delay = 0
	}
	rc.timer = c.AfterFunc(delay, onExpire)

	go rc.run(startedAt, cfg.RoundDuration, onTick)
	return rc
}

func (rc *roundClock) run(startedAt time.Time, roundDuration int, onTick func(round, timeLeft int) bool) {
	defer rc.ticker.Stop()

	for {
		select {
		case <-rc.done:
			return
		case t := <-rc.ticker.Chan():
			round, timeLeft := RoundAt(t.Sub(startedAt), roundDuration)
			if !onTick(round, timeLeft) || timeLeft == 0 {
				return
			}
		}
	}
}

// stop cancels the ticker and the completion timer. Safe to call from the
// completion callback itself and more than once.
func (rc *roundClock) stop() {
	rc.once.Do(func() {
		close(rc.done)
		rc.ticker.Stop()
		rc.timer.Stop()
	})
}
