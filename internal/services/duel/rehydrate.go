package duel

import (
	"context"
	"log/slog"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// JoinSession binds conn to a participant of a running duel and replays the
// participant's current view: the clock, any hints revealed this round, and
// their score. Unknown or finished sessions are ignored. A connection already
// bound to another participant or another duel is rejected.
func (m *Manager) JoinSession(
	ctx context.Context,
	sessionID model.SessionID,
	participantID model.ParticipantID,
	conn model.ConnectionID,
) error {
	sess := m.lookup(sessionID)
	if sess == nil {
		return nil
	}

	sess.mu.Lock()
	if sess.state != stateRunning {
		sess.mu.Unlock()
		return nil
	}

	p := sess.byID(participantID)
	if p == nil {
		sess.mu.Unlock()
		return model.ErrNotParticipant
	}

	// A connection acts for at most one participant of one duel
	if other := sess.byConn(conn); other != nil && other != p {
		sess.mu.Unlock()
		return model.ErrNotParticipant
	}

	m.mu.Lock()
	if bound, ok := m.conns[conn]; ok && bound != sessionID {
		m.mu.Unlock()
		sess.mu.Unlock()
		return model.ErrAlreadyInDuel
	}
	previous := p.conn
	p.conn = conn
	if previous != "" && previous != conn && m.conns[previous] == sessionID {
		delete(m.conns, previous)
	}
	m.conns[conn] = sessionID
	m.mu.Unlock()

	now := m.clock.Now()
	round, timeLeft := RoundAt(now.Sub(sess.startedAt), m.cfg.RoundDuration)

	revealed := append([]string{}, p.hintsFor(round)...)
	state := model.RehydratePayload{
		TotalScore:             p.score,
		SubmittedRounds:        p.submittedRounds(),
		RevealedHintsThisRound: revealed,
	}
	sess.mu.Unlock()

	m.publisher.SendTo(conn, model.NewEvent(model.EventTimer, now, model.TimerPayload{Round: round, TimeLeft: timeLeft}))
	for i, h := range revealed {
		m.publisher.SendTo(conn, model.NewEvent(model.EventHintSelected, now, model.HintSelectedPayload{
			Hint:          h,
			RevealedCount: i + 1,
		}))
	}
	m.publisher.SendTo(conn, model.NewEvent(model.EventRehydrateState, now, state))

	m.logger.Info("participant rejoined",
		slog.String("session_id", string(sessionID)),
		slog.String("participant_id", string(participantID)),
		slog.String("connection_id", string(conn)),
		slog.Int("round", round),
		slog.Int("time_left", timeLeft),
	)
	return nil
}
