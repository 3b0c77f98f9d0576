package duel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/random"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/hint"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/scoring"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage"
)

// Publisher delivers events to connected clients
type Publisher interface {
	SendTo(conn model.ConnectionID, evt model.Event)
	BroadcastAll(evt model.Event)
}

// Catalog is the read-only flag source duels draw from
type Catalog interface {
	Lookup(code model.FlagCode) (model.FlagRecord, error)
	Codes() []model.FlagCode
}

// Config holds duel timing settings
type Config struct {
	// RoundDuration in whole seconds
	RoundDuration int
	// Grace is added after the last round before the duel completes
	Grace time.Duration
	// TickInterval is how often timer events are broadcast
	TickInterval time.Duration
	// PersistTimeout bounds the background result write
	PersistTimeout time.Duration
}

// DefaultConfig returns the standard duel timing
func DefaultConfig() Config {
	return Config{
		RoundDuration:  25,
		Grace:          500 * time.Millisecond,
		TickInterval:   time.Second,
		PersistTimeout: 10 * time.Second,
	}
}

// Manager owns every live duel session
type Manager struct {
	cfg       Config
	catalog   Catalog
	scoring   *scoring.Service
	hints     *hint.Service
	storage   storage.Store
	publisher Publisher
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[model.SessionID]*session
	conns    map[model.ConnectionID]model.SessionID
	closing  bool

	persisting sync.WaitGroup
}

// NewManager creates a new DuelManager
func NewManager(
	cfg Config,
	catalog Catalog,
	scoringService *scoring.Service,
	hintService *hint.Service,
	storage storage.Store,
	publisher Publisher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Manager {
	defaults := DefaultConfig()
	if cfg.RoundDuration <= 0 {
		cfg.RoundDuration = defaults.RoundDuration
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}
	if cfg.Grace < 0 {
		cfg.Grace = 0
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaults.PersistTimeout
	}

	return &Manager{
		cfg:       cfg,
		catalog:   catalog,
		scoring:   scoringService,
		hints:     hintService,
		storage:   storage,
		publisher: publisher,
		clock:     clock,
		random:    random,
		logger:    logger,
		sessions:  make(map[model.SessionID]*session),
		conns:     make(map[model.ConnectionID]model.SessionID),
	}
}

// CreateSession starts a duel between a and b. The start record is written
// before anything else becomes visible; if that fails both participants
// are told and no clock is started.
func (m *Manager) CreateSession(ctx context.Context, a, b model.Identity) (model.SessionID, error) {
	if a.ConnectionID == "" || b.ConnectionID == "" || a.ConnectionID == b.ConnectionID {
		return "", model.ErrInvalidParticipants
	}

	codes := m.catalog.Codes()
	if len(codes) < model.RoundsPerDuel {
		m.failCreate(a, b, model.ErrCatalogTooSmall)
		return "", model.ErrCatalogTooSmall
	}
	flags := make([]model.FlagCode, 0, model.RoundsPerDuel)
	for _, i := range random.Sample(m.random, len(codes), model.RoundsPerDuel) {
		flags = append(flags, codes[i])
	}

	sess := newSession(model.SessionID(uuid.NewString()), flags, m.clock.Now(), a, b)

	if !m.reserve(sess) {
		m.failCreate(a, b, model.ErrAlreadyInDuel)
		return "", model.ErrAlreadyInDuel
	}

	if err := m.storage.RecordSessionStart(ctx, sess.start()); err != nil {
		m.release(sess)
		m.logger.Error("failed to record session start",
			slog.String("session_id", string(sess.id)),
			slog.String("error", err.Error()),
		)
		m.failCreate(a, b, model.ErrDuelCreateFailed)
		return "", fmt.Errorf("%w: %w", model.ErrDuelCreateFailed, err)
	}

	// The clock must exist before the session is reachable by other goroutines
	sess.mu.Lock()
	sess.clock = startRoundClock(m.clock, m.cfg, sess.startedAt,
		func(round, timeLeft int) bool { return m.tick(sess, round, timeLeft) },
		func() { m.complete(sess) },
	)
	m.mu.Lock()
	m.sessions[sess.id] = sess
	for _, p := range sess.participants {
		// Detached while the start record was being written
		if m.conns[p.conn] != sess.id {
			p.conn = ""
		}
	}
	m.mu.Unlock()
	starts := make([]model.ConnectionID, 0, len(sess.participants))
	for _, p := range sess.participants {
		starts = append(starts, p.conn)
	}
	sess.mu.Unlock()

	now := m.clock.Now()
	for i, p := range sess.participants {
		if starts[i] == "" {
			continue
		}
		m.publisher.SendTo(starts[i], model.NewEvent(model.EventStartDuel, now, model.StartDuelPayload{
			SessionID:     sess.id,
			ParticipantID: p.ID,
			Opponent:      sess.opponent(p).DisplayName,
			Rounds:        model.RoundsPerDuel,
			RoundDuration: m.cfg.RoundDuration,
		}))
	}

	m.logger.Info("duel started",
		slog.String("session_id", string(sess.id)),
		slog.String("participant_a", string(a.ConnectionID)),
		slog.String("participant_b", string(b.ConnectionID)),
		slog.Int("round_duration", m.cfg.RoundDuration),
	)

	return sess.id, nil
}

// reserve claims both participants' connections for sess. It fails if
// either is already in a duel.
func (m *Manager) reserve(sess *session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range sess.participants {
		if _, busy := m.conns[p.conn]; busy {
			return false
		}
	}
	for _, p := range sess.participants {
		m.conns[p.conn] = sess.id
	}
	return true
}

// release undoes reserve for a session that never started
func (m *Manager) release(sess *session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range sess.participants {
		if m.conns[p.conn] == sess.id {
			delete(m.conns, p.conn)
		}
	}
}

func (m *Manager) failCreate(a, b model.Identity, err error) {
	evt := model.NewEvent(model.EventDuelCreateFailed, m.clock.Now(), model.ErrorPayload{Reason: err.Error()})
	m.publisher.SendTo(a.ConnectionID, evt)
	m.publisher.SendTo(b.ConnectionID, evt)
}

// tick broadcasts the clock to attached participants. It returns false once
// the session has stopped running.
func (m *Manager) tick(sess *session, round, timeLeft int) bool {
	sess.mu.Lock()
	if sess.state != stateRunning {
		sess.mu.Unlock()
		return false
	}
	conns := sess.attached()
	sess.mu.Unlock()

	evt := model.NewEvent(model.EventTimer, m.clock.Now(), model.TimerPayload{Round: round, TimeLeft: timeLeft})
	for _, conn := range conns {
		m.publisher.SendTo(conn, evt)
	}
	return true
}

// complete ends the duel: state is purged, each attached participant gets
// their personalised result, and the outcome is written in the background.
func (m *Manager) complete(sess *session) {
	sess.mu.Lock()
	if sess.state != stateRunning {
		sess.mu.Unlock()
		return
	}
	// Once Close has started no new result writes may be registered
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		sess.state = stateCancelled
		sess.clock.stop()
		sess.mu.Unlock()
		m.remove(sess)
		return
	}
	m.persisting.Add(1)
	m.mu.Unlock()

	sess.state = stateCompleted
	sess.clock.stop()

	now := m.clock.Now()
	result := sess.result(now)

	var events []gameOver
	for _, p := range sess.participants {
		if p.conn == "" {
			continue
		}
		o := sess.opponent(p)
		events = append(events, gameOver{
			conn: p.conn,
			payload: model.GameOverPayload{
				You:      model.PlayerScore{Name: p.DisplayName, Score: p.score},
				Opponent: model.PlayerScore{Name: o.DisplayName, Score: o.score},
			},
		})
	}
	sess.mu.Unlock()

	m.remove(sess)

	if len(events) < model.ParticipantsPerDuel {
		m.logger.Warn("game over not delivered, participant detached",
			slog.String("session_id", string(sess.id)),
			slog.Int("attached", len(events)),
		)
	} else {
		for _, e := range events {
			m.publisher.SendTo(e.conn, model.NewEvent(model.EventGameOver, now, e.payload))
		}
		result.GameOverDelivered = true
	}

	m.logger.Info("duel completed",
		slog.String("session_id", string(sess.id)),
		slog.String("winner", string(result.WinnerID)),
		slog.Bool("game_over_delivered", result.GameOverDelivered),
	)

	go m.persist(result)
}

type gameOver struct {
	conn    model.ConnectionID
	payload model.GameOverPayload
}

func (m *Manager) persist(result model.SessionResult) {
	defer m.persisting.Done()

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.PersistTimeout)
	defer cancel()

	if err := m.storage.RecordSessionResult(ctx, result); err != nil {
		m.logger.Error("failed to record session result",
			slog.String("session_id", string(result.SessionID)),
			slog.String("error", err.Error()),
		)
	}
}

// remove drops the session and every connection index pointing at it
func (m *Manager) remove(sess *session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sess.id)
	for conn, id := range m.conns {
		if id == sess.id {
			delete(m.conns, conn)
		}
	}
}

// lookup returns a live session
func (m *Manager) lookup(id model.SessionID) *session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// SubmitGuess scores a round for the participant on conn. Unknown or
// finished sessions are ignored. Rejections are also reported to conn as
// guess-error.
func (m *Manager) SubmitGuess(
	ctx context.Context,
	sessionID model.SessionID,
	conn model.ConnectionID,
	round int,
	guess string,
	hintsUsed int,
	timeLeft float64,
) (*model.ScoreUpdatePayload, error) {
	sess := m.lookup(sessionID)
	if sess == nil {
		return nil, nil
	}

	sess.mu.Lock()
	if sess.state != stateRunning {
		sess.mu.Unlock()
		return nil, nil
	}

	p := sess.byConn(conn)
	var err error
	switch {
	case p == nil:
		err = model.ErrNotParticipant
	case round < 1 || round > len(sess.flags):
		err = model.ErrInvalidRound
	case p.submitted[round]:
		err = model.ErrRoundAlreadySubmitted
	}
	if err != nil {
		sess.mu.Unlock()
		m.publisher.SendTo(conn, model.NewEvent(model.EventGuessError, m.clock.Now(), model.ErrorPayload{Reason: err.Error()}))
		return nil, err
	}

	// Hints revealed by the server for this round are never under-reported
	if revealed := len(p.hintsFor(round)); revealed > hintsUsed {
		hintsUsed = revealed
	}
	points := m.scoring.Points(hintsUsed, timeLeft)
	p.score += points
	p.submitted[round] = true
	payload := &model.ScoreUpdatePayload{TotalScore: p.score}
	sess.mu.Unlock()

	m.publisher.SendTo(conn, model.NewEvent(model.EventScoreUpdate, m.clock.Now(), *payload))

	m.logger.Debug("guess scored",
		slog.String("session_id", string(sessionID)),
		slog.String("connection_id", string(conn)),
		slog.Int("round", round),
		slog.String("guess", guess),
		slog.Int("points", points),
	)
	return payload, nil
}

// RequestHint reveals a new hint for the round's flag to the participant on
// conn. Unknown or finished sessions are ignored. Failures are reported to
// conn only, as hint-error.
func (m *Manager) RequestHint(
	ctx context.Context,
	sessionID model.SessionID,
	conn model.ConnectionID,
	round int,
) (*model.HintSelectedPayload, error) {
	sess := m.lookup(sessionID)
	if sess == nil {
		return nil, nil
	}

	sess.mu.Lock()
	if sess.state != stateRunning {
		sess.mu.Unlock()
		return nil, nil
	}

	payload, err := m.revealLocked(sess, conn, round)
	sess.mu.Unlock()

	if err != nil {
		m.publisher.SendTo(conn, model.NewEvent(model.EventHintError, m.clock.Now(), model.ErrorPayload{Reason: err.Error()}))
		return nil, err
	}

	m.publisher.SendTo(conn, model.NewEvent(model.EventHintSelected, m.clock.Now(), *payload))
	return payload, nil
}

func (m *Manager) revealLocked(sess *session, conn model.ConnectionID, round int) (*model.HintSelectedPayload, error) {
	p := sess.byConn(conn)
	if p == nil {
		return nil, model.ErrNotParticipant
	}
	if round < 1 || round > len(sess.flags) {
		return nil, model.ErrInvalidRound
	}
	// Hints are only handed out for the round the clock is in
	if current, _ := RoundAt(m.clock.Now().Sub(sess.startedAt), m.cfg.RoundDuration); round != current {
		return nil, model.ErrInvalidRound
	}

	record, err := m.catalog.Lookup(sess.flags[round-1])
	if err != nil {
		return nil, err
	}

	text, count, err := m.hints.Reveal(&p.hints, round, hint.Candidates(record))
	if err != nil {
		return nil, err
	}
	return &model.HintSelectedPayload{Hint: text, RevealedCount: count}, nil
}

// Detach unbinds conn from its duel. The duel keeps running and the
// participant may rejoin.
func (m *Manager) Detach(conn model.ConnectionID) {
	m.mu.Lock()
	id, ok := m.conns[conn]
	delete(m.conns, conn)
	sess := m.sessions[id]
	m.mu.Unlock()

	if !ok || sess == nil {
		return
	}

	sess.mu.Lock()
	if p := sess.byConn(conn); p != nil {
		p.conn = ""
	}
	sess.mu.Unlock()

	m.logger.Info("participant detached",
		slog.String("session_id", string(id)),
		slog.String("connection_id", string(conn)),
	)
}

// Abort tears a session down without a result
func (m *Manager) Abort(sessionID model.SessionID) error {
	sess := m.lookup(sessionID)
	if sess == nil {
		return model.ErrSessionNotFound
	}

	sess.mu.Lock()
	if sess.state != stateRunning {
		sess.mu.Unlock()
		return model.ErrSessionNotFound
	}
	sess.state = stateCancelled
	sess.clock.stop()
	sess.mu.Unlock()

	m.remove(sess)

	m.logger.Info("duel aborted", slog.String("session_id", string(sessionID)))
	return nil
}

// Close aborts every live session and waits for pending result writes.
// Sessions that expire while closing are aborted rather than completed.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closing = true
	ids := make([]model.SessionID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.Abort(id); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			return err
		}
	}

	m.persisting.Wait()
	return nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SessionFor returns the live session a connection is attached to
func (m *Manager) SessionFor(conn model.ConnectionID) (model.SessionID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.conns[conn]
	return id, ok
}

// ManagerInterface defines the duel operations
type ManagerInterface interface {
	CreateSession(ctx context.Context, a, b model.Identity) (model.SessionID, error)
	SubmitGuess(ctx context.Context, sessionID model.SessionID, conn model.ConnectionID, round int, guess string, hintsUsed int, timeLeft float64) (*model.ScoreUpdatePayload, error)
	RequestHint(ctx context.Context, sessionID model.SessionID, conn model.ConnectionID, round int) (*model.HintSelectedPayload, error)
	JoinSession(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID, conn model.ConnectionID) error
	Detach(conn model.ConnectionID)
	Abort(sessionID model.SessionID) error
	Close() error
	Len() int
}

var _ ManagerInterface = (*Manager)(nil)
