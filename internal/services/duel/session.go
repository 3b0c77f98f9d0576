package duel

import (
	"sort"
	"sync"
	"time"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// participantState is one participant's mutable duel state
type participantState struct {
	model.Participant

	// conn is the currently attached connection, empty while detached
	conn      model.ConnectionID
	score     int
	submitted map[int]bool
	hints     model.HintUsage
}

// session is a live duel. Every field below mu is guarded by it.
type session struct {
	id        model.SessionID
	flags     []model.FlagCode
	startedAt time.Time

	mu           sync.Mutex
	state        clockState
	participants [model.ParticipantsPerDuel]*participantState
	clock        *roundClock
}

func newSession(id model.SessionID, flags []model.FlagCode, startedAt time.Time, a, b model.Identity) *session {
	s := &session{
		id:        id,
		flags:     flags,
		startedAt: startedAt,
		state:     stateRunning,
	}
	for i, identity := range []model.Identity{a, b} {
		s.participants[i] = &participantState{
			Participant: model.ParticipantFromIdentity(identity),
			conn:        identity.ConnectionID,
			submitted:   make(map[int]bool),
		}
	}
	return s
}

// byConn returns the participant attached to conn
func (s *session) byConn(conn model.ConnectionID) *participantState {
	if conn == "" {
		return nil
	}
	for _, p := range s.participants {
		if p.conn == conn {
			return p
		}
	}
	return nil
}

// byID returns the participant with the given id
func (s *session) byID(id model.ParticipantID) *participantState {
	for _, p := range s.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// opponent returns the other participant
func (s *session) opponent(p *participantState) *participantState {
	if s.participants[0] == p {
		return s.participants[1]
	}
	return s.participants[0]
}

// attached returns the connections currently bound to participants
func (s *session) attached() []model.ConnectionID {
	var conns []model.ConnectionID
	for _, p := range s.participants {
		if p.conn != "" {
			conns = append(conns, p.conn)
		}
	}
	return conns
}

func (s *session) start() model.SessionStart {
	participants := make([]model.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, p.Participant)
	}
	return model.SessionStart{
		SessionID:    s.id,
		Flags:        s.flags,
		StartedAt:    s.startedAt,
		Participants: participants,
	}
}

// result builds the final outcome. The winner is empty on a tie.
func (s *session) result(completedAt time.Time) model.SessionResult {
	result := model.SessionResult{
		SessionID:   s.id,
		Flags:       s.flags,
		StartedAt:   s.startedAt,
		CompletedAt: completedAt,
	}
	for _, p := range s.participants {
		result.Participants = append(result.Participants, model.ParticipantResult{
			ParticipantID:   p.ID,
			AccountID:       p.AccountID,
			DisplayName:     p.DisplayName,
			IsGuest:         p.IsGuest,
			Score:           p.score,
			SubmittedRounds: p.submittedRounds(),
		})
	}

	a, b := s.participants[0], s.participants[1]
	switch {
	case a.score > b.score:
		result.WinnerID = a.ID
	case b.score > a.score:
		result.WinnerID = b.ID
	}
	return result
}

// submittedRounds returns the scored rounds in ascending order
func (p *participantState) submittedRounds() []int {
	rounds := make([]int, 0, len(p.submitted))
	for r := range p.submitted {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)
	return rounds
}

// hintsFor returns the hints revealed in round, or nil for any other round
func (p *participantState) hintsFor(round int) []string {
	if p.hints.Round != round {
		return nil
	}
	return p.hints.Revealed
}
