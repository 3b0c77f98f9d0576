package duel

import (
	"time"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

func (s *ManagerSuite) TestJoinSessionAt13Seconds() {
	s.withoutTicks()
	id := s.startDuel()

	first, err := s.manager.RequestHint(s.ctx, id, "alice", 1)
	s.Require().NoError(err)
	second, err := s.manager.RequestHint(s.ctx, id, "alice", 1)
	s.Require().NoError(err)

	s.manager.Detach("alice")
	s.clock.Advance(13 * time.Second)

	s.Require().NoError(s.manager.JoinSession(s.ctx, id, "alice", "alice-2"))

	timers := s.publisher.EventsTo("alice-2", model.EventTimer)
	s.Require().Len(timers, 1)
	s.Equal(model.TimerPayload{Round: 1, TimeLeft: 12}, timers[0].Payload)

	hints := s.publisher.EventsTo("alice-2", model.EventHintSelected)
	s.Require().Len(hints, 2)
	s.Equal(model.HintSelectedPayload{Hint: first.Hint, RevealedCount: 1}, hints[0].Payload)
	s.Equal(model.HintSelectedPayload{Hint: second.Hint, RevealedCount: 2}, hints[1].Payload)

	states := s.publisher.EventsTo("alice-2", model.EventRehydrateState)
	s.Require().Len(states, 1)
	s.Equal(model.RehydratePayload{
		TotalScore:             0,
		SubmittedRounds:        []int{},
		RevealedHintsThisRound: []string{first.Hint, second.Hint},
	}, states[0].Payload)
}

func (s *ManagerSuite) TestJoinSessionEventOrder() {
	id := s.startDuel()
	_, err := s.manager.RequestHint(s.ctx, id, "bob", 1)
	s.Require().NoError(err)

	s.publisher.Reset()
	s.Require().NoError(s.manager.JoinSession(s.ctx, id, "bob", "bob-2"))

	var types []model.EventType
	for _, d := range s.publisher.Deliveries() {
		s.Equal(model.ConnectionID("bob-2"), d.To)
		types = append(types, d.Event.Type)
	}
	s.Equal([]model.EventType{model.EventTimer, model.EventHintSelected, model.EventRehydrateState}, types)
}

func (s *ManagerSuite) TestJoinSessionRestoresScore() {
	id := s.startDuel()
	_, err := s.manager.SubmitGuess(s.ctx, id, "bob", 2, "x", 0, 25)
	s.Require().NoError(err)
	_, err = s.manager.SubmitGuess(s.ctx, id, "bob", 1, "x", 0, 25)
	s.Require().NoError(err)

	s.Require().NoError(s.manager.JoinSession(s.ctx, id, "bob", "bob-2"))

	states := s.publisher.EventsTo("bob-2", model.EventRehydrateState)
	s.Require().Len(states, 1)
	state := states[0].Payload.(model.RehydratePayload)
	s.Equal(3000, state.TotalScore)
	s.Equal([]int{1, 2}, state.SubmittedRounds)
}

func (s *ManagerSuite) TestJoinSessionSkipsHintsFromEarlierRound() {
	s.withoutTicks()
	id := s.startDuel()
	_, err := s.manager.RequestHint(s.ctx, id, "alice", 1)
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Second)
	s.Require().NoError(s.manager.JoinSession(s.ctx, id, "alice", "alice-2"))

	timers := s.publisher.EventsTo("alice-2", model.EventTimer)
	s.Require().Len(timers, 1)
	s.Equal(model.TimerPayload{Round: 2, TimeLeft: 20}, timers[0].Payload)
	s.Empty(s.publisher.EventsTo("alice-2", model.EventHintSelected))

	state := s.publisher.EventsTo("alice-2", model.EventRehydrateState)[0].Payload.(model.RehydratePayload)
	s.Empty(state.RevealedHintsThisRound)
}

func (s *ManagerSuite) TestJoinSessionRebindsConnection() {
	id := s.startDuel()

	s.Require().NoError(s.manager.JoinSession(s.ctx, id, "alice", "alice-2"))

	// The new connection acts for the participant, the old one no longer does
	update, err := s.manager.SubmitGuess(s.ctx, id, "alice-2", 1, "x", 0, 25)
	s.Require().NoError(err)
	s.Equal(1500, update.TotalScore)

	_, err = s.manager.SubmitGuess(s.ctx, id, "alice", 2, "x", 0, 25)
	s.ErrorIs(err, model.ErrNotParticipant)

	_, ok := s.manager.SessionFor("alice")
	s.False(ok)
	sid, ok := s.manager.SessionFor("alice-2")
	s.True(ok)
	s.Equal(id, sid)
}

func (s *ManagerSuite) TestJoinSessionAfterDetachDeliversGameOver() {
	id := s.startDuel()
	s.manager.Detach("bob")
	s.Require().NoError(s.manager.JoinSession(s.ctx, id, "bob", "bob-2"))

	s.finish()

	s.Len(s.publisher.EventsTo("alice", model.EventGameOver), 1)
	s.Len(s.publisher.EventsTo("bob-2", model.EventGameOver), 1)
	s.Empty(s.publisher.EventsTo("bob", model.EventGameOver))
}

func (s *ManagerSuite) TestJoinSessionUnknownParticipant() {
	id := s.startDuel()
	s.ErrorIs(s.manager.JoinSession(s.ctx, id, "mallory", "m-1"), model.ErrNotParticipant)
	s.Empty(s.publisher.EventsTo("m-1", model.EventTimer))
}

func (s *ManagerSuite) TestJoinSessionUnknownSessionIgnored() {
	s.NoError(s.manager.JoinSession(s.ctx, "nope", "alice", "alice-2"))
	s.Empty(s.publisher.Deliveries())
}

func (s *ManagerSuite) TestJoinSessionCannotTakeOpponentSeat() {
	id := s.startDuel()

	s.ErrorIs(s.manager.JoinSession(s.ctx, id, "bob", "alice"), model.ErrNotParticipant)
	s.Empty(s.publisher.EventsTo("alice", model.EventRehydrateState))

	// Both seats keep their own connection
	update, err := s.manager.SubmitGuess(s.ctx, id, "bob", 1, "x", 0, 25)
	s.Require().NoError(err)
	s.Equal(1500, update.TotalScore)
	update, err = s.manager.SubmitGuess(s.ctx, id, "alice", 1, "x", 0, 25)
	s.Require().NoError(err)
	s.Equal(1500, update.TotalScore)

	s.finish()
	s.Len(s.publisher.EventsTo("alice", model.EventGameOver), 1)
	s.Len(s.publisher.EventsTo("bob", model.EventGameOver), 1)
}

func (s *ManagerSuite) TestJoinSessionFromAnotherDuelRejected() {
	first := s.startDuel()
	carol := model.Identity{ConnectionID: "carol", DisplayName: "Carol", IsGuest: true}
	dave := model.Identity{ConnectionID: "dave", DisplayName: "Dave", IsGuest: true}
	second, err := s.manager.CreateSession(s.ctx, carol, dave)
	s.Require().NoError(err)

	s.ErrorIs(s.manager.JoinSession(s.ctx, second, "carol", "alice"), model.ErrAlreadyInDuel)

	sid, ok := s.manager.SessionFor("alice")
	s.Require().True(ok)
	s.Equal(first, sid)
	sid, ok = s.manager.SessionFor("carol")
	s.Require().True(ok)
	s.Equal(second, sid)

	_, err = s.manager.SubmitGuess(s.ctx, second, "alice", 1, "x", 0, 25)
	s.ErrorIs(err, model.ErrNotParticipant)
	_, err = s.manager.SubmitGuess(s.ctx, second, "carol", 1, "x", 0, 25)
	s.NoError(err)
}
