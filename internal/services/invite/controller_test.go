package invite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/mocks"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/presence"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/testutil"
)

type createCall struct {
	a, b model.Identity
}

type fakeSessions struct {
	calls []createCall
	err   error
}

func (f *fakeSessions) CreateSession(_ context.Context, a, b model.Identity) (model.SessionID, error) {
	f.calls = append(f.calls, createCall{a: a, b: b})
	if f.err != nil {
		return "", f.err
	}
	return "session-1", nil
}

type ControllerSuite struct {
	suite.Suite
	publisher  *mocks.MockPublisher
	presence   *presence.Controller
	sessions   *fakeSessions
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.publisher = mocks.NewMockPublisher()
	clock := mocks.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()

	s.presence = presence.NewController(mocks.NewMockStore(), s.publisher, clock, logger)
	s.sessions = &fakeSessions{}
	s.controller = NewController(s.presence, s.sessions, s.publisher, clock, logger)

	_, err := s.presence.Register(s.ctx, model.Identity{ConnectionID: "alice", DisplayName: "Alice", IsGuest: true})
	s.Require().NoError(err)
	_, err = s.presence.Register(s.ctx, model.Identity{ConnectionID: "bob", DisplayName: "Bob", IsGuest: true})
	s.Require().NoError(err)
	s.publisher.Reset()
}

func (s *ControllerSuite) TestInviteSendsSenderProfile() {
	s.Require().NoError(s.controller.Invite(s.ctx, "alice", "bob"))

	events := s.publisher.EventsTo("bob", model.EventInviteReceived)
	s.Require().Len(events, 1)
	profile := events[0].Payload.(model.Profile)
	s.Equal(model.ConnectionID("alice"), profile.ConnectionID)
	s.Equal("Alice", profile.DisplayName)
	s.True(profile.IsGuest)
}

func (s *ControllerSuite) TestInviteFromUnknownSenderIsNoop() {
	s.NoError(s.controller.Invite(s.ctx, "ghost", "bob"))
	s.Empty(s.publisher.Deliveries())
}

func (s *ControllerSuite) TestInviteSelfRejected() {
	s.ErrorIs(s.controller.Invite(s.ctx, "alice", "alice"), model.ErrInvalidParticipants)
	s.Empty(s.publisher.Deliveries())
	s.Zero(s.controller.Pending())
}

func (s *ControllerSuite) TestAcceptCreatesSessionInviterFirst() {
	s.Require().NoError(s.controller.Invite(s.ctx, "alice", "bob"))

	id, err := s.controller.AcceptInvite(s.ctx, "bob", "alice")
	s.Require().NoError(err)
	s.Equal(model.SessionID("session-1"), id)

	s.Require().Len(s.sessions.calls, 1)
	s.Equal(model.ConnectionID("alice"), s.sessions.calls[0].a.ConnectionID)
	s.Equal(model.ConnectionID("bob"), s.sessions.calls[0].b.ConnectionID)
	s.Zero(s.controller.Pending())
}

func (s *ControllerSuite) TestAcceptWithoutInviteRejected() {
	_, err := s.controller.AcceptInvite(s.ctx, "bob", "alice")
	s.ErrorIs(err, model.ErrNoPendingInvite)
	s.Empty(s.sessions.calls)
	s.Empty(s.publisher.EventsTo("alice", model.EventStartDuel))

	failed := s.publisher.EventsTo("bob", model.EventDuelCreateFailed)
	s.Require().Len(failed, 1)
	s.Equal(model.ErrorPayload{Reason: model.ErrNoPendingInvite.Error()}, failed[0].Payload)
}

func (s *ControllerSuite) TestAcceptOnlyByInvitedTarget() {
	_, err := s.presence.Register(s.ctx, model.Identity{ConnectionID: "carol", DisplayName: "Carol", IsGuest: true})
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Invite(s.ctx, "alice", "bob"))

	_, err = s.controller.AcceptInvite(s.ctx, "carol", "alice")
	s.ErrorIs(err, model.ErrNoPendingInvite)
	// Accepting in the wrong direction does not count either
	_, err = s.controller.AcceptInvite(s.ctx, "alice", "bob")
	s.ErrorIs(err, model.ErrNoPendingInvite)
	s.Empty(s.sessions.calls)
	s.Equal(1, s.controller.Pending())
}

func (s *ControllerSuite) TestInviteAcceptedOnce() {
	s.Require().NoError(s.controller.Invite(s.ctx, "alice", "bob"))

	_, err := s.controller.AcceptInvite(s.ctx, "bob", "alice")
	s.Require().NoError(err)
	_, err = s.controller.AcceptInvite(s.ctx, "bob", "alice")
	s.ErrorIs(err, model.ErrNoPendingInvite)
	s.Len(s.sessions.calls, 1)
}

func (s *ControllerSuite) TestRemoveDropsInvitesBothWays() {
	_, err := s.presence.Register(s.ctx, model.Identity{ConnectionID: "carol", DisplayName: "Carol", IsGuest: true})
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Invite(s.ctx, "alice", "bob"))
	s.Require().NoError(s.controller.Invite(s.ctx, "carol", "alice"))
	s.Require().NoError(s.controller.Invite(s.ctx, "carol", "bob"))

	s.controller.Remove("alice")

	s.Equal(1, s.controller.Pending())
	_, err = s.controller.AcceptInvite(s.ctx, "bob", "alice")
	s.ErrorIs(err, model.ErrNoPendingInvite)
	_, err = s.controller.AcceptInvite(s.ctx, "alice", "carol")
	s.ErrorIs(err, model.ErrNoPendingInvite)
	_, err = s.controller.AcceptInvite(s.ctx, "bob", "carol")
	s.NoError(err)
}

func (s *ControllerSuite) TestAcceptStaleInviter() {
	s.Require().NoError(s.controller.Invite(s.ctx, "alice", "bob"))
	s.presence.Remove(s.ctx, "alice")
	s.publisher.Reset()

	_, err := s.controller.AcceptInvite(s.ctx, "bob", "alice")
	s.ErrorIs(err, model.ErrConnectionNotFound)
	s.Empty(s.sessions.calls)
	s.Len(s.publisher.EventsTo("bob", model.EventDuelCreateFailed), 1)
}

func (s *ControllerSuite) TestAcceptByUnregisteredAccepter() {
	s.Require().NoError(s.controller.Invite(s.ctx, "alice", "ghost"))

	_, err := s.controller.AcceptInvite(s.ctx, "ghost", "alice")
	s.ErrorIs(err, model.ErrConnectionNotFound)
	s.Empty(s.sessions.calls)
	s.Len(s.publisher.EventsTo("ghost", model.EventDuelCreateFailed), 1)
}

func (s *ControllerSuite) TestAcceptSelf() {
	_, err := s.controller.AcceptInvite(s.ctx, "alice", "alice")
	s.ErrorIs(err, model.ErrInvalidParticipants)
	s.Empty(s.sessions.calls)
}

func (s *ControllerSuite) TestAcceptPropagatesCreateError() {
	s.sessions.err = errors.New("boom")
	s.Require().NoError(s.controller.Invite(s.ctx, "alice", "bob"))

	_, err := s.controller.AcceptInvite(s.ctx, "bob", "alice")
	s.EqualError(err, "boom")
	// The session manager owns failure reporting once creation started
	s.Empty(s.publisher.EventsTo("bob", model.EventDuelCreateFailed))
}
