package invite

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// Publisher delivers events to connected clients
type Publisher interface {
	SendTo(conn model.ConnectionID, evt model.Event)
}

// Presence resolves connections to registered identities
type Presence interface {
	Get(conn model.ConnectionID) (model.Identity, error)
}

// SessionCreator starts a duel between two identities
type SessionCreator interface {
	CreateSession(ctx context.Context, a, b model.Identity) (model.SessionID, error)
}

// Controller handles the invite / accept handshake
type Controller struct {
	presence  Presence
	sessions  SessionCreator
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger

	mu sync.Mutex
	// pending maps an inviter to the targets it has invited
	pending map[model.ConnectionID]map[model.ConnectionID]struct{}
}

// NewController creates a new InviteController
func NewController(
	presence Presence,
	sessions SessionCreator,
	publisher Publisher,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		presence:  presence,
		sessions:  sessions,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		pending:   make(map[model.ConnectionID]map[model.ConnectionID]struct{}),
	}
}

// Invite forwards the sender's public profile to the target and records the
// invite until it is accepted or either side leaves. Unregistered senders
// are ignored.
func (c *Controller) Invite(ctx context.Context, from, to model.ConnectionID) error {
	sender, err := c.presence.Get(from)
	if err != nil {
		c.logger.Debug("invite from unregistered connection ignored",
			slog.String("from", string(from)),
		)
		return nil
	}
	if from == to {
		return model.ErrInvalidParticipants
	}

	c.mu.Lock()
	targets, ok := c.pending[from]
	if !ok {
		targets = make(map[model.ConnectionID]struct{})
		c.pending[from] = targets
	}
	targets[to] = struct{}{}
	c.mu.Unlock()

	c.publisher.SendTo(to, model.NewEvent(model.EventInviteReceived, c.clock.Now(), sender.Profile()))

	c.logger.Info("invite sent",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	return nil
}

// AcceptInvite consumes a pending invite from inviter and starts a duel
// with the inviter as the first participant. Failures that stop the duel
// from being created are reported to the accepter as duel-create-failed.
func (c *Controller) AcceptInvite(ctx context.Context, accepter, inviter model.ConnectionID) (model.SessionID, error) {
	if accepter == inviter {
		c.reportFailure(accepter, model.ErrInvalidParticipants)
		return "", model.ErrInvalidParticipants
	}
	if !c.take(inviter, accepter) {
		c.reportFailure(accepter, model.ErrNoPendingInvite)
		return "", model.ErrNoPendingInvite
	}

	a, err := c.presence.Get(inviter)
	if err != nil {
		c.reportFailure(accepter, err)
		return "", fmt.Errorf("inviter %s: %w", inviter, err)
	}
	b, err := c.presence.Get(accepter)
	if err != nil {
		c.reportFailure(accepter, err)
		return "", fmt.Errorf("accepter %s: %w", accepter, err)
	}

	// The session manager reports its own failures to both participants
	return c.sessions.CreateSession(ctx, a, b)
}

// take removes the invite from inviter to target, reporting whether it
// was pending
func (c *Controller) take(inviter, target model.ConnectionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	targets, ok := c.pending[inviter]
	if !ok {
		return false
	}
	if _, ok := targets[target]; !ok {
		return false
	}
	delete(targets, target)
	if len(targets) == 0 {
		delete(c.pending, inviter)
	}
	return true
}

// Remove drops every invite sent by or to conn
func (c *Controller) Remove(conn model.ConnectionID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, conn)
	for inviter, targets := range c.pending {
		delete(targets, conn)
		if len(targets) == 0 {
			delete(c.pending, inviter)
		}
	}
}

// Pending returns the number of outstanding invites
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, targets := range c.pending {
		n += len(targets)
	}
	return n
}

func (c *Controller) reportFailure(conn model.ConnectionID, err error) {
	c.publisher.SendTo(conn, model.NewEvent(model.EventDuelCreateFailed, c.clock.Now(),
		model.ErrorPayload{Reason: err.Error()}))
}

// ControllerInterface defines the invitation operations
type ControllerInterface interface {
	Invite(ctx context.Context, from, to model.ConnectionID) error
	AcceptInvite(ctx context.Context, accepter, inviter model.ConnectionID) (model.SessionID, error)
	Remove(conn model.ConnectionID)
}

var _ ControllerInterface = (*Controller)(nil)
