package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/auth"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/duel"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/invite"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/presence"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/ws"
)

// ErrUnknownEvent is reported for inbound types the server does not handle
var ErrUnknownEvent = errors.New("unknown event type")

// Publisher delivers events to a single connection
type Publisher interface {
	SendTo(conn model.ConnectionID, evt model.Event)
}

// Dispatcher routes decoded inbound events to the owning service
type Dispatcher struct {
	auth      *auth.Service
	presence  presence.ControllerInterface
	invites   invite.ControllerInterface
	duels     duel.ManagerInterface
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	authService *auth.Service,
	presence presence.ControllerInterface,
	invites invite.ControllerInterface,
	duels duel.ManagerInterface,
	publisher Publisher,
	clock clock.Clock,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		auth:      authService,
		presence:  presence,
		invites:   invites,
		duels:     duels,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "gateway")),
	}
}

// Dispatch handles one inbound event from conn
func (d *Dispatcher) Dispatch(ctx context.Context, conn model.ConnectionID, env ws.Envelope) {
	var err error
	switch env.Type {
	case model.EventRegister:
		err = d.register(ctx, conn, env)
	case model.EventInvite:
		err = d.invite(ctx, conn, env)
	case model.EventAcceptInvite:
		err = d.acceptInvite(ctx, conn, env)
	case model.EventJoinSession:
		err = d.joinSession(ctx, conn, env)
	case model.EventRequestHint:
		err = d.requestHint(ctx, conn, env)
	case model.EventSubmitGuess:
		err = d.submitGuess(ctx, conn, env)
	default:
		d.reject(conn, ErrUnknownEvent)
		return
	}

	if err != nil {
		d.logger.Debug("inbound event failed",
			slog.String("connection_id", string(conn)),
			slog.String("type", string(env.Type)),
			slog.String("error", err.Error()))
	}
}

// Disconnect detaches conn from any duel, drops its pending invites and
// removes it from the roster. Running duels continue without it.
func (d *Dispatcher) Disconnect(ctx context.Context, conn model.ConnectionID) {
	d.duels.Detach(conn)
	d.invites.Remove(conn)
	d.presence.Remove(ctx, conn)
}

func (d *Dispatcher) register(ctx context.Context, conn model.ConnectionID, env ws.Envelope) error {
	var req model.RegisterPayload
	if err := env.DecodeData(&req); err != nil {
		d.reject(conn, err)
		return err
	}

	identity, err := d.auth.Identify(conn, req)
	if err != nil {
		d.reject(conn, err)
		return err
	}

	if _, err := d.presence.Register(ctx, identity); err != nil {
		d.reject(conn, err)
		return err
	}
	return nil
}

func (d *Dispatcher) invite(ctx context.Context, conn model.ConnectionID, env ws.Envelope) error {
	var req model.InvitePayload
	if err := env.DecodeData(&req); err != nil {
		d.reject(conn, err)
		return err
	}

	if err := d.invites.Invite(ctx, conn, req.TargetID); err != nil {
		d.reject(conn, err)
		return err
	}
	return nil
}

func (d *Dispatcher) acceptInvite(ctx context.Context, conn model.ConnectionID, env ws.Envelope) error {
	var req model.AcceptInvitePayload
	if err := env.DecodeData(&req); err != nil {
		d.reject(conn, err)
		return err
	}

	// Failures are reported as duel-create-failed by the broker and manager
	_, err := d.invites.AcceptInvite(ctx, conn, req.InviterID)
	return err
}

func (d *Dispatcher) joinSession(ctx context.Context, conn model.ConnectionID, env ws.Envelope) error {
	var req model.JoinSessionPayload
	if err := env.DecodeData(&req); err != nil {
		d.reject(conn, err)
		return err
	}

	if err := d.duels.JoinSession(ctx, req.SessionID, req.ParticipantID, conn); err != nil {
		d.reject(conn, err)
		return err
	}
	return nil
}

func (d *Dispatcher) requestHint(ctx context.Context, conn model.ConnectionID, env ws.Envelope) error {
	var req model.RequestHintPayload
	if err := env.DecodeData(&req); err != nil {
		d.reject(conn, err)
		return err
	}

	// Rejections are reported as hint-error by the manager
	_, err := d.duels.RequestHint(ctx, req.SessionID, conn, req.Round)
	return err
}

func (d *Dispatcher) submitGuess(ctx context.Context, conn model.ConnectionID, env ws.Envelope) error {
	var req model.SubmitGuessPayload
	if err := env.DecodeData(&req); err != nil {
		d.reject(conn, err)
		return err
	}

	// Rejections are reported as guess-error by the manager
	_, err := d.duels.SubmitGuess(ctx, req.SessionID, conn, req.Round, req.Guess, req.HintsUsed, req.TimeLeft)
	return err
}

func (d *Dispatcher) reject(conn model.ConnectionID, err error) {
	reason := err.Error()
	if errors.Is(err, ws.ErrMalformedMessage) {
		reason = ws.ErrMalformedMessage.Error()
	}
	d.publisher.SendTo(conn, model.NewEvent(model.EventError, d.clock.Now(), model.ErrorPayload{Reason: reason}))
}

var _ ws.Dispatcher = (*Dispatcher)(nil)
