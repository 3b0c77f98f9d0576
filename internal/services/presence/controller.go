package presence

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage"
)

// Publisher delivers events to connected clients
type Publisher interface {
	SendTo(conn model.ConnectionID, evt model.Event)
	BroadcastAll(evt model.Event)
}

// Controller tracks who is online and keeps every client's roster current
type Controller struct {
	storage   storage.Store
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger

	mu      sync.RWMutex
	entries map[model.ConnectionID]model.Identity
}

// NewController creates a new PresenceController
func NewController(
	storage storage.Store,
	publisher Publisher,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		entries:   make(map[model.ConnectionID]model.Identity),
	}
}

// Register adds or replaces the identity for its connection and broadcasts
// the roster. Registered accounts get their win count looked up first.
func (c *Controller) Register(ctx context.Context, identity model.Identity) (model.Identity, error) {
	if identity.ConnectionID == "" {
		return model.Identity{}, model.ErrConnectionNotFound
	}

	identity.Wins = 0
	if identity.HasAccount() {
		wins, err := c.storage.GetWinCount(ctx, identity.AccountID)
		if err != nil {
			c.logger.Warn("failed to look up win count",
				slog.String("account_id", string(identity.AccountID)),
				slog.String("error", err.Error()),
			)
		} else {
			identity.Wins = wins
		}
	}

	c.mu.Lock()
	c.entries[identity.ConnectionID] = identity
	c.mu.Unlock()

	c.logger.Info("player registered",
		slog.String("connection_id", string(identity.ConnectionID)),
		slog.String("username", identity.DisplayName),
		slog.Bool("guest", identity.IsGuest),
	)

	c.broadcastRoster()
	return identity, nil
}

// Remove drops a connection from the roster. It reports whether the
// connection was registered; the roster is only broadcast if it was.
func (c *Controller) Remove(ctx context.Context, conn model.ConnectionID) bool {
	c.mu.Lock()
	_, ok := c.entries[conn]
	delete(c.entries, conn)
	c.mu.Unlock()

	if !ok {
		return false
	}

	c.logger.Info("player left", slog.String("connection_id", string(conn)))
	c.broadcastRoster()
	return true
}

// Get returns the identity registered for a connection
func (c *Controller) Get(conn model.ConnectionID) (model.Identity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	identity, ok := c.entries[conn]
	if !ok {
		return model.Identity{}, model.ErrConnectionNotFound
	}
	return identity, nil
}

// Roster returns every registered identity ordered by name then connection
func (c *Controller) Roster() []model.Identity {
	c.mu.RLock()
	roster := make([]model.Identity, 0, len(c.entries))
	for _, identity := range c.entries {
		roster = append(roster, identity)
	}
	c.mu.RUnlock()

	sort.Slice(roster, func(i, j int) bool {
		if roster[i].DisplayName != roster[j].DisplayName {
			return roster[i].DisplayName < roster[j].DisplayName
		}
		return roster[i].ConnectionID < roster[j].ConnectionID
	})
	return roster
}

// Len returns the number of registered connections
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Controller) broadcastRoster() {
	c.publisher.BroadcastAll(model.NewEvent(model.EventOnlineUsers, c.clock.Now(), c.Roster()))
}

// ControllerInterface defines the presence operations
type ControllerInterface interface {
	Register(ctx context.Context, identity model.Identity) (model.Identity, error)
	Remove(ctx context.Context, conn model.ConnectionID) bool
	Get(conn model.ConnectionID) (model.Identity, error)
	Roster() []model.Identity
}

var _ ControllerInterface = (*Controller)(nil)
