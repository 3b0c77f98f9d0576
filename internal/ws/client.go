package ws

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// Buffer size for outgoing messages
const sendBufferSize = 256

// Client represents a connected websocket client
type Client struct {
	id          model.ConnectionID
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new websocket client
func NewClient(hub *Hub, id model.ConnectionID, conn *websocket.Conn) *Client {
	return &Client{
		id:          id,
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ID returns the client's connection id
func (c *Client) ID() model.ConnectionID {
	return c.id
}

// writePump drains the send buffer onto the socket and keeps the peer alive
// with pings. It returns once the hub closes the buffer or a write fails.
func (c *Client) writePump(cfg Config, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Debug("ws write failed",
					slog.String("connection_id", string(c.id)),
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump decodes inbound frames and hands them to the dispatcher until
// the peer goes away. Malformed frames are answered with an error event.
func (c *Client) readPump(ctx context.Context, cfg Config, dispatcher Dispatcher, logger *slog.Logger) {
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Warn("ws unexpected close",
					slog.String("connection_id", string(c.id)),
					slog.String("error", err.Error()))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		env, err := Decode(data)
		if err != nil {
			logger.Debug("ws malformed message",
				slog.String("connection_id", string(c.id)),
				slog.String("error", err.Error()))
			c.hub.SendTo(c.id, model.NewEvent(model.EventError, time.Now(),
				model.ErrorPayload{Reason: reasonFor(err)}))
			continue
		}
		dispatcher.Dispatch(ctx, c.id, env)
	}
}

func reasonFor(err error) string {
	if errors.Is(err, ErrMalformedMessage) {
		return ErrMalformedMessage.Error()
	}
	return err.Error()
}
