package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/testutil"
)

type recordingDispatcher struct {
	mu           sync.Mutex
	messages     []Envelope
	from         []model.ConnectionID
	disconnected []model.ConnectionID
}

func (d *recordingDispatcher) Dispatch(_ context.Context, conn model.ConnectionID, env Envelope) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, env)
	d.from = append(d.from, conn)
}

func (d *recordingDispatcher) Disconnect(_ context.Context, conn model.ConnectionID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnected = append(d.disconnected, conn)
}

func (d *recordingDispatcher) snapshot() ([]Envelope, []model.ConnectionID, []model.ConnectionID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Envelope(nil), d.messages...),
		append([]model.ConnectionID(nil), d.from...),
		append([]model.ConnectionID(nil), d.disconnected...)
}

type HandlerSuite struct {
	suite.Suite
	hub        *Hub
	dispatcher *recordingDispatcher
	server     *httptest.Server
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.hub = NewHub(testutil.NopLogger())
	go s.hub.Run()
	s.dispatcher = &recordingDispatcher{}

	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"https://flags.example.com"}
	handler := NewHandler(s.hub, s.dispatcher, cfg, clock.New(), testutil.NopLogger())
	s.server = httptest.NewServer(handler)
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
	s.hub.Close()
}

func (s *HandlerSuite) dial(header http.Header) (*websocket.Conn, model.ConnectionID) {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })

	env := s.read(conn)
	s.Require().Equal(model.EventConnected, env.Type)
	var payload model.ConnectedPayload
	s.Require().NoError(env.DecodeData(&payload))
	s.Require().NotEmpty(payload.ConnectionID)
	return conn, payload.ConnectionID
}

func (s *HandlerSuite) read(conn *websocket.Conn) Envelope {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	env, err := Decode(data)
	s.Require().NoError(err)
	return env
}

func (s *HandlerSuite) TestConnectAssignsID() {
	_, first := s.dial(nil)
	_, second := s.dial(nil)
	s.NotEqual(first, second)
	s.Eventually(func() bool { return s.hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)
}

func (s *HandlerSuite) TestDispatchesInbound() {
	conn, id := s.dial(nil)

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"invite","timestamp":"2025-01-01T12:00:00Z","data":{"targetId":"other"}}`)))

	s.Eventually(func() bool {
		msgs, _, _ := s.dispatcher.snapshot()
		return len(msgs) == 1
	}, time.Second, 10*time.Millisecond)

	msgs, from, _ := s.dispatcher.snapshot()
	s.Equal(model.EventInvite, msgs[0].Type)
	s.Equal(id, from[0])
	var payload model.InvitePayload
	s.Require().NoError(msgs[0].DecodeData(&payload))
	s.Equal(model.ConnectionID("other"), payload.TargetID)
}

func (s *HandlerSuite) TestMalformedFrameGetsError() {
	conn, _ := s.dial(nil)

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	env := s.read(conn)
	s.Equal(model.EventError, env.Type)
	var payload model.ErrorPayload
	s.Require().NoError(env.DecodeData(&payload))
	s.Equal(ErrMalformedMessage.Error(), payload.Reason)

	msgs, _, _ := s.dispatcher.snapshot()
	s.Empty(msgs)
}

func (s *HandlerSuite) TestServerPushReachesClient() {
	conn, id := s.dial(nil)

	s.hub.SendTo(id, model.NewEvent(model.EventTimer, time.Now(), model.TimerPayload{Round: 3, TimeLeft: 9}))

	env := s.read(conn)
	s.Equal(model.EventTimer, env.Type)
	var payload model.TimerPayload
	s.Require().NoError(env.DecodeData(&payload))
	s.Equal(model.TimerPayload{Round: 3, TimeLeft: 9}, payload)
}

func (s *HandlerSuite) TestCloseNotifiesDispatcher() {
	conn, id := s.dial(nil)
	s.Require().NoError(conn.Close())

	s.Eventually(func() bool {
		_, _, disconnected := s.dispatcher.snapshot()
		return len(disconnected) == 1 && disconnected[0] == id
	}, 2*time.Second, 10*time.Millisecond)
	s.Eventually(func() bool { return s.hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func (s *HandlerSuite) TestOriginCheck() {
	header := http.Header{}
	header.Set("Origin", "https://flags.example.com")
	s.dial(header)

	header.Set("Origin", "https://evil.example.com")
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusForbidden, resp.StatusCode)
}
