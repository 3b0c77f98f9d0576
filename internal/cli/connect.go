package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/ws"
)

var errQuit = errors.New("quit")

func newConnectCmd() *cobra.Command {
	var name string
	var exitAfter time.Duration

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Join the lobby over the websocket and play duels",
		Long: `Connect to the server websocket, register, and stream events.

Commands are read from stdin, one per line:
  invite <connectionId>                  Invite an online player
  accept <connectionId>                  Accept an invite from that player
  join [<sessionId> <participantId>]     Rejoin a running duel
  hint                                   Request a hint for the current round
  guess <country>                        Submit a guess for the current round
  quit                                   Disconnect

The saved token (see "flagduel guest") is sent with the register event.
Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runConnect(ctx, name, exitAfter)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name to register with")
	cmd.Flags().DurationVar(&exitAfter, "exit-after", 0, "Disconnect after this long (0 stays connected)")

	return cmd
}

func runConnect(ctx context.Context, name string, exitAfter time.Duration) error {
	url, err := client.WebsocketURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	out := NewOutput(cfg.Output)
	state := &duelState{}

	// Only this goroutine writes to conn
	send := func(eventType model.EventType, payload any) error {
		frame, err := ws.Encode(model.NewEvent(eventType, time.Now(), payload))
		if err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, frame)
	}
	closeConn := func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}

	register := model.RegisterPayload{
		Token:    cfg.Token,
		Username: name,
		Guest:    cfg.Token == "",
	}
	if err := send(model.EventRegister, register); err != nil {
		return fmt.Errorf("register failed: %w", err)
	}

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			env, err := ws.Decode(data)
			if err != nil {
				if cfg.Verbose {
					out.PrintError(err)
				}
				continue
			}
			state.observe(env)
			out.PrintEvent(env)
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	var deadline <-chan time.Time
	if exitAfter > 0 {
		timer := time.NewTimer(exitAfter)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			closeConn()
			return nil

		case <-deadline:
			closeConn()
			return nil

		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)

		case line, ok := <-lines:
			if !ok {
				// stdin closed; keep streaming events
				lines = nil
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			eventType, payload, err := state.command(line)
			if errors.Is(err, errQuit) {
				closeConn()
				return nil
			}
			if err != nil {
				out.PrintError(err)
				continue
			}
			if err := send(eventType, payload); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

// duelState tracks the ids and round progress needed to address duel events
type duelState struct {
	mu            sync.Mutex
	connectionID  model.ConnectionID
	sessionID     model.SessionID
	participantID model.ParticipantID
	round         int
	timeLeft      int
	hintsUsed     int
}

// observe updates the state from an inbound event
func (s *duelState) observe(env ws.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch env.Type {
	case model.EventConnected:
		var p model.ConnectedPayload
		if env.DecodeData(&p) == nil {
			s.connectionID = p.ConnectionID
		}
	case model.EventStartDuel:
		var p model.StartDuelPayload
		if env.DecodeData(&p) == nil {
			s.sessionID = p.SessionID
			s.participantID = p.ParticipantID
			s.round = 1
			s.timeLeft = p.RoundDuration
			s.hintsUsed = 0
		}
	case model.EventTimer:
		var p model.TimerPayload
		if env.DecodeData(&p) == nil {
			if p.Round != s.round {
				s.hintsUsed = 0
			}
			s.round = p.Round
			s.timeLeft = p.TimeLeft
		}
	case model.EventHintSelected:
		var p model.HintSelectedPayload
		if env.DecodeData(&p) == nil {
			s.hintsUsed = p.RevealedCount
		}
	case model.EventRehydrateState:
		var p model.RehydratePayload
		if env.DecodeData(&p) == nil {
			s.hintsUsed = len(p.RevealedHintsThisRound)
		}
	case model.EventGameOver:
		s.sessionID = ""
		s.participantID = ""
		s.round = 0
		s.timeLeft = 0
		s.hintsUsed = 0
	}
}

// command turns a line of user input into an outbound event
func (s *duelState) command(line string) (model.EventType, any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, errors.New("empty command")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return "", nil, errQuit

	case "invite":
		if len(fields) != 2 {
			return "", nil, errors.New("usage: invite <connectionId>")
		}
		return model.EventInvite, model.InvitePayload{TargetID: model.ConnectionID(fields[1])}, nil

	case "accept":
		if len(fields) != 2 {
			return "", nil, errors.New("usage: accept <connectionId>")
		}
		return model.EventAcceptInvite, model.AcceptInvitePayload{InviterID: model.ConnectionID(fields[1])}, nil

	case "join":
		switch len(fields) {
		case 1:
			if s.sessionID == "" {
				return "", nil, errors.New("no duel to join; use: join <sessionId> <participantId>")
			}
		case 3:
			s.sessionID = model.SessionID(fields[1])
			s.participantID = model.ParticipantID(fields[2])
		default:
			return "", nil, errors.New("usage: join [<sessionId> <participantId>]")
		}
		return model.EventJoinSession, model.JoinSessionPayload{
			SessionID:     s.sessionID,
			ParticipantID: s.participantID,
		}, nil

	case "hint":
		if s.sessionID == "" {
			return "", nil, errors.New("not in a duel")
		}
		return model.EventRequestHint, model.RequestHintPayload{SessionID: s.sessionID, Round: s.round}, nil

	case "guess":
		if s.sessionID == "" {
			return "", nil, errors.New("not in a duel")
		}
		if len(fields) < 2 {
			return "", nil, errors.New("usage: guess <country>")
		}
		return model.EventSubmitGuess, model.SubmitGuessPayload{
			SessionID: s.sessionID,
			Round:     s.round,
			Guess:     strings.Join(fields[1:], " "),
			HintsUsed: s.hintsUsed,
			TimeLeft:  float64(s.timeLeft),
		}, nil

	default:
		return "", nil, fmt.Errorf("unknown command %q", fields[0])
	}
}
