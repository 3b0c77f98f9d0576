package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/response"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/ws"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintEvent outputs a websocket envelope. JSON output is one envelope per line.
func (o *Output) PrintEvent(env ws.Envelope) {
	if o.format == "json" {
		data, _ := json.Marshal(env)
		fmt.Println(string(data))
		return
	}
	fmt.Println(formatEvent(env))
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printHealth(v)
	case response.FlagList:
		o.printFlagList(v)
	case response.Flag:
		o.printFlag(v)
	case response.Roster:
		o.printRoster(v)
	case response.GuestToken:
		fmt.Printf("Guest: %s\n", v.DisplayName)
		fmt.Printf("Token saved to %s\n", cfg.TokenFile)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printHealth(h response.Health) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Flags: %d\n", h.Flags)
	fmt.Printf("Online: %d (%d connections)\n", h.Online, h.Connections)
	fmt.Printf("Active duels: %d\n", h.Duels)
}

func (o *Output) printFlagList(l response.FlagList) {
	fmt.Printf("%d flags\n", l.Count)
	for _, f := range l.Flags {
		fmt.Printf("  %-24s %s\n", f.Code, f.ImagePath)
	}
}

func (o *Output) printFlag(f response.Flag) {
	fmt.Printf("Code: %s\n", f.Code)
	fmt.Printf("Image: %s\n", f.ImagePath)
	if f.Hints == nil {
		return
	}
	h := f.Hints
	if h.Population != "" {
		fmt.Printf("Population: %s\n", h.Population)
	}
	if h.Capital != "" {
		fmt.Printf("Capital: %s\n", h.Capital)
	}
	if h.WordSize > 0 {
		fmt.Printf("Word size: %d\n", h.WordSize)
	}
	if h.WordCount != nil {
		fmt.Printf("Word count: %d\n", *h.WordCount)
	}
	if h.LastLetter != "" {
		fmt.Printf("Last letter: %s\n", h.LastLetter)
	}
}

func (o *Output) printRoster(r response.Roster) {
	if r.Count == 0 {
		fmt.Println("Nobody online")
		return
	}
	fmt.Printf("%d online\n", r.Count)
	for _, p := range r.Players {
		kind := "member"
		if p.IsGuest {
			kind = "guest"
		}
		fmt.Printf("  %s  %s (%s, %d wins)\n", p.ConnectionID, p.DisplayName, kind, p.Wins)
	}
}

// formatEvent renders an envelope as a single human readable line
func formatEvent(env ws.Envelope) string {
	ts := env.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	prefix := fmt.Sprintf("[%s] %s", ts.Local().Format("15:04:05"), env.Type)

	switch env.Type {
	case model.EventConnected:
		var p model.ConnectedPayload
		if env.DecodeData(&p) == nil {
			return fmt.Sprintf("%s: you are %s", prefix, p.ConnectionID)
		}
	case model.EventOnlineUsers:
		var users []model.Profile
		if env.DecodeData(&users) == nil {
			names := make([]string, 0, len(users))
			for _, u := range users {
				names = append(names, fmt.Sprintf("%s (%s)", u.DisplayName, u.ConnectionID))
			}
			return fmt.Sprintf("%s: %s", prefix, strings.Join(names, ", "))
		}
	case model.EventStartDuel:
		var p model.StartDuelPayload
		if env.DecodeData(&p) == nil {
			return fmt.Sprintf("%s: vs %s, %d rounds of %ds (session %s)", prefix, p.Opponent, p.Rounds, p.RoundDuration, p.SessionID)
		}
	case model.EventTimer:
		var p model.TimerPayload
		if env.DecodeData(&p) == nil {
			return fmt.Sprintf("%s: round %d, %ds left", prefix, p.Round, p.TimeLeft)
		}
	case model.EventHintSelected:
		var p model.HintSelectedPayload
		if env.DecodeData(&p) == nil {
			return fmt.Sprintf("%s: #%d %s", prefix, p.RevealedCount, p.Hint)
		}
	case model.EventScoreUpdate:
		var p model.ScoreUpdatePayload
		if env.DecodeData(&p) == nil {
			return fmt.Sprintf("%s: total %d", prefix, p.TotalScore)
		}
	case model.EventGameOver:
		var p model.GameOverPayload
		if env.DecodeData(&p) == nil {
			return fmt.Sprintf("%s: %s %d - %d %s", prefix, p.You.Name, p.You.Score, p.Opponent.Score, p.Opponent.Name)
		}
	}

	data := strings.TrimSpace(string(env.Data))
	if data == "" || data == "null" {
		return prefix
	}
	return prefix + ": " + data
}
