package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// ErrMalformedMessage is returned for frames that are not a valid envelope
var ErrMalformedMessage = errors.New("malformed message")

// Envelope is the wire frame for every event in both directions
type Envelope struct {
	Type      model.EventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type      model.EventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      any             `json:"data"`
}

// Encode serialises an event into an envelope frame
func Encode(evt model.Event) ([]byte, error) {
	return json.Marshal(outbound{
		Type:      evt.Type,
		Timestamp: evt.Timestamp.UTC(),
		Data:      evt.Payload,
	})
}

// Decode parses an envelope frame
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, errors.Join(ErrMalformedMessage, err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMalformedMessage
	}
	return env, nil
}

// DecodeData unmarshals the envelope payload into v. A missing payload
// leaves v untouched.
func (e Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return errors.Join(ErrMalformedMessage, err)
	}
	return nil
}
