package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"liarsdice-client/internal/dice"
)

// Event is one inbound session event, already decoded from the wire.
type Event interface{ isEvent() }

// Connected is the transport-level connect: the server has assigned this
// client its participant id.
type Connected struct {
	ParticipantID string
}

func (Connected) isEvent() {}

// Disconnected ends the transport. Err is nil for a clean close.
type Disconnected struct {
	Err error
}

func (Disconnected) isEvent() {}

type Joined struct {
	ParticipantID string
}

func (Joined) isEvent() {}

type ChatReceived struct {
	ParticipantID string
	Text          string
}

func (ChatReceived) isEvent() {}

type GameUpdated struct {
	State dice.GameState
}

func (GameUpdated) isEvent() {}

type GameOver struct {
	Winner string
}

func (GameOver) isEvent() {}

// Envelope tags an event with the epoch of the transport that produced it.
type Envelope struct {
	Epoch uint64
	Event Event
}

var ErrUnknownMessageType = errors.New("INVALID_MESSAGE_TYPE: unknown server message type")

// decodeEvent turns one server frame into an Event. game_update payloads
// are decoded relative to localSlot so opponent dice are dropped here.
func decodeEvent(msg ServerMessage, localSlot dice.Slot) (Event, error) {
	if err := ValidateMessageType(msg.Type); err != nil {
		return nil, err
	}

	switch msg.Type {
	case "connect":
		var p ConnectNotification
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid connect payload: %w", err)
		}
		if p.ParticipantID == "" {
			return nil, errors.New("invalid connect payload: empty participantId")
		}
		return Connected{ParticipantID: p.ParticipantID}, nil

	case "disconnect":
		return Disconnected{}, nil

	case "join":
		var p JoinNotification
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid join payload: %w", err)
		}
		if p.SID == "" {
			return nil, errors.New("invalid join payload: empty sid")
		}
		return Joined{ParticipantID: p.SID}, nil

	case "chat":
		var p ChatNotification
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid chat payload: %w", err)
		}
		return ChatReceived{ParticipantID: p.SID, Text: p.Message}, nil

	case "game_update":
		state, err := dice.DecodeGameState(msg.Payload, localSlot)
		if err != nil {
			return nil, err
		}
		return GameUpdated{State: state}, nil

	case "game_over":
		var p GameOverNotification
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid game_over payload: %w", err)
		}
		return GameOver{Winner: p.Winner}, nil
	}

	return nil, fmt.Errorf("%w '%s'", ErrUnknownMessageType, msg.Type)
}
