package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"liarsdice-client/internal/dice"
)

type InputKind string

const (
	InputAction InputKind = "action"
	InputSay    InputKind = "say"
	InputAgain  InputKind = "again"
	InputQuit   InputKind = "quit"
)

// Input is one parsed line of user input.
type Input struct {
	Kind   InputKind
	Action Action
	Text   string
	Room   string
}

var ErrInvalidInput = errors.New("INVALID_INPUT: Unrecognized command")

// ParseInput reads a single user line:
//
//	bid <quantity> <face>
//	challenge | liar
//	say <text>
//	again [room]
//	quit
func ParseInput(line string) (Input, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Input{}, ErrInvalidInput
	}

	switch strings.ToLower(fields[0]) {
	case "bid":
		if len(fields) != 3 {
			return Input{}, fmt.Errorf("%w: usage: bid <quantity> <face>", ErrInvalidInput)
		}
		q, err := strconv.Atoi(fields[1])
		if err != nil {
			return Input{}, fmt.Errorf("%w: quantity %q is not a number", ErrInvalidInput, fields[1])
		}
		f, err := dice.ParseFace(fields[2])
		if err != nil {
			return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return Input{Kind: InputAction, Action: PlaceBid(q, f)}, nil

	case "challenge", "liar":
		return Input{Kind: InputAction, Action: CallLiar()}, nil

	case "say":
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		if text == "" {
			return Input{}, fmt.Errorf("%w: usage: say <text>", ErrInvalidInput)
		}
		return Input{Kind: InputSay, Text: text}, nil

	case "again":
		in := Input{Kind: InputAgain}
		if len(fields) > 1 {
			in.Room = NormalizeRoomKey(fields[1])
		}
		return in, nil

	case "quit", "exit":
		return Input{Kind: InputQuit}, nil
	}

	return Input{}, fmt.Errorf("%w '%s'", ErrInvalidInput, fields[0])
}

// chatCommand reports whether the server reads text as a game move rather
// than free-form chat: any message starting with "bid", or exactly
// "challenge". A "bid" message that does not parse is rejected here, since
// the server would consume it as a failed move.
func chatCommand(text string) (Action, bool, error) {
	switch {
	case text == "challenge":
		return CallLiar(), true, nil
	case strings.HasPrefix(text, "bid"):
		in, err := ParseInput(text)
		if err != nil {
			return Action{}, true, err
		}
		if in.Kind != InputAction || in.Action.Kind != ActionBid {
			return Action{}, true, fmt.Errorf("%w: usage: bid <quantity> <face>", ErrInvalidInput)
		}
		return in.Action, true, nil
	}
	return Action{}, false, nil
}
