package client

import (
	"errors"
	"fmt"

	"liarsdice-client/internal/dice"
)

type ActionKind string

const (
	ActionBid       ActionKind = "bid"
	ActionChallenge ActionKind = "challenge"
)

// Action is a user move: a bid or a challenge of the current bid.
type Action struct {
	Kind ActionKind
	Bid  dice.Bid
}

func PlaceBid(quantity int, face dice.Face) Action {
	return Action{Kind: ActionBid, Bid: dice.Bid{Quantity: quantity, Face: face}}
}

func CallLiar() Action {
	return Action{Kind: ActionChallenge}
}

// Command is the chat text the server parses for this action.
func (a Action) Command() string {
	if a.Kind == ActionChallenge {
		return "challenge"
	}
	return a.Bid.Command()
}

var (
	ErrNotConnected     = errors.New("NOT_CONNECTED: No live connection to the game server")
	ErrGameOver         = errors.New("GAME_OVER: The game has finished")
	ErrNoGameState      = errors.New("NO_GAME: Waiting for the first game update")
	ErrNotYourTurn      = errors.New("NOT_YOUR_TURN: Wait for the opponent to act")
	ErrIllegalBid       = errors.New("ILLEGAL_BID: Bid does not beat the current bid")
	ErrNoBidToChallenge = errors.New("NO_BID_TO_CHALLENGE: Cannot challenge before any bid was made")
	ErrUnknownAction    = errors.New("UNKNOWN_ACTION: Unsupported action")
	ErrChatThrottled    = errors.New("CHAT_THROTTLED: Too many messages, slow down")
)

// CheckAction decides whether a may be transmitted in session s. A nil
// error means the action is legal; nothing is sent otherwise.
func CheckAction(s Session, a Action) error {
	if s.Status == StatusTerminal || s.Finalizer.Latched() {
		return ErrGameOver
	}
	if s.Status != StatusConnected {
		return ErrNotConnected
	}

	state := s.Round.State
	if state == nil {
		return ErrNoGameState
	}
	if !s.IsMyTurn() {
		return ErrNotYourTurn
	}

	prev := state.PreviousBid()
	switch a.Kind {
	case ActionBid:
		if !dice.Follows(prev, a.Bid) {
			if prev == nil {
				return fmt.Errorf("%w: %s is not a valid opening bid", ErrIllegalBid, a.Bid)
			}
			return fmt.Errorf("%w: %s does not beat %s", ErrIllegalBid, a.Bid, *prev)
		}
		return nil

	case ActionChallenge:
		if prev == nil {
			return ErrNoBidToChallenge
		}
		return nil
	}

	return ErrUnknownAction
}

// CheckChat gates free-form chat. It is never gated by turn, but input
// closes for good once the session is terminal.
func CheckChat(s Session) error {
	if s.Status == StatusTerminal || s.Finalizer.Latched() {
		return ErrGameOver
	}
	if s.Status != StatusConnected {
		return ErrNotConnected
	}
	return nil
}

// Affordances tells a UI which controls to enable in the current session.
type Affordances struct {
	CanAct       bool      `json:"canAct"`
	CanChallenge bool      `json:"canChallenge"`
	Previous     *dice.Bid `json:"previous"`
}

func AffordancesFor(s Session) Affordances {
	a := Affordances{}
	if s.Round.State != nil {
		a.Previous = s.Round.State.PreviousBid()
	}
	a.CanAct = CheckAction(s, PlaceBid(dice.MaxQuantity, dice.Six)) == nil
	a.CanChallenge = CheckAction(s, CallLiar()) == nil
	return a
}

func (a Affordances) QuantityEnabled(quantity int) bool {
	return a.CanAct && dice.CanSelectQuantity(a.Previous, quantity)
}

func (a Affordances) FaceEnabled(quantity int, face dice.Face) bool {
	return a.CanAct && dice.CanSelectFace(a.Previous, quantity, face)
}
