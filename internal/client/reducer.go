package client

import "liarsdice-client/internal/dice"

// Round is the reducer's output: the latest authoritative snapshot plus the
// terminal latch set by game_over.
type Round struct {
	State    *dice.GameState
	Terminal bool
	Winner   string
}

// Reduce folds one event into r. It is pure and replay-safe: game_update
// replaces the snapshot wholesale, so re-delivering a payload leaves the
// round structurally unchanged. Events that carry no game state pass
// through untouched.
func Reduce(r Round, ev Event) Round {
	switch e := ev.(type) {
	case GameUpdated:
		s := e.State.Clone()
		r.State = &s

	case GameOver:
		if !r.Terminal {
			r.Terminal = true
			r.Winner = e.Winner
		}
	}
	return r
}

// ReduceAll replays events in order from an empty round.
func ReduceAll(events []Event) Round {
	var r Round
	for _, ev := range events {
		r = Reduce(r, ev)
	}
	return r
}
