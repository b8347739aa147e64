package client

import (
	"maps"

	"liarsdice-client/internal/dice"
)

// MatchResult is the finished match as seen from the latched snapshot.
type MatchResult struct {
	Winner     string
	WinnerSlot dice.Slot // 0 when only the game_over event named the winner
	Scores     map[dice.Slot]int
}

// Finalizer latches the first terminal signal of a session: a snapshot in
// which some participant has no dice left, or an explicit game_over.
type Finalizer struct {
	latched bool
	result  MatchResult
}

// Observe inspects a reducer output. It returns the result exactly once,
// on the call that latches; every later call returns nil.
func (f Finalizer) Observe(r Round) (Finalizer, *MatchResult) {
	if f.latched {
		return f, nil
	}

	overBySnapshot := r.State != nil && r.State.IsOver()
	if !r.Terminal && !overBySnapshot {
		return f, nil
	}

	res := MatchResult{Winner: r.Winner, Scores: map[dice.Slot]int{}}
	if r.State != nil {
		res.Scores = maps.Clone(r.State.ScoresBySlot)
		if slot, ok := r.State.Winner(); ok {
			res.WinnerSlot = slot
			if res.Winner == "" {
				res.Winner = r.State.NameOf(slot)
			}
		}
	}

	f.latched = true
	f.result = res
	out := res
	return f, &out
}

func (f Finalizer) Latched() bool {
	return f.latched
}

// Result is the latched result; ok is false until the finalizer latches.
func (f Finalizer) Result() (MatchResult, bool) {
	return f.result, f.latched
}
