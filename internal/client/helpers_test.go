package client

import (
	"encoding/json"

	"liarsdice-client/internal/dice"
)

func testProfile() Profile {
	return Profile{
		UserName:       "Alice",
		UserID:         "kinde_123",
		AvatarURL:      "https://cdn.example/alice.png",
		FallbackAvatar: "/avatars/default.png",
		AIAvatarBase:   "/avatars",
		LocalSlot:      1,
	}
}

func bidOf(q int, f dice.Face) *dice.Bid {
	return &dice.Bid{Quantity: q, Face: f}
}

func stateOf(current dice.Slot, bid *dice.Bid, counts map[dice.Slot]int) dice.GameState {
	return dice.GameState{
		DiceCountByPlayer: counts,
		DiceFacesByPlayer: map[dice.Slot][]dice.Face{1: {dice.One, dice.Four, dice.Four}},
		CurrentBid:        bid,
		CurrentPlayerSlot: current,
		PlayerNamesBySlot: map[dice.Slot]string{1: "Alice", 2: "Easy Bot"},
		ScoresBySlot:      map[dice.Slot]int{1: 0, 2: 0},
	}
}

// connectedSession is a session that has completed the connect event.
func connectedSession() Session {
	s := NewSession(1, "easy", testProfile())
	s, _ = Step(s, Connected{ParticipantID: "sid-local-0001"})
	return s
}

// playingSession is connected and has one snapshot where it is slot 1's turn.
func playingSession(bid *dice.Bid) Session {
	s := connectedSession()
	s, _ = Step(s, GameUpdated{State: stateOf(1, bid, map[dice.Slot]int{1: 5, 2: 5})})
	return s
}

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
