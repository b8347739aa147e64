package dice

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Slot is the server-assigned seat of a participant within one session.
type Slot int

var ErrMalformedState = errors.New("MALFORMED_UPDATE: game_update payload has an unexpected shape")

// GameState is the server-pushed snapshot. The client never edits one in
// place: every game_update produces a fresh value that replaces the previous.
type GameState struct {
	DiceCountByPlayer      map[Slot]int    `json:"diceCountByPlayer"`
	DiceFacesByPlayer      map[Slot][]Face `json:"diceFacesByPlayer"`
	CurrentBid             *Bid            `json:"currentBid"`
	CurrentPlayerSlot      Slot            `json:"currentPlayerSlot"`
	LastActionWasChallenge bool            `json:"lastActionWasChallenge"`
	PlayerNamesBySlot      map[Slot]string `json:"playerNamesBySlot"`
	ScoresBySlot           map[Slot]int    `json:"scoresBySlot"`
}

// wireState is the game_update payload as the server serializes it.
type wireState struct {
	DiceCount              map[Slot]int    `json:"dice_count"`
	Players                map[Slot][]int  `json:"players"`
	CurrentBid             []int           `json:"current_bid"`
	CurrentPlayer          Slot            `json:"current_player"`
	LastActionWasChallenge bool            `json:"last_action_was_challenge"`
	PlayerNames            map[Slot]string `json:"player_names"`
	Scores                 map[Slot]int    `json:"scores"`
}

// DecodeGameState parses a game_update payload. Face values are kept only
// for localSlot; other slots' dice stay hidden even if the server sent them.
func DecodeGameState(data []byte, localSlot Slot) (GameState, error) {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return GameState{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	if w.DiceCount == nil {
		return GameState{}, fmt.Errorf("%w: missing dice_count", ErrMalformedState)
	}
	for slot, count := range w.DiceCount {
		if count < 0 {
			return GameState{}, fmt.Errorf("%w: slot %d has %d dice", ErrMalformedState, slot, count)
		}
	}

	bid, err := decodeBid(w.CurrentBid)
	if err != nil {
		return GameState{}, err
	}

	faces := map[Slot][]Face{}
	if raw, ok := w.Players[localSlot]; ok {
		own := make([]Face, 0, len(raw))
		for _, v := range raw {
			f := Face(v)
			if !f.Valid() {
				return GameState{}, fmt.Errorf("%w: die value %d", ErrMalformedState, v)
			}
			own = append(own, f)
		}
		faces[localSlot] = own
	}

	s := GameState{
		DiceCountByPlayer:      maps.Clone(w.DiceCount),
		DiceFacesByPlayer:      faces,
		CurrentBid:             bid,
		CurrentPlayerSlot:      w.CurrentPlayer,
		LastActionWasChallenge: w.LastActionWasChallenge,
		PlayerNamesBySlot:      orEmpty(w.PlayerNames),
		ScoresBySlot:           orEmpty(w.Scores),
	}
	return s, nil
}

// decodeBid maps the server's [quantity, face] pair to a Bid. The server
// uses [1,1] for a fresh game and [0,0] after a challenge; both mean no bid.
func decodeBid(pair []int) (*Bid, error) {
	if pair == nil {
		return nil, nil
	}
	if len(pair) != 2 {
		return nil, fmt.Errorf("%w: current_bid has %d elements", ErrMalformedState, len(pair))
	}

	q, f := pair[0], pair[1]
	if (q == 0 && f == 0) || (q == 1 && f == 1) {
		return nil, nil
	}
	if q < 1 || !Face(f).Valid() {
		return nil, fmt.Errorf("%w: current_bid [%d, %d]", ErrMalformedState, q, f)
	}
	return &Bid{Quantity: q, Face: Face(f)}, nil
}

func orEmpty[V any](m map[Slot]V) map[Slot]V {
	if m == nil {
		return map[Slot]V{}
	}
	return maps.Clone(m)
}

// PreviousBid is the bid a new bid has to beat, or nil at the start of a
// round (no bid yet, or the last action was a challenge).
func (s GameState) PreviousBid() *Bid {
	if s.LastActionWasChallenge || s.CurrentBid == nil {
		return nil
	}
	b := *s.CurrentBid
	return &b
}

// Eliminated returns the slots with no dice left, in slot order.
func (s GameState) Eliminated() []Slot {
	var out []Slot
	for slot, count := range s.DiceCountByPlayer {
		if count == 0 {
			out = append(out, slot)
		}
	}
	slices.Sort(out)
	return out
}

// IsOver reports whether any participant has run out of dice.
func (s GameState) IsOver() bool {
	return len(s.Eliminated()) > 0
}

// Winner is the only slot still holding dice once the game is over.
func (s GameState) Winner() (Slot, bool) {
	if !s.IsOver() {
		return 0, false
	}

	var alive []Slot
	for slot, count := range s.DiceCountByPlayer {
		if count > 0 {
			alive = append(alive, slot)
		}
	}
	if len(alive) != 1 {
		return 0, false
	}
	return alive[0], true
}

// NameOf returns the server-provided name for slot, or a generic label.
func (s GameState) NameOf(slot Slot) string {
	if name := s.PlayerNamesBySlot[slot]; name != "" {
		return name
	}
	return fmt.Sprintf("Player %d", slot)
}

// Slots returns every slot the snapshot mentions, sorted.
func (s GameState) Slots() []Slot {
	seen := map[Slot]bool{}
	for slot := range s.DiceCountByPlayer {
		seen[slot] = true
	}
	for slot := range s.PlayerNamesBySlot {
		seen[slot] = true
	}
	for slot := range s.ScoresBySlot {
		seen[slot] = true
	}
	return slices.Sorted(maps.Keys(seen))
}

func (s GameState) Clone() GameState {
	c := s
	c.DiceCountByPlayer = maps.Clone(s.DiceCountByPlayer)
	c.DiceFacesByPlayer = make(map[Slot][]Face, len(s.DiceFacesByPlayer))
	for slot, faces := range s.DiceFacesByPlayer {
		c.DiceFacesByPlayer[slot] = slices.Clone(faces)
	}
	if s.CurrentBid != nil {
		b := *s.CurrentBid
		c.CurrentBid = &b
	}
	c.PlayerNamesBySlot = maps.Clone(s.PlayerNamesBySlot)
	c.ScoresBySlot = maps.Clone(s.ScoresBySlot)
	return c
}

// Equal is structural equality over every field.
func (s GameState) Equal(o GameState) bool {
	if s.CurrentPlayerSlot != o.CurrentPlayerSlot || s.LastActionWasChallenge != o.LastActionWasChallenge {
		return false
	}
	if (s.CurrentBid == nil) != (o.CurrentBid == nil) {
		return false
	}
	if s.CurrentBid != nil && *s.CurrentBid != *o.CurrentBid {
		return false
	}
	return maps.Equal(s.DiceCountByPlayer, o.DiceCountByPlayer) &&
		maps.EqualFunc(s.DiceFacesByPlayer, o.DiceFacesByPlayer, slices.Equal[[]Face]) &&
		maps.Equal(s.PlayerNamesBySlot, o.PlayerNamesBySlot) &&
		maps.Equal(s.ScoresBySlot, o.ScoresBySlot)
}
