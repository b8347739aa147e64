package dice

import "fmt"

// MaxQuantity is the total number of dice on the table at the start of a
// game (two players with five dice each). No bid can claim more.
const MaxQuantity = 10

// Bid claims that at least Quantity dice on the table show Face.
type Bid struct {
	Quantity int  `json:"quantity"`
	Face     Face `json:"face"`
}

func (b Bid) String() string {
	return fmt.Sprintf("%d × %s", b.Quantity, b.Face)
}

// Command renders the bid in the chat command form the server parses.
func (b Bid) Command() string {
	return fmt.Sprintf("bid %d %d", b.Quantity, int(b.Face))
}

/*
 * Ordering
 *
 * prev == nil means the round has no bid yet. Every function here is a pure
 * predicate; the action gate uses them both to disable controls and to block
 * submission.
 */

// CanSelectQuantity reports whether quantity may be picked given the
// previous bid. Only quantities strictly below the previous one are
// disabled; the equal quantity stays selectable so a higher face can be bid.
func CanSelectQuantity(prev *Bid, quantity int) bool {
	if quantity < 1 || quantity > MaxQuantity {
		return false
	}
	if prev == nil {
		return true
	}
	return quantity >= prev.Quantity
}

// CanSelectFace reports whether face may be picked once quantity has been
// chosen.
func CanSelectFace(prev *Bid, quantity int, face Face) bool {
	if !face.Valid() {
		return false
	}
	if prev == nil {
		return true
	}
	if quantity > prev.Quantity {
		return true
	}
	return quantity == prev.Quantity && face.Rank() > prev.Face.Rank()
}

// Follows reports whether next is a legal bid after prev.
func Follows(prev *Bid, next Bid) bool {
	return CanSelectQuantity(prev, next.Quantity) && CanSelectFace(prev, next.Quantity, next.Face)
}
