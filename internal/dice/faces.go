package dice

import (
	"fmt"
	"strconv"
	"strings"
)

type Face int

const (
	NoFace Face = iota
	One
	Two
	Three
	Four
	Five
	Six
)

// Faces in bidding order, lowest rank first.
var Faces = []Face{One, Two, Three, Four, Five, Six}

var faceSymbol = map[Face]string{
	One:   "⚀",
	Two:   "⚁",
	Three: "⚂",
	Four:  "⚃",
	Five:  "⚄",
	Six:   "⚅",
}

func (f Face) String() string {
	if s, ok := faceSymbol[f]; ok {
		return s
	}
	return "?"
}

func (f Face) Valid() bool {
	return f >= One && f <= Six
}

// Rank is the face's position in the six-symbol ordering, 1 through 6.
// Invalid faces rank 0 and never outrank anything.
func (f Face) Rank() int {
	if !f.Valid() {
		return 0
	}
	return int(f)
}

// IsJoker reports whether the face counts toward every other face when the
// server tallies a challenge.
func (f Face) IsJoker() bool {
	return f == One
}

// ParseFace accepts either the face number ("1".."6") or its die symbol.
func ParseFace(s string) (Face, error) {
	s = strings.TrimSpace(s)
	for face, symbol := range faceSymbol {
		if s == symbol {
			return face, nil
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return NoFace, fmt.Errorf("INVALID_FACE: %q is not a die face", s)
	}
	face := Face(n)
	if !face.Valid() {
		return NoFace, fmt.Errorf("INVALID_FACE: %d is outside 1-6", n)
	}
	return face, nil
}
