package client

import (
	"time"

	"liarsdice-client/internal/dice"
)

// View is a render-ready snapshot of a session. It shares nothing mutable
// with the session it was taken from.
type View struct {
	Epoch        uint64          `json:"epoch"`
	RoomKey      string          `json:"roomKey"`
	Status       Status          `json:"status"`
	Connected    bool            `json:"connected"`
	LocalID      string          `json:"localId"`
	State        *dice.GameState `json:"state"`
	Identities   []Identity      `json:"identities"`
	Messages     []Message       `json:"messages"`
	Terminal     bool            `json:"terminal"`
	Winner       string          `json:"winner,omitempty"`
	MyTurn       bool            `json:"myTurn"`
	Controls     Affordances     `json:"controls"`
	Quantities   map[int]bool    `json:"quantities"`
	LastError    string          `json:"lastError,omitempty"`
	LastActivity time.Time       `json:"lastActivity"`
}

func (s Session) View() View {
	v := View{
		Epoch:        s.Epoch,
		RoomKey:      s.RoomKey,
		Status:       s.Status,
		Connected:    s.TransportUp,
		LocalID:      s.LocalID,
		Identities:   s.Identities.All(),
		Messages:     s.Log.Entries(),
		Terminal:     s.Status == StatusTerminal,
		MyTurn:       s.IsMyTurn(),
		Controls:     AffordancesFor(s),
		Quantities:   make(map[int]bool, dice.MaxQuantity),
		LastActivity: s.LastActivity,
	}

	if s.Round.State != nil {
		st := s.Round.State.Clone()
		v.State = &st
	}
	if res, ok := s.Finalizer.Result(); ok {
		v.Winner = res.Winner
	}
	if s.LastError != nil {
		v.LastError = s.LastError.Error()
	}

	for q := 1; q <= dice.MaxQuantity; q++ {
		v.Quantities[q] = v.Controls.QuantityEnabled(q)
	}
	return v
}

// FaceEnabled reports whether face is selectable once quantity is chosen.
func (v View) FaceEnabled(quantity int, face dice.Face) bool {
	return v.Controls.FaceEnabled(quantity, face)
}

// Name resolves a participant id to its display name.
func (v View) Name(participantID string) string {
	for _, id := range v.Identities {
		if id.ParticipantID == participantID {
			return id.DisplayName
		}
	}
	return participantID
}

func (c *Controller) view() View {
	return c.session.View()
}
