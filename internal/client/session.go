package client

import (
	"time"

	"liarsdice-client/internal/dice"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusTerminal     Status = "terminal"
)

// Profile is what the client knows about its own user.
type Profile struct {
	UserName       string
	UserID         string
	AvatarURL      string
	FallbackAvatar string
	AIAvatarBase   string
	LocalSlot      dice.Slot
}

// Session owns everything one transport epoch accumulates. Values are
// immutable in practice: Step returns a new Session and shares only data
// that is itself copy-on-write.
type Session struct {
	Epoch        uint64
	RoomKey      string
	Status       Status
	TransportUp  bool
	LocalID      string
	Round        Round
	Identities   IdentityMap
	Log          MessageLog
	Finalizer    Finalizer
	LastError    error
	LastActivity time.Time
	profile      Profile
}

func NewSession(epoch uint64, roomKey string, p Profile) Session {
	return Session{
		Epoch:      epoch,
		RoomKey:    NormalizeRoomKey(roomKey),
		Status:     StatusDisconnected,
		Identities: NewIdentityMap(),
		profile:    p,
	}
}

func (s Session) Profile() Profile {
	return s.profile
}

func (s Session) hints() IdentityHints {
	return IdentityHints{
		LocalName:      s.profile.UserName,
		LocalAvatar:    s.profile.AvatarURL,
		RoomKey:        s.RoomKey,
		AIAvatarBase:   s.profile.AIAvatarBase,
		FallbackAvatar: s.profile.FallbackAvatar,
	}
}

// Connecting marks the session as dialing.
func (s Session) Connecting() Session {
	if s.Status == StatusDisconnected {
		s.Status = StatusConnecting
	}
	return s
}

// Step applies one inbound event. The returned result is non-nil exactly
// once per session, when the finalizer latches.
func Step(s Session, ev Event) (Session, *MatchResult) {
	switch e := ev.(type) {
	case Connected:
		s.TransportUp = true
		s.LocalID = e.ParticipantID
		s.Identities = s.Identities.RegisterLocal(e.ParticipantID, s.hints())
		s.LastError = nil
		if s.Status != StatusTerminal {
			s.Status = StatusConnected
		}
		return s, nil

	case Disconnected:
		s.TransportUp = false
		s.LastError = e.Err
		if s.Status != StatusTerminal {
			s.Status = StatusDisconnected
		}
		return s, nil

	case Joined:
		s.Identities = s.Identities.RegisterJoin(e.ParticipantID, s.hints())
		s.Log = s.Log.Append(Message{Kind: MessageJoin, ParticipantID: e.ParticipantID})
		return s, nil

	case ChatReceived:
		s.Log = s.Log.Append(Message{Kind: MessageChat, ParticipantID: e.ParticipantID, Text: e.Text})
		return s, nil
	}

	s.Round = Reduce(s.Round, ev)

	var res *MatchResult
	s.Finalizer, res = s.Finalizer.Observe(s.Round)
	if s.Finalizer.Latched() {
		s.Status = StatusTerminal
	}
	return s, res
}

// Replay folds events into a fresh session, the way the dispatcher does
// one at a time. Results after the first are impossible by construction.
func Replay(s Session, events []Event) (Session, *MatchResult) {
	var first *MatchResult
	for _, ev := range events {
		var res *MatchResult
		s, res = Step(s, ev)
		if res != nil && first == nil {
			first = res
		}
	}
	return s, first
}

// IsMyTurn reports whether the latest snapshot gives the turn to the local
// slot.
func (s Session) IsMyTurn() bool {
	return s.Round.State != nil && s.Round.State.CurrentPlayerSlot == s.profile.LocalSlot
}

// Report builds the external match report for a latched result.
func (s Session) Report(res MatchResult, reportID string) MatchReport {
	return MatchReport{
		UserName:       s.profile.UserName,
		UserScore:      res.Scores[s.profile.LocalSlot],
		RoomSocketID:   s.LocalID,
		AIBotType:      s.RoomKey,
		UserID:         s.profile.UserID,
		ProfilePicture: s.profile.AvatarURL,
		Winner:         res.Winner,
		ReportID:       reportID,
	}
}
