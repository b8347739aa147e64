package client

import "slices"

type Identity struct {
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
	AvatarURL     string `json:"avatarUrl"`
	IsAI          bool   `json:"isAI"`
}

// IdentityHints is the locally known information used to label
// participants the server only names by id.
type IdentityHints struct {
	LocalName      string
	LocalAvatar    string
	RoomKey        string
	AIAvatarBase   string
	FallbackAvatar string
}

// IdentityMap maps participant ids to display identities. It is append-only
// for a session and copy-on-write: every Register returns a new map and
// never touches the receiver.
type IdentityMap struct {
	entries map[string]Identity
	order   []string
}

func NewIdentityMap() IdentityMap {
	return IdentityMap{entries: map[string]Identity{}}
}

// Register adds id unless it is already known. Entries are never replaced.
func (m IdentityMap) Register(id Identity) IdentityMap {
	if _, ok := m.entries[id.ParticipantID]; ok {
		return m
	}

	next := IdentityMap{
		entries: make(map[string]Identity, len(m.entries)+1),
		order:   append(slices.Clip(m.order), id.ParticipantID),
	}
	for k, v := range m.entries {
		next.entries[k] = v
	}
	next.entries[id.ParticipantID] = id
	return next
}

// RegisterLocal registers this client under its locally known name.
func (m IdentityMap) RegisterLocal(participantID string, h IdentityHints) IdentityMap {
	return m.Register(Identity{
		ParticipantID: participantID,
		DisplayName:   h.LocalName,
		AvatarURL:     h.LocalAvatar,
	})
}

// RegisterJoin registers a participant announced by a join event. AI ids get
// the room's synthetic opponent identity; anyone else is a remote human
// labeled from the tail of the id.
func (m IdentityMap) RegisterJoin(participantID string, h IdentityHints) IdentityMap {
	if IsAIParticipant(participantID) {
		return m.Register(Identity{
			ParticipantID: participantID,
			DisplayName:   AIName(h.RoomKey),
			AvatarURL:     AIAvatar(h.AIAvatarBase, h.RoomKey),
			IsAI:          true,
		})
	}

	return m.Register(Identity{
		ParticipantID: participantID,
		DisplayName:   HumanLabel(participantID),
		AvatarURL:     h.FallbackAvatar,
	})
}

// Resolve never fails: an unknown id is displayed as itself, with no
// avatar.
func (m IdentityMap) Resolve(participantID string) Identity {
	if id, ok := m.entries[participantID]; ok {
		return id
	}
	return Identity{
		ParticipantID: participantID,
		DisplayName:   participantID,
	}
}

func (m IdentityMap) Known(participantID string) bool {
	_, ok := m.entries[participantID]
	return ok
}

func (m IdentityMap) Len() int {
	return len(m.order)
}

// All returns identities in registration order.
func (m IdentityMap) All() []Identity {
	out := make([]Identity, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out
}

// HumanLabel derives a display name for a remote human from the last four
// characters of its id.
func HumanLabel(participantID string) string {
	tail := []rune(participantID)
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return "Player " + string(tail)
}
