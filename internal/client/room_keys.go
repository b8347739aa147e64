package client

import (
	"errors"
	"strings"
)

// Room keys select the opponent difficulty; the server derives a unique room
// from the key on every connection.
var roomKeys = []string{"tutorial", "easy", "medium", "hard"}

var aiNames = map[string]string{
	"tutorial": "Tutor Bot",
	"easy":     "Easy Bot",
	"medium":   "Medium Bot",
	"hard":     "Hard Bot",
}

// AIPrefix marks participant ids that belong to the server's AI opponent.
const AIPrefix = "ai_"

var ErrInvalidRoomKey = errors.New("INVALID_ROOM_KEY: Room key must be one of tutorial, easy, medium, hard")

// NormalizeRoomKey converts a room key to its canonical form: trimmed and
// lowercase. Users may type "Hard" or " easy", the server only knows the
// lowercase keys.
func NormalizeRoomKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// ValidateRoomKey checks that key, once normalized, names one of the
// difficulty rooms the server hosts.
// Returns ErrInvalidRoomKey otherwise.
func ValidateRoomKey(key string) error {
	key = NormalizeRoomKey(key)
	for _, k := range roomKeys {
		if k == key {
			return nil
		}
	}
	return ErrInvalidRoomKey
}

// AIName is the opponent label announced in the handshake and shown for AI
// participants of a room with this key.
func AIName(roomKey string) string {
	if name, ok := aiNames[NormalizeRoomKey(roomKey)]; ok {
		return name
	}
	return "AI"
}

// AIAvatar is the avatar for the AI opponent of roomKey under base.
func AIAvatar(base, roomKey string) string {
	return strings.TrimRight(base, "/") + "/ai-" + NormalizeRoomKey(roomKey) + ".png"
}

// IsAIParticipant reports whether participantID belongs to the server's AI
// opponent. AI ids carry AIPrefix; human ids are opaque socket ids.
func IsAIParticipant(participantID string) bool {
	return strings.HasPrefix(participantID, AIPrefix)
}
