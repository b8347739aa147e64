package client

import "slices"

type MessageKind string

const (
	MessageJoin MessageKind = "join"
	MessageChat MessageKind = "chat"
)

type Message struct {
	Kind          MessageKind `json:"kind"`
	ParticipantID string      `json:"participantId"`
	Text          string      `json:"text,omitempty"`
}

// MessageLog is the chat/join log in arrival order. Duplicates are kept:
// the log carries no game-state authority.
type MessageLog struct {
	entries []Message
}

// Append returns a new log; the receiver is left untouched.
func (l MessageLog) Append(m Message) MessageLog {
	return MessageLog{entries: append(slices.Clip(l.entries), m)}
}

func (l MessageLog) Len() int {
	return len(l.entries)
}

func (l MessageLog) Entries() []Message {
	return slices.Clone(l.entries)
}
