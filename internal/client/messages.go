package client

import "encoding/json"

// ClientMessage is what this client writes to the socket.
type ClientMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServerMessage is every frame the server pushes; Payload is decoded per Type.
type ServerMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
