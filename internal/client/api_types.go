package client

// ============================================================================
// HANDSHAKE (player_names, client -> server)
// ============================================================================
type PlayerNamesRequest struct {
	UserName string `json:"userName"`
	AIName   string `json:"aiName"`
}

// ============================================================================
// CONNECT (connect, server -> client)
// ============================================================================
type ConnectNotification struct {
	ParticipantID string `json:"participantId"`
}

// ============================================================================
// JOIN (join broadcast)
// ============================================================================
type JoinNotification struct {
	SID string `json:"sid"`
}

// ============================================================================
// CHAT (chat broadcast)
// ============================================================================
type ChatNotification struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

// ============================================================================
// GAME OVER (game_over broadcast)
// ============================================================================
type GameOverNotification struct {
	Winner string `json:"winner"`
}

// ============================================================================
// MATCH REPORT (POST /highscores)
// ============================================================================
type MatchReport struct {
	UserName       string `json:"user_name"`
	UserScore      int    `json:"user_score"`
	RoomSocketID   string `json:"room_socket_id"`
	AIBotType      string `json:"ai_bot_type"`
	UserID         string `json:"kinde_uuid"`
	ProfilePicture string `json:"profile_picture"`
	Winner         string `json:"winner"`
	ReportID       string `json:"report_id"`
}
