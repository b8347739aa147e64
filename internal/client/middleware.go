package client

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// RateLimiter is a sliding-window limiter for free-form chat. Game commands
// never go through it; the action gate already bounds those to one per turn.
// It is owned by the dispatcher goroutine and is not safe for concurrent use.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	requests    []time.Time
}

// NewRateLimiter creates a limiter allowing maxRequests sends per window.
// The controller uses 5 per second for chat.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow records a send at now and reports whether it fits in the window.
// Timestamps older than the window are discarded on every call, so memory
// stays bounded by maxRequests. A rejected send is not recorded.
func (r *RateLimiter) Allow(now time.Time) bool {
	cutoff := now.Add(-r.window)

	valid := make([]time.Time, 0, len(r.requests)+1)
	for _, ts := range r.requests {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= r.maxRequests {
		r.requests = valid
		return false
	}

	r.requests = append(valid, now)
	return true
}

// Reset forgets all recorded sends, used when a new transport epoch starts.
func (r *RateLimiter) Reset() {
	r.requests = nil
}

// validServerTypes lists every message type the server pushes to a client.
// Anything else is logged and dropped by the transport.
var validServerTypes = map[string]bool{
	"connect":     true,
	"disconnect":  true,
	"join":        true,
	"chat":        true,
	"game_update": true,
	"game_over":   true,
}

// ValidateMessageType checks if an inbound message type is recognized.
// Returns an error wrapping ErrUnknownMessageType for unknown types.
func ValidateMessageType(msgType string) error {
	if !validServerTypes[msgType] {
		return fmt.Errorf("%w '%s'", ErrUnknownMessageType, msgType)
	}
	return nil
}

// ValidateUsername checks the local display name before it is announced
// in the handshake. Rules:
//   - Not empty after trimming whitespace
//   - At most 20 characters
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return fmt.Errorf("USERNAME_INVALID: Username cannot be empty")
	}
	if utf8.RuneCountInString(username) > 20 {
		return fmt.Errorf("USERNAME_INVALID: Username too long (max 20 characters)")
	}
	return nil
}
