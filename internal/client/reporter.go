package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Reporter hands a finished match to whatever records results. It is called
// at most once per session.
type Reporter interface {
	Report(ctx context.Context, r MatchReport) error
}

// HTTPReporter posts match reports as JSON to {BaseURL}/highscores.
type HTTPReporter struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPReporter(baseURL string) *HTTPReporter {
	return &HTTPReporter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  http.DefaultClient,
	}
}

func (h *HTTPReporter) Report(ctx context.Context, r MatchReport) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/highscores", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", r.ReportID)

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send report %s: %w", r.ReportID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("report %s rejected: %s", r.ReportID, resp.Status)
	}
	return nil
}

// NopReporter only logs the result. Used when no report URL is configured.
type NopReporter struct{}

func (NopReporter) Report(_ context.Context, r MatchReport) error {
	log.Info().
		Str("user", r.UserName).
		Int("score", r.UserScore).
		Str("winner", r.Winner).
		Str("room", r.AIBotType).
		Msg("match finished (reporting disabled)")
	return nil
}
