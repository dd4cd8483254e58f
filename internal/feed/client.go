package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/venuehq/playclock/internal/models"
)

// Client talks to the venue backend's game-sale API, which owns the session
// records and their persistence.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a backend API client. apiKey may be empty when the
// backend does not require one.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetTimeout overrides the default request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// sessionRecord is the backend's wire shape for a game sale.
type sessionRecord struct {
	ID           string     `json:"id"`
	GameName     string     `json:"game_name"`
	AssetName    string     `json:"asset_name"`
	TicketCode   string     `json:"ticket_code"`
	OperatorName string     `json:"operator_name"`
	GameType     string     `json:"game_type"`
	TierDuration string     `json:"tier_duration"`
	GameDuration string     `json:"game_duration"`
	UnitPrice    float64    `json:"unit_price"`
	ScannedAt    *time.Time `json:"scanned_at"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

func (r sessionRecord) toModel() (models.Session, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.Session{}, fmt.Errorf("parse session id %q: %w", r.ID, err)
	}
	return models.Session{
		ID:           id,
		GameName:     r.GameName,
		AssetName:    r.AssetName,
		TicketCode:   r.TicketCode,
		OperatorName: r.OperatorName,
		GameType:     models.GameType(r.GameType),
		TierDuration: r.TierDuration,
		GameDuration: r.GameDuration,
		UnitPrice:    r.UnitPrice,
		ScannedAt:    r.ScannedAt,
		CreatedAt:    r.CreatedAt,
		CompletedAt:  r.CompletedAt,
	}, nil
}

// FetchActiveSessions returns the backend's active feed: sessions started but
// not yet completed.
func (c *Client) FetchActiveSessions(ctx context.Context) ([]models.Session, error) {
	return c.fetchSessions(ctx, "/api/game-sales?status=active")
}

// FetchCompletedSessions returns the backend's completed feed for the current
// business day.
func (c *Client) FetchCompletedSessions(ctx context.Context) ([]models.Session, error) {
	return c.fetchSessions(ctx, "/api/game-sales?status=completed")
}

func (c *Client) fetchSessions(ctx context.Context, endpoint string) ([]models.Session, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var records []sessionRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode session feed: %w", err)
	}

	sessions := make([]models.Session, 0, len(records))
	for _, r := range records {
		s, err := r.toModel()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// CompleteSession posts a force-completion for a session. The backend marks
// the sale completed; the session then drops out of the active feed on the
// next poll.
func (c *Client) CompleteSession(ctx context.Context, sessionID uuid.UUID) error {
	endpoint := fmt.Sprintf("/api/game-sales/%s/complete", sessionID)
	if _, err := c.makeRequest(ctx, http.MethodPost, endpoint, nil); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(responseBody))
	}
	return responseBody, nil
}
