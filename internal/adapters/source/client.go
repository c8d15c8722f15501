// Package source defines the upstream data source interface and errors.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	model "github.com/fieldline/standee/internal/domain/model"
	types "github.com/fieldline/standee/internal/domain/types"
	metrics "github.com/fieldline/standee/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultClientTimeout = 10 * time.Second

	membershipUpstream = "membership"
	scoringUpstream    = "scoring"
)

// participantPayload is the membership wire format.
type participantPayload struct {
	UserID      string `json:"user_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
}

// summaryPayload is the scoring wire format.
type summaryPayload struct {
	UserID         string  `json:"user_id"`
	TotalPicks     int     `json:"total_picks"`
	CorrectPicks   int     `json:"correct_picks"`
	PickPercentage float64 `json:"pick_percentage"`
}

// Client implements Source against the membership and scoring HTTP APIs.
type Client struct {
	client        *http.Client
	membershipURL string
	scoringURL    string
	timeout       time.Duration
}

// NewClient creates an HTTP source for the given upstream base URLs.
func NewClient(membershipURL, scoringURL string, opts ...ClientOption) *Client {
	c := &Client{
		membershipURL: strings.TrimRight(membershipURL, "/"),
		scoringURL:    strings.TrimRight(scoringURL, "/"),
		timeout:       defaultClientTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Participants fetches the roster from the membership subsystem.
func (c *Client) Participants(ctx context.Context, gameID string) ([]model.ParticipantRecord, error) {
	if gameID == "" {
		return nil, fmt.Errorf("%w: empty game id", ErrInvalidKey)
	}

	endpoint := fmt.Sprintf("%s/games/%s/participants", c.membershipURL, url.PathEscape(gameID))
	var wire []participantPayload
	if err := c.getJSON(ctx, membershipUpstream, endpoint, &wire); err != nil {
		return nil, err
	}

	out := make([]model.ParticipantRecord, 0, len(wire))
	for _, p := range wire {
		out = append(out, model.ParticipantRecord{
			UserID:      p.UserID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DisplayName: p.DisplayName,
		})
	}
	return out, nil
}

// Summaries fetches pick summaries from the scoring subsystem.
func (c *Client) Summaries(ctx context.Context, key types.ViewKey) ([]model.PickSummary, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/games/%s/seasons/%d/summaries",
		c.scoringURL, url.PathEscape(key.GameID), key.Season)
	if key.Week > 0 {
		endpoint += "?week=" + strconv.Itoa(key.Week)
	}

	var wire []summaryPayload
	if err := c.getJSON(ctx, scoringUpstream, endpoint, &wire); err != nil {
		return nil, err
	}

	out := make([]model.PickSummary, 0, len(wire))
	for _, s := range wire {
		out = append(out, model.PickSummary{
			UserID:         s.UserID,
			TotalPicks:     s.TotalPicks,
			CorrectPicks:   s.CorrectPicks,
			PickPercentage: s.PickPercentage,
		})
	}
	return out, nil
}

// getJSON performs one instrumented GET and decodes the response into v.
func (c *Client) getJSON(ctx context.Context, upstream, endpoint string, v interface{}) error {
	start := time.Now()
	err := c.fetch(ctx, upstream, endpoint, v)
	metrics.RecordUpstreamLatency(upstream, float64(time.Since(start).Milliseconds()))
	return err
}

func (c *Client) fetch(ctx context.Context, upstream, endpoint string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		metrics.RecordUpstreamRequest(upstream, metrics.OutcomeUpstreamError)
		return fmt.Errorf("%w: build %s request: %v", ErrFetch, upstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(upstream, metrics.OutcomeUpstreamError)
		return fmt.Errorf("%w: %s request: %v", ErrFetch, upstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstreamRequest(upstream, metrics.OutcomeUpstreamError)
		return fmt.Errorf("%w: %s returned status %d", ErrFetch, upstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		metrics.RecordUpstreamRequest(upstream, metrics.OutcomeError)
		return fmt.Errorf("%w: decode %s payload: %v", ErrDecode, upstream, err)
	}

	metrics.RecordUpstreamRequest(upstream, metrics.OutcomeOK)
	return nil
}
