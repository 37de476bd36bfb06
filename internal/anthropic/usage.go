// Package anthropic queries the Anthropic OAuth usage endpoint for
// subscription quota windows.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OAuth usage endpoint.
	DefaultBaseURL = "https://api.anthropic.com/api/oauth/usage"

	oauthBetaHeader = "oauth-2025-04-20"

	requestTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// API failure modes callers branch on.
var (
	ErrUnauthorized = errors.New("oauth token rejected")
	ErrRateLimited  = errors.New("usage api rate limited")
)

// UsageWindow is one rolling quota window. The API reports utilization
// polymorphically (75, 0.75, "75%"); it is normalized to a 0-100 percent.
type UsageWindow struct {
	Utilization float64 `json:"utilization"`
	ResetsAt    string  `json:"resets_at,omitempty"`
}

func (w *UsageWindow) UnmarshalJSON(data []byte) error {
	var raw struct {
		Utilization json.RawMessage `json:"utilization"`
		ResetsAt    string          `json:"resets_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.ResetsAt = raw.ResetsAt
	if pct, ok := parseUtilization(raw.Utilization); ok {
		w.Utilization = pct
	}
	return nil
}

// parseUtilization handles the int (75), float (0.75 or 75.0) and string
// ("75%" or "0.75") forms the endpoint has been observed to send.
func parseUtilization(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return normalizePercent(f), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return normalizePercent(v), true
		}
	}

	return 0, false
}

// normalizePercent maps fractional values to the 0-100 scale.
func normalizePercent(v float64) float64 {
	if v <= 1.0 {
		return v * 100
	}
	return v
}

// UsageLimits is the usage endpoint response. Windows the account does
// not have are absent.
type UsageLimits struct {
	FiveHour *UsageWindow `json:"five_hour"`
	SevenDay *UsageWindow `json:"seven_day"`
}

// Client calls the usage API with a per-profile OAuth token.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient returns a client with sane timeouts.
func NewClient(userAgent string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

// FetchUsage retrieves the account's quota windows.
func (c *Client) FetchUsage(ctx context.Context, token string) (*UsageLimits, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building usage request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("anthropic-beta", oauthBetaHeader)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling usage api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading usage response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("usage api returned %s", resp.Status)
	}

	var limits UsageLimits
	if err := json.Unmarshal(body, &limits); err != nil {
		return nil, fmt.Errorf("parsing usage response: %w", err)
	}
	return &limits, nil
}

// ReadOAuthToken extracts the Claude Code access token from a profile's
// .credentials.json.
func ReadOAuthToken(credentialsPath string) (string, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return "", fmt.Errorf("reading credentials: %w", err)
	}

	var creds struct {
		ClaudeAiOauth struct {
			AccessToken string `json:"accessToken"`
		} `json:"claudeAiOauth"`
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("parsing credentials: %w", err)
	}
	if creds.ClaudeAiOauth.AccessToken == "" {
		return "", errors.New("credentials file has no oauth access token")
	}
	return creds.ClaudeAiOauth.AccessToken, nil
}
