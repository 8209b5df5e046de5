package surveyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"meal-survey/internal/config"
	"meal-survey/internal/submission"

	"github.com/golang-jwt/jwt/v5"
)

const maxErrorBody = 512

var _ submission.Transport = (*Client)(nil)

// Client posts completed surveys to the survey backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secret     []byte
}

// NewClient creates a new survey backend client. It fails with
// submission.ErrNotConfigured when no base URL is set.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.RequireSurveyAPI(); err != nil {
		return nil, fmt.Errorf("%w: %v", submission.ErrNotConfigured, err)
	}
	timeout := cfg.SurveyAPITimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.SurveyAPIURL, "/"),
	}
	if cfg.SurveyAPISecret != "" {
		c.secret = []byte(cfg.SurveyAPISecret)
	}
	return c, nil
}

// Create posts the payload to {baseURL}/create. Any 2xx response is an
// acknowledgement; its body is returned as-is.
func (c *Client) Create(ctx context.Context, p submission.Payload) (submission.Ack, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.secret != nil {
		token, err := c.createToken(p)
		if err != nil {
			return nil, fmt.Errorf("failed to create auth token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &submission.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &submission.TransportError{
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(respBody)), maxErrorBody),
		}
	}
	if err != nil {
		return nil, &submission.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	respBody = bytes.TrimSpace(respBody)
	if len(respBody) == 0 {
		return submission.Ack("{}"), nil
	}
	if !json.Valid(respBody) {
		return nil, &submission.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response is not valid JSON")}
	}
	return submission.Ack(respBody), nil
}

// createToken signs a short-lived token binding the request to the user and
// survey id.
func (c *Client) createToken(p submission.Payload) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   p.UserID,
		ID:        p.SurveyID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		Audience:  jwt.ClaimStrings{"/create"},
	})
	return token.SignedString(c.secret)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
