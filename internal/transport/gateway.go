package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Gateway sends messages through a chat-gateway HTTP API.
//
// The gateway owns room membership and message delivery; this client only
// probes membership (GET /channels/{name}) and posts pre-formatted text
// (POST /channels/{name}/messages).
type Gateway struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewGateway creates a gateway client. authToken may be empty when the
// gateway is unauthenticated (e.g. a localhost bot host).
func NewGateway(baseURL, authToken string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Joined reports whether the gateway is a member of channel.
// 200 means joined, 404 means not joined, anything else is an error.
func (g *Gateway) Joined(ctx context.Context, channel string) (bool, error) {
	endpoint := fmt.Sprintf("%s/channels/%s", g.baseURL, url.PathEscape(channel))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("gateway request: %w", err)
	}
	g.authorize(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("gateway membership check: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("gateway API %d: %s", resp.StatusCode, string(respBody))
	}
}

// messageRequest is the gateway's message payload.
type messageRequest struct {
	Text string `json:"text"`
}

// Send posts text to channel.
func (g *Gateway) Send(ctx context.Context, channel, text string) error {
	body, err := json.Marshal(messageRequest{Text: text})
	if err != nil {
		return fmt.Errorf("gateway marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/channels/%s/messages", g.baseURL, url.PathEscape(channel))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	g.authorize(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway API %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func (g *Gateway) authorize(req *http.Request) {
	if g.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.authToken)
	}
}
