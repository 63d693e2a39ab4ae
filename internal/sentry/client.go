// Package sentry is a minimal client for the Sentry issue API, covering
// only what the relay needs: one authenticated issue-detail lookup.
package sentry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Issue is the subset of Sentry's issue detail the relay consumes.
// Permalink is the only field the notification requires.
type Issue struct {
	ID        string `json:"id"`
	ShortID   string `json:"shortId"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
}

// Client fetches issue details from the Sentry API.
type Client struct {
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a Sentry API client. apiBase is the versioned API
// root, e.g. "https://sentry.io/api/0".
func NewClient(apiBase string, timeout time.Duration) *Client {
	return &Client{
		apiBase: apiBase,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Issue fetches the detail record for issueID using the given API token.
//
// Success is strictly a 200 with a JSON body; every other status, network
// failure, or undecodable body is one and the same "could not enrich"
// error. The relay never retries.
func (c *Client) Issue(ctx context.Context, issueID, token string) (*Issue, error) {
	endpoint := fmt.Sprintf("%s/issues/%s/", c.apiBase, url.PathEscape(issueID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("sentry request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentry issue lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sentry API %d for issue %s", resp.StatusCode, issueID)
	}

	var issue Issue
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return nil, fmt.Errorf("sentry issue decode: %w", err)
	}

	return &issue, nil
}
