package relay

import (
	"context"

	"github.com/mkbright/sentry-relay/internal/sentry"
)

// NoProjectSlug is the sentinel used when a payload carries no project
// slug. It deliberately flows through filtering like any other slug so
// operators can observe malformed payloads; it will not match real
// patterns unless explicitly listed.
const NoProjectSlug = "(no project slug)"

// Event holds the fields decoded from a verified webhook payload.
// When Partial is true, decoding failed somewhere and missing fields
// were filled with sentinels instead of aborting the request.
type Event struct {
	Action      string
	ProjectSlug string
	IssueID     string
	IssueTitle  string
	Partial     bool
}

// IssueFetcher fetches issue detail from the Sentry API.
type IssueFetcher interface {
	Issue(ctx context.Context, issueID, token string) (*sentry.Issue, error)
}

// Config holds the relay server configuration, resolved from the global
// config into plain values (secrets resolved, sizes in bytes).
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string

	// Path is the URL prefix; the destination channel is the final path
	// segment (POST {Path}/{channel}).
	Path string

	// Secret keys the HMAC-SHA256 signature over the raw request body.
	Secret string

	// SignatureHeader carries the hex digest (default Sentry-Hook-Signature).
	SignatureHeader string

	// MaxBodySize is the request body limit in bytes.
	MaxBodySize int64
}

// RelayResponse is the JSON body of a 202 Accepted response.
type RelayResponse struct {
	DeliveryID string `json:"delivery_id"`
	Channel    string `json:"channel"`
}

// StatusResponse is the JSON body of a 200 response for events that are
// valid but deliberately not relayed.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON body of error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
