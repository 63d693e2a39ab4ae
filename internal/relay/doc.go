// Package relay implements the Sentry webhook relay pipeline: signature
// verification, channel resolution, project filtering and authorization,
// issue enrichment, and message construction.
//
// # Security Model
//
// - Hex HMAC-SHA256 signatures over the raw body, verified with
//   crypto/subtle (constant-time comparison)
// - Verification runs before any JSON decoding; the signature covers the
//   bytes on the wire
// - Missing and invalid signatures are indistinguishable (generic 403)
// - Body size limits enforced to bound memory per request
// - Request logging excludes payload bodies
//
// # Request Flow
//
//  1. HTTP POST arrives at {path}/{channel}
//  2. Raw body captured (413 if over the size limit)
//  3. HMAC-SHA256 verified against the signature header (403 on mismatch)
//  4. Payload decoded; malformed fields degrade to sentinels
//  5. Channel membership checked against the gateway (404 if not joined)
//  6. Ignore patterns checked, in order, first match wins (200, not relayed)
//  7. API token resolved, in order, first match wins (403 if none)
//  8. Issue detail fetched from Sentry (502 on failure)
//  9. Notification formatted and sent; 202 Accepted with a delivery id
//
// # Pattern Ordering
//
// Ignore and token patterns are matched from the start of the project
// slug in declaration order. Overlapping patterns are resolved by the
// first match, so configuration must order specific patterns before
// catch-alls. Ignore patterns always win over token patterns: an ignored
// project is never enriched or relayed.
//
// # Error Responses
//
// - 403 Forbidden: bad/missing signature, or no token for the project
// - 404 Not Found: channel not joined on the gateway
// - 200 OK: valid event, project explicitly ignored
// - 502 Bad Gateway: enrichment or delivery failed
// - 202 Accepted: relayed, body carries the delivery id and channel
package relay
