package relay

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// verifySignature verifies the hex HMAC-SHA256 signature Sentry sends
// over the raw request body.
//
// It must run on the unparsed bytes: the signature covers the wire form,
// not any re-serialized structure, so decoding happens strictly after
// this returns nil.
//
// A missing signature and a wrong signature are indistinguishable to the
// caller; the error is generic either way so nothing leaks about which
// check failed. Comparison is constant-time (crypto/subtle).
func verifySignature(body []byte, signature, secret string) error {
	if secret == "" {
		return fmt.Errorf("signature verification failed")
	}

	if signature == "" {
		return fmt.Errorf("signature verification failed")
	}

	expected := computeSignature(body, secret)

	// Sentry sends the digest as lowercase hex; compare the encoded
	// strings so the header must match the digest exactly.
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return fmt.Errorf("signature verification failed")
	}

	return nil
}

// computeSignature returns the lowercase hex HMAC-SHA256 of body keyed
// by secret.
func computeSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
