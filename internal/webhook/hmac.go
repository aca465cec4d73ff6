package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// computeSignature computes the hex-encoded HMAC-SHA1 of a payload.
// The remote service signs the exact raw bytes it sends, so callers must
// pass the body as received, never a re-serialized form.
func computeSignature(body []byte, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifySignature verifies a hex HMAC-SHA1 signature against the raw request
// body using constant-time comparison (crypto/subtle). Signature length is
// public (a fixed-width hex digest), so the up-front length check inside
// ConstantTimeCompare does not leak secret-dependent timing.
//
// Returns nil if the signature is valid, error otherwise.
// All errors are generic to prevent information leakage.
func verifySignature(body []byte, signature, secret string) error {
	if secret == "" {
		return fmt.Errorf("webhook verification failed")
	}

	if signature == "" {
		return fmt.Errorf("webhook verification failed")
	}

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	expectedMAC := mac.Sum(nil)

	actualMAC, err := hex.DecodeString(signature)
	if err != nil {
		// Generic error - don't leak format details
		return fmt.Errorf("webhook verification failed")
	}

	if subtle.ConstantTimeCompare(expectedMAC, actualMAC) != 1 {
		return fmt.Errorf("webhook verification failed")
	}

	return nil
}
