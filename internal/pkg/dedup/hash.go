package dedup

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// EventHash derives a stable fingerprint for a raw event payload. The body
// is canonicalized (RFC 8785) before hashing so key order and whitespace
// differences between retries of the same event collapse to one hash.
// Payloads that fail canonicalization hash as raw bytes.
func EventHash(body []byte) string {
	canonical, err := jsoncanonicalizer.Transform(body)
	if err != nil {
		canonical = body
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
