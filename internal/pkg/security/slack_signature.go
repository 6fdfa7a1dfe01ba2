package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// signatureTolerance rejects replayed requests with stale timestamps.
const signatureTolerance = 5 * time.Minute

// VerifySlackSignature checks the v0 request signature Slack attaches to
// event deliveries.
func VerifySlackSignature(signingSecret, timestamp, signature string, body []byte) error {
	if signingSecret == "" {
		return errors.New("signing secret is required for signature verification")
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errors.New("invalid request timestamp")
	}
	age := time.Since(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return errors.New("request timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New("signature mismatch")
	}
	return nil
}
