package fintoc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// VerifySignature validates a Fintoc-Signature header against the raw request body.
// The header has the form "t=<unix>,v1=<hex>[,v1=<hex>...]". Any malformed input
// yields false. A zero tolerance means DefaultWebhookTolerance.
func VerifySignature(secret, header string, rawBody []byte, tolerance time.Duration, now time.Time) bool {
	if secret == "" || header == "" {
		return false
	}

	timestamp, signatures := parseSignatureHeader(header)
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	if tolerance <= 0 {
		tolerance = DefaultWebhookTolerance
	}
	age := now.Unix() - ts
	if age < 0 {
		age = -age
	}
	if age > int64(tolerance/time.Second) {
		return false
	}

	expected := computeSignature(secret, timestamp, rawBody)

	valid := false
	for _, candidate := range signatures {
		if hmac.Equal([]byte(candidate), expected) {
			valid = true
		}
	}
	return valid
}

// SignPayload returns a header value signing rawBody at the given time.
func SignPayload(secret string, rawBody []byte, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	return "t=" + timestamp + ",v1=" + string(computeSignature(secret, timestamp, rawBody))
}

func computeSignature(secret, timestamp string, rawBody []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(rawBody)
	sum := mac.Sum(nil)

	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out
}

func parseSignatureHeader(header string) (string, []string) {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "t":
			timestamp = value
		case "v1":
			if value != "" {
				signatures = append(signatures, value)
			}
		}
	}
	return timestamp, signatures
}
