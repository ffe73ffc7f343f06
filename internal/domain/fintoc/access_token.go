package fintoc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// GenerateAccessToken signs a transaction reference for the return URLs.
func GenerateAccessToken(secret, reference string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("fintoc-return:"))
	mac.Write([]byte(reference))
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckAccessToken verifies a return URL token in constant time.
func CheckAccessToken(secret, token, reference string) bool {
	if secret == "" || token == "" || reference == "" {
		return false
	}
	expected := GenerateAccessToken(secret, reference)
	return hmac.Equal([]byte(token), []byte(expected))
}
