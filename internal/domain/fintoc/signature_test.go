package fintoc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	now := time.Unix(1700000000, 0)

	t.Run("valid signature", func(t *testing.T) {
		header := SignPayload(secret, body, now)
		assert.True(t, VerifySignature(secret, header, body, 0, now))
	})

	t.Run("any of several v1 signatures", func(t *testing.T) {
		header := SignPayload(secret, body, now)
		header = "t=1700000000,v1=deadbeef," + header[len("t=1700000000,"):]
		assert.True(t, VerifySignature(secret, header, body, 0, now))
	})

	t.Run("body tampered", func(t *testing.T) {
		header := SignPayload(secret, body, now)
		assert.False(t, VerifySignature(secret, header, []byte(`{"id":"evt_2"}`), 0, now))
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := SignPayload("other", body, now)
		assert.False(t, VerifySignature(secret, header, body, 0, now))
	})

	t.Run("timestamp outside default tolerance", func(t *testing.T) {
		header := SignPayload(secret, body, now.Add(-301*time.Second))
		assert.False(t, VerifySignature(secret, header, body, 0, now))
	})

	t.Run("timestamp in the future outside tolerance", func(t *testing.T) {
		header := SignPayload(secret, body, now.Add(10*time.Minute))
		assert.False(t, VerifySignature(secret, header, body, 0, now))
	})

	t.Run("custom tolerance", func(t *testing.T) {
		header := SignPayload(secret, body, now.Add(-10*time.Minute))
		assert.True(t, VerifySignature(secret, header, body, time.Hour, now))
	})

	t.Run("malformed headers", func(t *testing.T) {
		for _, header := range []string{
			"",
			"garbage",
			"t=abc,v1=00",
			"v1=00",
			"t=1700000000",
			"t=1700000000,v1=",
		} {
			assert.False(t, VerifySignature(secret, header, body, 0, now), header)
		}
	})

	t.Run("empty secret", func(t *testing.T) {
		header := SignPayload("", body, now)
		assert.False(t, VerifySignature("", header, body, 0, now))
	})
}

func TestAccessToken(t *testing.T) {
	token := GenerateAccessToken("secret", "S0001")

	assert.Len(t, token, 64)
	assert.True(t, CheckAccessToken("secret", token, "S0001"))
	assert.False(t, CheckAccessToken("secret", token, "S0002"))
	assert.False(t, CheckAccessToken("other", token, "S0001"))
	assert.False(t, CheckAccessToken("secret", "", "S0001"))
	assert.False(t, CheckAccessToken("", token, "S0001"))
}
