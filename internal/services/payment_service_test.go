package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func signPayload(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	svc := NewPaymentService("key", "secret", "", nil, nil)

	sig := signPayload("secret", []byte("order_123|pay_456"))
	require.True(t, svc.verifySignature("order_123", "pay_456", sig))
	require.False(t, svc.verifySignature("order_123", "pay_456", "deadbeef"))
	require.False(t, svc.verifySignature("order_123", "pay_999", sig))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)

	svc := NewPaymentService("key", "secret", "whsec", nil, nil)
	require.True(t, svc.VerifyWebhookSignature(body, signPayload("whsec", body)))
	require.False(t, svc.VerifyWebhookSignature(body, signPayload("wrong", body)))

	// No webhook secret configured: verification is skipped.
	open := NewPaymentService("key", "secret", "", nil, nil)
	require.True(t, open.VerifyWebhookSignature(body, "anything"))
}

func TestEnabled(t *testing.T) {
	require.True(t, NewPaymentService("key", "secret", "", nil, nil).Enabled())
	require.False(t, NewPaymentService("", "", "", nil, nil).Enabled())
}
