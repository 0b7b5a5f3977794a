package payment

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

// Request signing headers.
const (
	HeaderAPIKey    = "X-Api-Key"
	HeaderRandomKey = "X-Random-Key"
	HeaderSignature = "X-Signature"

	// WebhookSignatureHeader carries hex(HMAC-SHA256(webhook secret, raw body)).
	WebhookSignatureHeader = "X-Payment-Signature"
)

var (
	ErrMissingSignature = errors.New("payment: missing webhook signature")
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
)

// Sign returns hex(HMAC-SHA256(secret, randomKey + path + body)).
func Sign(secret, randomKey, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(randomKey))
	mac.Write([]byte(path))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// newRandomKey returns a 16 byte hex nonce for request signing.
func newRandomKey() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WebhookSignature computes the signature expected for body.
func WebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks the signature in constant time and decodes the event.
func VerifyWebhook(secret string, body []byte, signature string) (*WebhookEvent, error) {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" {
		return nil, ErrMissingSignature
	}

	expected := WebhookSignature(secret, body)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return nil, ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
