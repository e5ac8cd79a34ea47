package payos

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// WebhookPayload is the body payOS posts on payment state changes.
type WebhookPayload struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Data      WebhookData     `json:"data"`
	Signature string          `json:"signature"`
	Raw       json.RawMessage `json:"-"`
}

// WebhookData carries the payment details of a webhook event.
type WebhookData struct {
	OrderCode     int64  `json:"orderCode"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	Reference     string `json:"reference"`
	PaymentLinkID string `json:"paymentLinkId"`
	Code          string `json:"code"`
	Desc          string `json:"desc"`
}

// VerifySignature validates the HMAC-SHA256 signature of a webhook body.
// Returns true if the signature matches the checksum key.
func VerifySignature(data []byte, signature string, checksumKey string) bool {
	if checksumKey == "" || signature == "" {
		return false
	}

	h := hmac.New(sha256.New, []byte(checksumKey))
	h.Write(data)
	expected := h.Sum(nil)

	given, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(given, expected)
}

// GenerateSignature creates an HMAC-SHA256 signature for testing
func GenerateSignature(data []byte, checksumKey string) string {
	if checksumKey == "" {
		return ""
	}

	h := hmac.New(sha256.New, []byte(checksumKey))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// IsPaid reports whether a webhook event means the payment succeeded.
func (p *WebhookPayload) IsPaid() bool {
	return p.Code == "00" && p.Data.Code == "00"
}
