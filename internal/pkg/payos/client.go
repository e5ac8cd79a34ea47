package payos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MaxDescriptionLen is the gateway's hard limit on payment descriptions.
const MaxDescriptionLen = 25

// Payment link statuses reported by the gateway.
const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// Config holds payOS API configuration
type Config struct {
	BaseURL     string
	ClientID    string
	APIKey      string
	ChecksumKey string
	ReturnURL   string
	CancelURL   string
	Timeout     time.Duration
}

// Client represents a payOS payment gateway client
type Client struct {
	httpClient *http.Client
	config     Config
}

// CreatePaymentRequest represents payment-link creation request
type CreatePaymentRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"returnUrl"`
	CancelURL   string `json:"cancelUrl"`
}

// CreatePaymentResponse represents payment-link creation response
type CreatePaymentResponse struct {
	PaymentLinkID string `json:"paymentLinkId"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
	Status        string `json:"status"`
}

// PaymentStatusResponse represents a payment-link status lookup
type PaymentStatusResponse struct {
	OrderCode  int64  `json:"orderCode"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amountPaid"`
	Status     string `json:"status"`
}

type apiEnvelope struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

// NewClient creates a new payOS API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

// TruncateDescription trims a description to the gateway's 25-char ASCII limit.
func TruncateDescription(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r > 127 {
			continue
		}
		b.WriteRune(r)
		if b.Len() >= MaxDescriptionLen {
			break
		}
	}
	return b.String()
}

// CreatePayment creates a payment link and returns the checkout reference.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}
	if req.OrderCode <= 0 {
		return nil, fmt.Errorf("validation error: order_code must be > 0")
	}
	if len(req.Description) > MaxDescriptionLen {
		req.Description = TruncateDescription(req.Description)
	}
	if req.ReturnURL == "" {
		req.ReturnURL = c.config.ReturnURL
	}
	if req.CancelURL == "" {
		req.CancelURL = c.config.CancelURL
	}

	var out CreatePaymentResponse
	if err := c.do(ctx, http.MethodPost, "/v2/payment-requests", req, &out); err != nil {
		return nil, err
	}
	if out.CheckoutURL == "" {
		return nil, fmt.Errorf("payos returned no checkout url for order %d", req.OrderCode)
	}
	return &out, nil
}

// GetPaymentStatus looks up the current status of a payment link.
func (c *Client) GetPaymentStatus(ctx context.Context, orderCode int64) (*PaymentStatusResponse, error) {
	var out PaymentStatusResponse
	path := fmt.Sprintf("/v2/payment-requests/%d", orderCode)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelPayment cancels an open payment link.
func (c *Client) CancelPayment(ctx context.Context, orderCode int64, reason string) error {
	path := fmt.Sprintf("/v2/payment-requests/%d/cancel", orderCode)
	body := map[string]string{"cancellationReason": reason}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c == nil || c.httpClient == nil {
		return fmt.Errorf("payos client is not initialized")
	}
	if strings.TrimSpace(c.config.BaseURL) == "" {
		return fmt.Errorf("payos config error: base_url is empty")
	}
	if strings.TrimSpace(c.config.ClientID) == "" || strings.TrimSpace(c.config.APIKey) == "" {
		return fmt.Errorf("payos config error: missing credentials")
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode payos request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := strings.TrimRight(c.config.BaseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("payos api call failed: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.config.ClientID)
	httpReq.Header.Set("x-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("payos api call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("payos api call failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("payos api returned non-2xx status: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to parse payos response: %w", err)
	}
	if envelope.Code != "00" {
		return fmt.Errorf("payos api error %s: %s", envelope.Code, envelope.Desc)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to parse payos response data: %w", err)
		}
	}
	return nil
}
