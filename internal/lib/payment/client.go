// Package payment is the client for the hosted checkout payment gateway.
//
// The storefront never sees card data. It initializes a checkout form for an
// order, redirects the customer to the returned payment page, and learns the
// outcome from the redirect callback, the signed webhook or by polling the
// form token.
package payment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/metrics"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const (
	initializePath = "/v1/checkout-forms"
	retrievePath   = "/v1/checkout-forms/retrieve"

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 * 1024
)

type Client struct {
	baseURL   string
	apiKey    string
	secretKey string

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *zerolog.Logger
	randomKey  func() string
}

func NewClient(cfg config.PaymentConfig, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker(logger),
		logger:     logger,
		randomKey:  newRandomKey,
	}
}

// Initialize creates a checkout form and returns its token and payment page.
func (c *Client) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResult, error) {
	var res InitializeResult
	if err := c.call(ctx, "initialize", initializePath, req, &res); err != nil {
		return nil, err
	}
	if res.Token == "" || res.PaymentPageURL == "" {
		return nil, fmt.Errorf("payment gateway returned an incomplete checkout form for %s", req.ConversationID)
	}
	return &res, nil
}

// Retrieve asks the gateway for the current payment state of a form token.
func (c *Client) Retrieve(ctx context.Context, token, conversationID string) (*RetrieveResult, error) {
	var res RetrieveResult
	err := c.call(ctx, "retrieve", retrievePath, retrieveRequest{Token: token, ConversationID: conversationID}, &res)
	if err != nil {
		return nil, err
	}
	if res.Token == "" {
		res.Token = token
	}
	return &res, nil
}

func (c *Client) call(ctx context.Context, operation, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", operation, err)
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, path, body)
	})
	recordBreakerResult(err)
	metrics.RecordGatewayCall(operation, time.Since(start), err)
	if err != nil {
		c.logger.Warn().Err(err).Str("operation", operation).Msg("payment gateway call failed")
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	if env.Status != StatusSuccess {
		return &APIError{StatusCode: http.StatusOK, Code: env.ErrorCode, Message: env.ErrorMessage}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	randomKey := c.randomKey()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderRandomKey, randomKey)
	req.Header.Set(HeaderSignature, Sign(c.secretKey, randomKey, path, body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readBodyForError(resp.Body)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return raw, nil
}

// readBodyForError reads a bounded prefix of an error body. A failure
// envelope's message is preferred when the body is one.
func readBodyForError(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return fmt.Sprintf("(failed to read body: %v)", err)
	}
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.ErrorMessage != "" {
		return env.ErrorMessage
	}
	return strings.TrimSpace(string(raw))
}
