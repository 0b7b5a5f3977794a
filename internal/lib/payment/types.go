package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Gateway response status values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Payment status values reported by a retrieve call.
const (
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailure = "FAILURE"
	PaymentStatusInit    = "INIT"
	PaymentStatusPending = "PENDING"
)

type Buyer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

type Address struct {
	ContactName string `json:"contact_name"`
	City        string `json:"city"`
	Address     string `json:"address"`
	ZipCode     string `json:"zip_code,omitempty"`
}

type BasketItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// InitializeRequest creates a hosted checkout form. ConversationID is echoed
// back on retrieve and webhook calls; the storefront uses the order number.
type InitializeRequest struct {
	ConversationID  string          `json:"conversation_id"`
	Price           decimal.Decimal `json:"price"`
	PaidPrice       decimal.Decimal `json:"paid_price"`
	Currency        string          `json:"currency"`
	CallbackURL     string          `json:"callback_url"`
	Buyer           Buyer           `json:"buyer"`
	ShippingAddress Address         `json:"shipping_address"`
	BasketItems     []BasketItem    `json:"basket_items"`
}

type InitializeResult struct {
	Token           string `json:"token"`
	PaymentPageURL  string `json:"payment_page_url"`
	TokenExpireTime int    `json:"token_expire_time"`
}

type retrieveRequest struct {
	Token          string `json:"token"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// RetrieveResult is the gateway's view of a checkout form's payment.
type RetrieveResult struct {
	Token          string          `json:"token"`
	ConversationID string          `json:"conversation_id"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentID      string          `json:"payment_id"`
	PaidPrice      decimal.Decimal `json:"paid_price"`
	Currency       string          `json:"currency"`
	ErrorCode      string          `json:"error_code,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// Paid reports whether money was captured.
func (r *RetrieveResult) Paid() bool {
	return r.PaymentStatus == PaymentStatusSuccess
}

// Final reports whether the result will not change anymore. A form the
// customer has not submitted yet is not final.
func (r *RetrieveResult) Final() bool {
	return r.PaymentStatus == PaymentStatusSuccess || r.PaymentStatus == PaymentStatusFailure
}

// FailureReason describes a failed payment for the order timeline.
func (r *RetrieveResult) FailureReason() string {
	switch {
	case r.ErrorMessage != "":
		return r.ErrorMessage
	case r.ErrorCode != "":
		return "gateway error " + r.ErrorCode
	default:
		return "payment not completed"
	}
}

// envelope is the common wrapper of every gateway response.
type envelope struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// APIError is returned for non-2xx responses and failure envelopes.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment gateway error %s (http %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment gateway error (http %d): %s", e.StatusCode, e.Message)
}

// clientError reports whether the request itself was rejected. These do not
// count against the circuit breaker.
func (e *APIError) clientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// WebhookEvent is the body the gateway posts to the webhook endpoint.
type WebhookEvent struct {
	EventType      string `json:"event_type"`
	Token          string `json:"token"`
	PaymentID      string `json:"payment_id"`
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
}
