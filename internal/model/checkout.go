package model

import (
	"time"

	"github.com/deppfellow/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

// DeliveryDateLayout is the wire format of DeliveryInfo.Date.
const DeliveryDateLayout = "2006-01-02"

type ContactInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"required,min=2,max=120"`
	Phone string `json:"phone" validate:"required,e164"`
}

type DeliveryInput struct {
	RecipientName  string `json:"recipient_name" validate:"required,min=2,max=120"`
	RecipientPhone string `json:"recipient_phone" validate:"required,e164"`
	AddressLine    string `json:"address_line" validate:"required,min=5,max=300"`
	City           string `json:"city" validate:"required,max=80"`
	District       string `json:"district" validate:"max=80"`
	PostalCode     string `json:"postal_code" validate:"max=16"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot       string `json:"time_slot" validate:"omitempty,oneof=morning afternoon evening"`
	CardMessage    string `json:"card_message" validate:"max=500"`
}

// ToDeliveryInfo copies the validated input onto the order record.
func (d DeliveryInput) ToDeliveryInfo() DeliveryInfo {
	return DeliveryInfo{
		RecipientName:  d.RecipientName,
		RecipientPhone: d.RecipientPhone,
		AddressLine:    d.AddressLine,
		City:           d.City,
		District:       d.District,
		PostalCode:     d.PostalCode,
		Date:           d.Date,
		TimeSlot:       d.TimeSlot,
		CardMessage:    d.CardMessage,
	}
}

type CheckoutRequest struct {
	CartID   string        `json:"cart_id" validate:"required,uuid"`
	Contact  ContactInput  `json:"contact"`
	Delivery DeliveryInput `json:"delivery"`

	// now is overridable in tests.
	now func() time.Time
}

// Validate runs tag validation and rejects delivery dates in the past.
func (r *CheckoutRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}

	now := time.Now
	if r.now != nil {
		now = r.now
	}
	if !DeliveryDateAllowed(r.Delivery.Date, now()) {
		return validation.CustomValidationErrors{
			{Field: "delivery.date", Message: "must be today or later"},
		}
	}
	return nil
}

// DeliveryDateAllowed reports whether date (YYYY-MM-DD) is today or later
// in now's location.
func DeliveryDateAllowed(date string, now time.Time) bool {
	d, err := time.ParseInLocation(DeliveryDateLayout, date, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !d.Before(today)
}

// CheckoutResponse tells the client where to pay.
type CheckoutResponse struct {
	OrderNumber    string          `json:"order_number"`
	PaymentPageURL string          `json:"payment_page_url"`
	Token          string          `json:"token"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
}

// ------------------------------------------------------------
// Order payloads
// ------------------------------------------------------------

type GetOrderRequest struct {
	Number string `param:"number" validate:"required,max=32"`
}

func (r *GetOrderRequest) Validate() error {
	return validate.Struct(r)
}

type LookupOrderRequest struct {
	Number string `json:"number" validate:"required,max=32"`
	Email  string `json:"email" validate:"required,email"`
}

func (r *LookupOrderRequest) Validate() error {
	return validate.Struct(r)
}

type ListMyOrdersRequest struct {
	PageQuery
}

func (r *ListMyOrdersRequest) Validate() error {
	return validate.Struct(r)
}

type ListOrdersRequest struct {
	PageQuery
	Status string `query:"status" validate:"omitempty,oneof=pending confirmed preparing out_for_delivery delivered cancelled"`
}

func (r *ListOrdersRequest) Validate() error {
	return validate.Struct(r)
}

type CancelOrderRequest struct {
	Number string `param:"number" validate:"required,max=32"`
}

func (r *CancelOrderRequest) Validate() error {
	return validate.Struct(r)
}

type GetOrderByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (r *GetOrderByIDRequest) Validate() error {
	return validate.Struct(r)
}

type UpdateOrderStatusRequest struct {
	ID     string `param:"id" validate:"required,uuid"`
	Status string `json:"status" validate:"required,oneof=pending confirmed preparing out_for_delivery delivered cancelled"`
	Note   string `json:"note" validate:"max=500"`
}

func (r *UpdateOrderStatusRequest) Validate() error {
	return validate.Struct(r)
}

type VerifyPaymentRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (r *VerifyPaymentRequest) Validate() error {
	return validate.Struct(r)
}

// PaymentCallbackRequest is the form the hosted checkout posts back when
// the customer leaves it.
type PaymentCallbackRequest struct {
	Token string `form:"token" query:"token" validate:"max=256"`
}

func (r *PaymentCallbackRequest) Validate() error {
	return validate.Struct(r)
}

// PaymentVerification is returned by the manual verification endpoint.
type PaymentVerification struct {
	Order   *Order `json:"order"`
	Applied bool   `json:"applied"`
	Result  string `json:"result"`
}

// ReconcileResult summarizes a reconciliation run.
type ReconcileResult struct {
	Checked   int `json:"checked"`
	Confirmed int `json:"confirmed"`
	Failed    int `json:"failed"`
	Refunds   int `json:"refunds"`
	Errors    int `json:"errors"`
}
