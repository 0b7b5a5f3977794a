package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// orderTransitions is the only place that decides which status may follow
// which. delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:      nil,
	OrderStatusCancelled:      nil,
}

// OrderStatuses lists every known status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether next may directly follow s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Label is the customer-facing wording of a status.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Awaiting payment"
	case OrderStatusConfirmed:
		return "Confirmed"
	case OrderStatusPreparing:
		return "Being arranged"
	case OrderStatusOutForDelivery:
		return "Out for delivery"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// PaymentStatus tracks money, independently from fulfilment.
type PaymentStatus string

const (
	PaymentStatusAwaiting       PaymentStatus = "awaiting_payment"
	PaymentStatusPaid           PaymentStatus = "paid"
	PaymentStatusFailed         PaymentStatus = "failed"
	PaymentStatusRefundRequired PaymentStatus = "refund_required"
)

// Settled reports whether money has been captured for the order.
func (s PaymentStatus) Settled() bool {
	return s == PaymentStatusPaid || s == PaymentStatusRefundRequired
}

// Timeline actors.
const (
	ActorCustomer = "customer"
	ActorWebhook  = "webhook"
	ActorCallback = "callback"
	ActorSystem   = "system"
	ActorAdmin    = "admin"
)

// AdminActor tags timeline entries written by a specific admin.
func AdminActor(userID string) string {
	if userID == "" {
		return ActorAdmin
	}
	return ActorAdmin + ":" + userID
}

// ErrIllegalTransition is returned when the transition table forbids a change.
var ErrIllegalTransition = errors.New("illegal order status transition")

// LineItem is a product as it was sold; UnitPrice is frozen at checkout.
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// DeliveryInfo describes where and when the flowers go.
type DeliveryInfo struct {
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	AddressLine    string `json:"address_line"`
	City           string `json:"city"`
	District       string `json:"district,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
	Date           string `json:"date"`
	TimeSlot       string `json:"time_slot,omitempty"`
	CardMessage    string `json:"card_message,omitempty"`
}

// PaymentInfo is the gateway side of an order.
type PaymentInfo struct {
	Status        PaymentStatus    `json:"status"`
	Provider      string           `json:"provider"`
	Token         string           `json:"token,omitempty"`
	PageURL       string           `json:"page_url,omitempty"`
	PaymentID     string           `json:"payment_id,omitempty"`
	PaidAmount    *decimal.Decimal `json:"paid_amount,omitempty"`
	PaidAt        *time.Time       `json:"paid_at,omitempty"`
	FailureReason string           `json:"failure_reason,omitempty"`
	LastCheckedAt *time.Time       `json:"last_checked_at,omitempty"`
}

// TimelineEntry records one applied change.
type TimelineEntry struct {
	At     time.Time   `json:"at"`
	Status OrderStatus `json:"status"`
	Actor  string      `json:"actor"`
	Note   string      `json:"note,omitempty"`
}

// Order is a placed order. Items, Delivery, Payment and Timeline are stored
// as JSONB columns.
type Order struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	CustomerID   *uuid.UUID      `json:"customer_id,omitempty"`
	ContactEmail string          `json:"contact_email"`
	ContactName  string          `json:"contact_name"`
	ContactPhone string          `json:"contact_phone"`
	Status       OrderStatus     `json:"status"`
	Items        []LineItem      `json:"items"`
	Delivery     DeliveryInfo    `json:"delivery"`
	Payment      PaymentInfo     `json:"payment"`
	Timeline     []TimelineEntry `json:"timeline"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewOrderNumber returns a public order reference like FL-3F9A1C07B2.
func NewOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "FL-" + strings.ToUpper(raw[:10])
}

// TransitionTo moves the order to next when the transition table allows it
// and appends a timeline entry. Moving to the current status is a no-op and
// reports changed=false.
func (o *Order) TransitionTo(next OrderStatus, actor, note string, at time.Time) (bool, error) {
	if !next.Valid() {
		return false, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, next)
	}
	if o.Status == next {
		return false, nil
	}
	if !o.Status.CanTransitionTo(next) {
		return false, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.Status, next)
	}

	o.Status = next
	o.UpdatedAt = at
	o.Timeline = append(o.Timeline, TimelineEntry{At: at, Status: next, Actor: actor, Note: note})
	return true, nil
}

// PaymentOutcome is the normalized result of a gateway lookup.
type PaymentOutcome struct {
	Succeeded     bool
	PaymentID     string
	PaidAmount    decimal.Decimal
	Currency      string
	FailureReason string
}

// PaymentChange tells the caller what ApplyPayment did.
type PaymentChange int

const (
	PaymentUnchanged PaymentChange = iota
	PaymentConfirmed
	PaymentFailed
	PaymentRefundRequired
)

func (c PaymentChange) String() string {
	switch c {
	case PaymentConfirmed:
		return "confirmed"
	case PaymentFailed:
		return "failed"
	case PaymentRefundRequired:
		return "refund_required"
	default:
		return "unchanged"
	}
}

// ApplyPayment folds a gateway outcome into the order.
//
// Once money is captured the order ignores further outcomes, which makes
// webhook retries, redirect callbacks and manual verification safe to run
// in any order and any number of times.
func (o *Order) ApplyPayment(outcome PaymentOutcome, actor string, at time.Time) PaymentChange {
	o.Payment.LastCheckedAt = &at

	if o.Payment.Status.Settled() {
		return PaymentUnchanged
	}

	if !outcome.Succeeded {
		if o.Payment.Status == PaymentStatusFailed && o.Payment.FailureReason == outcome.FailureReason {
			return PaymentUnchanged
		}
		o.Payment.Status = PaymentStatusFailed
		o.Payment.FailureReason = outcome.FailureReason
		o.UpdatedAt = at
		o.Timeline = append(o.Timeline, TimelineEntry{
			At:     at,
			Status: o.Status,
			Actor:  actor,
			Note:   "payment failed: " + outcome.FailureReason,
		})
		return PaymentFailed
	}

	paid := outcome.PaidAmount
	o.Payment.PaymentID = outcome.PaymentID
	o.Payment.PaidAmount = &paid
	o.Payment.PaidAt = &at
	o.Payment.FailureReason = ""
	o.UpdatedAt = at

	change := PaymentConfirmed
	if o.Status == OrderStatusCancelled {
		change = PaymentRefundRequired
		o.Payment.Status = PaymentStatusRefundRequired
		o.Timeline = append(o.Timeline, TimelineEntry{
			At:     at,
			Status: o.Status,
			Actor:  actor,
			Note:   "payment received after cancellation, refund required",
		})
	} else {
		o.Payment.Status = PaymentStatusPaid
		if o.Status == OrderStatusPending {
			// pending -> confirmed is always allowed.
			_, _ = o.TransitionTo(OrderStatusConfirmed, actor, "payment received", at)
		} else {
			o.Timeline = append(o.Timeline, TimelineEntry{At: at, Status: o.Status, Actor: actor, Note: "payment received"})
		}
	}

	// Money was captured either way; a mismatch is left for an operator.
	if mismatch := o.PaidMismatch(outcome); mismatch != "" {
		o.Timeline = append(o.Timeline, TimelineEntry{
			At:     at,
			Status: o.Status,
			Actor:  actor,
			Note:   mismatch + ", review required",
		})
	}
	return change
}

// PaidMismatch describes how a captured payment differs from the order
// total and currency, or returns "" when they match. An outcome without a
// currency is compared on amount only.
func (o *Order) PaidMismatch(outcome PaymentOutcome) string {
	sameCurrency := outcome.Currency == "" || strings.EqualFold(outcome.Currency, o.Currency)
	if outcome.PaidAmount.Equal(o.Total) && sameCurrency {
		return ""
	}
	currency := outcome.Currency
	if currency == "" {
		currency = o.Currency
	}
	return fmt.Sprintf("paid %s %s does not match order total %s %s",
		outcome.PaidAmount.StringFixed(2), strings.ToUpper(currency), o.Total.StringFixed(2), o.Currency)
}

// ItemCount sums the quantities of all lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// ContainsProduct reports whether any line refers to productID.
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	CustomerID *uuid.UUID
	Status     OrderStatus
	Page       int
	PageSize   int
}
