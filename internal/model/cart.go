package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartTTL is how long an untouched cart survives.
const CartTTL = 7 * 24 * time.Hour

// MaxCartQuantity caps a single line.
const MaxCartQuantity = 50

// Cart is the raw cart as stored in Redis: product references only, never prices.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// SetQuantity sets the quantity of productID; zero removes the line.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) {
	for i, item := range c.Items {
		if item.ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = quantity
		}
		return
	}
	if quantity > 0 {
		c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity})
	}
}

// ProductIDs lists the products referenced by the cart.
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// CartLine is a cart item priced against the current catalog.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	Available bool            `json:"available"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PricedCart is what the API returns for a cart.
type PricedCart struct {
	ID          string          `json:"id"`
	Lines       []CartLine      `json:"lines"`
	ItemCount   int             `json:"item_count"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

type CreateCartRequest struct{}

func (r *CreateCartRequest) Validate() error {
	return nil
}

type GetCartRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (r *GetCartRequest) Validate() error {
	return validate.Struct(r)
}

type SetCartItemRequest struct {
	ID        string `param:"id" validate:"required,uuid"`
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=0,max=50"`
}

func (r *SetCartItemRequest) Validate() error {
	return validate.Struct(r)
}

type RemoveCartItemRequest struct {
	ID        string `param:"id" validate:"required,uuid"`
	ProductID string `param:"productId" validate:"required,uuid"`
}

func (r *RemoveCartItemRequest) Validate() error {
	return validate.Struct(r)
}
