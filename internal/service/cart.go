package service

import (
	"context"
	"time"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pricing holds the shop-wide money rules shared by carts and checkout.
type Pricing struct {
	Currency      string
	DeliveryFee   decimal.Decimal
	FreeThreshold decimal.Decimal
	HasThreshold  bool
}

func NewPricing(cfg config.StorefrontConfig) Pricing {
	threshold, ok := cfg.FreeDeliveryAmount()
	return Pricing{
		Currency:      cfg.Currency,
		DeliveryFee:   cfg.DeliveryFeeAmount(),
		FreeThreshold: threshold,
		HasThreshold:  ok,
	}
}

// DeliveryFeeFor waives the fee at or above the free delivery threshold.
// An empty cart pays nothing.
func (p Pricing) DeliveryFeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() {
		return decimal.Zero
	}
	if p.HasThreshold && subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.DeliveryFee
}

type CartService struct {
	carts    CartStore
	products ProductStore
	pricing  Pricing
	now      func() time.Time
}

func NewCartService(carts CartStore, products ProductStore, pricing Pricing) *CartService {
	return &CartService{carts: carts, products: products, pricing: pricing, now: time.Now}
}

func (s *CartService) Create(ctx context.Context) (*model.PricedCart, error) {
	cart := &model.Cart{ID: uuid.NewString(), Items: []model.CartItem{}, UpdatedAt: s.now()}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.price(ctx, cart)
}

func (s *CartService) Get(ctx context.Context, id string) (*model.PricedCart, error) {
	cart, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, cart)
}

// SetItem sets a line's quantity; zero removes it. Only available products
// can be added.
func (s *CartService) SetItem(ctx context.Context, id string, productID uuid.UUID, quantity int) (*model.PricedCart, error) {
	cart, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if quantity > 0 {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil || !p.Available {
			if err != nil && !isNotFound(err) {
				return nil, err
			}
			return nil, errs.NewBadRequestError("Product is not available", true, nil,
				[]errs.FieldError{{Field: "product_id", Error: "is not available"}}, nil)
		}
	}

	cart.SetQuantity(productID, min(quantity, model.MaxCartQuantity))
	return s.save(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, id string, productID uuid.UUID) (*model.PricedCart, error) {
	cart, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	cart.SetQuantity(productID, 0)
	return s.save(ctx, cart)
}

func (s *CartService) load(ctx context.Context, id string) (*model.Cart, error) {
	cart, err := s.carts.Get(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Cart not found")
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *model.Cart) (*model.PricedCart, error) {
	cart.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.price(ctx, cart)
}

// price resolves cart lines against the current catalog. Products that no
// longer exist are dropped; unavailable ones are listed but not charged.
func (s *CartService) price(ctx context.Context, cart *model.Cart) (*model.PricedCart, error) {
	priced := &model.PricedCart{
		ID:       cart.ID,
		Lines:    []model.CartLine{},
		Currency: s.pricing.Currency,
	}
	if len(cart.Items) == 0 {
		return priced, nil
	}

	products, err := s.products.GetByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		line := model.CartLine{
			ProductID: p.ID,
			Slug:      p.Slug,
			Name:      p.Name,
			ImageURL:  p.PrimaryImage(),
			Available: p.Available,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			LineTotal: p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		priced.Lines = append(priced.Lines, line)
		if line.Available {
			priced.ItemCount += line.Quantity
			priced.Subtotal = priced.Subtotal.Add(line.LineTotal)
		}
	}

	priced.DeliveryFee = s.pricing.DeliveryFeeFor(priced.Subtotal)
	priced.Total = priced.Subtotal.Add(priced.DeliveryFee)
	return priced, nil
}
