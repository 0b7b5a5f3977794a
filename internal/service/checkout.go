package service

import (
	"context"
	"strings"
	"time"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/payment"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const paymentProvider = "hosted-checkout"

// CallbackPath is where the hosted form posts the customer back to.
const CallbackPath = "/api/v1/payments/callback"

type CheckoutService struct {
	carts       CartStore
	products    ProductStore
	orders      OrderStore
	gateway     PaymentGateway
	pricing     Pricing
	callbackURL string
	logger      *zerolog.Logger
	now         func() time.Time
}

func NewCheckoutService(
	carts CartStore,
	products ProductStore,
	orders OrderStore,
	gateway PaymentGateway,
	pricing Pricing,
	apiURL string,
	logger *zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:       carts,
		products:    products,
		orders:      orders,
		gateway:     gateway,
		pricing:     pricing,
		callbackURL: strings.TrimRight(apiURL, "/") + CallbackPath,
		logger:      logger,
		now:         time.Now,
	}
}

// Checkout turns a cart into a pending order and opens a hosted payment
// form for it. Prices come from the catalog at this moment and are frozen
// on the order lines. customer is nil for guest checkout.
func (s *CheckoutService) Checkout(ctx context.Context, req *model.CheckoutRequest, customer *model.Customer) (*model.CheckoutResponse, error) {
	cart, err := s.carts.Get(ctx, req.CartID)
	if err != nil {
		return nil, notFoundAs(err, "Cart not found")
	}
	if len(cart.Items) == 0 {
		return nil, errs.NewBadRequestError("Cart is empty", true, errs.Code("CART_EMPTY"), nil, nil)
	}

	items, subtotal, err := s.lineItems(ctx, cart)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fee := s.pricing.DeliveryFeeFor(subtotal)
	order := &model.Order{
		ID:           uuid.New(),
		Number:       model.NewOrderNumber(),
		ContactEmail: strings.ToLower(strings.TrimSpace(req.Contact.Email)),
		ContactName:  strings.TrimSpace(req.Contact.Name),
		ContactPhone: req.Contact.Phone,
		Status:       model.OrderStatusPending,
		Items:        items,
		Delivery:     req.Delivery.ToDeliveryInfo(),
		Payment: model.PaymentInfo{
			Status:   model.PaymentStatusAwaiting,
			Provider: paymentProvider,
		},
		Timeline: []model.TimelineEntry{
			{At: now, Status: model.OrderStatusPending, Actor: model.ActorCustomer, Note: "order placed"},
		},
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
		Currency:    s.pricing.Currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if customer != nil {
		order.CustomerID = &customer.ID
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	form, err := s.gateway.Initialize(ctx, s.initializeRequest(order, customer))
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", order.Number).Msg("failed to initialize payment form")
		s.markInitFailed(ctx, order, err)
		return nil, errs.NewBadGatewayError("Payment provider is unavailable, please try again", true)
	}

	_, _, err = s.orders.Update(ctx, order.ID, func(o *model.Order) error {
		o.Payment.Token = form.Token
		o.Payment.PageURL = form.PaymentPageURL
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, cart.ID); err != nil {
		s.logger.Warn().Err(err).Str("cart_id", cart.ID).Msg("failed to delete cart after checkout")
	}

	s.logger.Info().
		Str("order_number", order.Number).
		Str("total", order.Total.StringFixed(2)).
		Bool("guest", customer == nil).
		Msg("checkout started")

	return &model.CheckoutResponse{
		OrderNumber:    order.Number,
		PaymentPageURL: form.PaymentPageURL,
		Token:          form.Token,
		Total:          order.Total,
		Currency:       order.Currency,
	}, nil
}

// lineItems prices the cart. Every product must exist and be available.
func (s *CheckoutService) lineItems(ctx context.Context, cart *model.Cart) ([]model.LineItem, decimal.Decimal, error) {
	products, err := s.products.GetByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, decimal.Zero, err
	}

	var (
		items     = make([]model.LineItem, 0, len(cart.Items))
		subtotal  = decimal.Zero
		fieldErrs []errs.FieldError
	)
	for _, item := range cart.Items {
		p, ok := products[item.ProductID]
		if !ok || !p.Available {
			fieldErrs = append(fieldErrs, errs.FieldError{Field: "items." + item.ProductID.String(), Error: "is no longer available"})
			continue
		}
		total := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, model.LineItem{
			ProductID: p.ID,
			Slug:      p.Slug,
			Name:      p.Name,
			ImageURL:  p.PrimaryImage(),
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			LineTotal: total,
		})
		subtotal = subtotal.Add(total)
	}

	if len(fieldErrs) > 0 {
		return nil, decimal.Zero, errs.NewBadRequestError("Some products in the cart are no longer available", true,
			errs.Code("PRODUCT_UNAVAILABLE"), fieldErrs, nil)
	}
	return items, subtotal, nil
}

func (s *CheckoutService) initializeRequest(o *model.Order, customer *model.Customer) *payment.InitializeRequest {
	buyer := payment.Buyer{
		ID:    "guest-" + o.Number,
		Name:  o.ContactName,
		Email: o.ContactEmail,
		Phone: o.ContactPhone,
		City:  o.Delivery.City,
	}
	if customer != nil {
		buyer.ID = customer.ID.String()
	}

	basket := make([]payment.BasketItem, 0, len(o.Items)+1)
	for _, item := range o.Items {
		basket = append(basket, payment.BasketItem{
			ID:       item.ProductID.String(),
			Name:     item.Name,
			Category: "flowers",
			Quantity: item.Quantity,
			Price:    item.LineTotal,
		})
	}
	if o.DeliveryFee.IsPositive() {
		basket = append(basket, payment.BasketItem{
			ID:       "delivery",
			Name:     "Delivery",
			Category: "delivery",
			Quantity: 1,
			Price:    o.DeliveryFee,
		})
	}

	return &payment.InitializeRequest{
		ConversationID: o.Number,
		Price:          o.Total,
		PaidPrice:      o.Total,
		Currency:       o.Currency,
		CallbackURL:    s.callbackURL,
		Buyer:          buyer,
		ShippingAddress: payment.Address{
			ContactName: o.Delivery.RecipientName,
			City:        o.Delivery.City,
			Address:     o.Delivery.AddressLine,
			ZipCode:     o.Delivery.PostalCode,
		},
		BasketItems: basket,
	}
}

// markInitFailed records the gateway failure on the order so the customer
// can retry and admins can see why.
func (s *CheckoutService) markInitFailed(ctx context.Context, order *model.Order, cause error) {
	reason := "payment form could not be initialized"
	_, _, err := s.orders.Update(ctx, order.ID, func(o *model.Order) error {
		if o.ApplyPayment(model.PaymentOutcome{FailureReason: reason}, model.ActorSystem, s.now()) == model.PaymentUnchanged {
			return repository.ErrUnchanged
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).AnErr("cause", cause).Str("order_number", order.Number).Msg("failed to record payment init failure")
	}
}
