package service

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc      *CheckoutService
	carts    *fakeCarts
	products *fakeProducts
	orders   *fakeOrders
	gateway  *fakeGateway
	roses    *model.Product
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		carts:   newFakeCarts(),
		orders:  newFakeOrders(),
		gateway: newFakeGateway(),
		roses:   testProduct("red-roses", "450", true),
	}
	f.products = newFakeProducts(f.roses)
	f.svc = NewCheckoutService(f.carts, f.products, f.orders, f.gateway, testPricing(), "https://api.example.com/", nopLogger())
	f.svc.now = fixedNow
	return f
}

func (f *checkoutFixture) cart(t *testing.T, items ...model.CartItem) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, f.carts.Save(context.Background(), &model.Cart{ID: id, Items: items}))
	return id
}

func checkoutRequest(cartID string) *model.CheckoutRequest {
	return &model.CheckoutRequest{
		CartID:  cartID,
		Contact: model.ContactInput{Email: "Jane@Example.com", Name: "Jane Doe", Phone: "+905551112233"},
		Delivery: model.DeliveryInput{
			RecipientName:  "John Doe",
			RecipientPhone: "+905554445566",
			AddressLine:    "Bagdat Cd. 12",
			City:           "Istanbul",
			Date:           "2026-10-20",
			TimeSlot:       "morning",
		},
	}
}

func TestCheckout_CreatesOrderAndPaymentForm(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cart(t, model.CartItem{ProductID: f.roses.ID, Quantity: 2})
	customer := &model.Customer{ID: uuid.New()}

	res, err := f.svc.Checkout(context.Background(), checkoutRequest(cartID), customer)
	require.NoError(t, err)

	assert.Regexp(t, `^FL-[0-9A-F]{10}$`, res.OrderNumber)
	assert.Equal(t, "tok-"+res.OrderNumber, res.Token)
	assert.Equal(t, "https://pay.example/tok-"+res.OrderNumber, res.PaymentPageURL)
	assert.Equal(t, "949.9", res.Total.String())

	order, err := f.orders.GetByNumber(context.Background(), res.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusAwaiting, order.Payment.Status)
	assert.Equal(t, res.Token, order.Payment.Token)
	assert.Equal(t, "jane@example.com", order.ContactEmail)
	assert.Equal(t, customer.ID, *order.CustomerID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "450", order.Items[0].UnitPrice.String())
	assert.Equal(t, "900", order.Items[0].LineTotal.String())
	require.Len(t, order.Timeline, 1)

	require.Len(t, f.gateway.initialized, 1)
	init := f.gateway.initialized[0]
	assert.Equal(t, "https://api.example.com"+CallbackPath, init.CallbackURL)
	assert.Equal(t, res.OrderNumber, init.ConversationID)
	require.Len(t, init.BasketItems, 2, "products plus delivery")

	assert.Equal(t, []string{cartID}, f.carts.deleted)
}

func TestCheckout_PriceFrozenAtCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cart(t, model.CartItem{ProductID: f.roses.ID, Quantity: 1})

	res, err := f.svc.Checkout(context.Background(), checkoutRequest(cartID), nil)
	require.NoError(t, err)

	f.products.byID[f.roses.ID].Price = f.roses.Price.Mul(f.roses.Price)

	order, err := f.orders.GetByNumber(context.Background(), res.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "450", order.Items[0].UnitPrice.String())
	assert.Nil(t, order.CustomerID, "guest checkout")
}

func TestCheckout_Rejects(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, checkoutRequest(uuid.NewString()), nil)
	assert.Equal(t, 404, errs.StatusOf(err))

	_, err = f.svc.Checkout(ctx, checkoutRequest(f.cart(t)), nil)
	assert.Equal(t, 400, errs.StatusOf(err))

	gone := testProduct("gone", "10", false)
	f.products.byID[gone.ID] = gone
	_, err = f.svc.Checkout(ctx, checkoutRequest(f.cart(t, model.CartItem{ProductID: gone.ID, Quantity: 1})), nil)
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "PRODUCT_UNAVAILABLE", httpErr.Code)
	require.Len(t, httpErr.Errors, 1)

	assert.Empty(t, f.orders.orders, "no order for rejected checkouts")
}

func TestCheckout_GatewayFailure(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.initErr = errors.New("connection refused")
	cartID := f.cart(t, model.CartItem{ProductID: f.roses.ID, Quantity: 1})

	_, err := f.svc.Checkout(context.Background(), checkoutRequest(cartID), nil)
	assert.Equal(t, 502, errs.StatusOf(err))

	require.Len(t, f.orders.orders, 1)
	for _, o := range f.orders.orders {
		assert.Equal(t, model.OrderStatusPending, o.Status)
		assert.Equal(t, model.PaymentStatusFailed, o.Payment.Status)
		assert.NotEmpty(t, o.Payment.FailureReason)
	}
	assert.Empty(t, f.carts.deleted, "cart is kept so the customer can retry")
}
