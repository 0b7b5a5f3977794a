package service

import (
	"context"
	"testing"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPricing() Pricing {
	return Pricing{
		Currency:      "TRY",
		DeliveryFee:   decimal.RequireFromString("49.90"),
		FreeThreshold: decimal.RequireFromString("1000"),
		HasThreshold:  true,
	}
}

func TestPricing_DeliveryFeeFor(t *testing.T) {
	p := testPricing()
	assert.True(t, p.DeliveryFeeFor(decimal.Zero).IsZero())
	assert.Equal(t, "49.9", p.DeliveryFeeFor(decimal.RequireFromString("999.99")).String())
	assert.True(t, p.DeliveryFeeFor(decimal.RequireFromString("1000")).IsZero())

	p.HasThreshold = false
	assert.Equal(t, "49.9", p.DeliveryFeeFor(decimal.RequireFromString("5000")).String())
}

func TestCartService_Flow(t *testing.T) {
	ctx := context.Background()
	roses := testProduct("red-roses", "450", true)
	lilies := testProduct("white-lilies", "300", true)
	gone := testProduct("sold-out", "100", false)
	svc := NewCartService(newFakeCarts(), newFakeProducts(roses, lilies, gone), testPricing())
	svc.now = fixedNow

	cart, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.True(t, cart.Total.IsZero())

	cart, err = svc.SetItem(ctx, cart.ID, roses.ID, 2)
	require.NoError(t, err)
	cart, err = svc.SetItem(ctx, cart.ID, lilies.ID, 1)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "1200", cart.Subtotal.String())
	assert.True(t, cart.DeliveryFee.IsZero(), "free delivery above threshold")
	assert.Equal(t, "1200", cart.Total.String())

	cart, err = svc.SetItem(ctx, cart.ID, roses.ID, 0)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "300", cart.Subtotal.String())
	assert.Equal(t, "349.9", cart.Total.String())

	cart, err = svc.RemoveItem(ctx, cart.ID, lilies.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_SetItem_Rejects(t *testing.T) {
	ctx := context.Background()
	gone := testProduct("sold-out", "100", false)
	svc := NewCartService(newFakeCarts(), newFakeProducts(gone), testPricing())

	cart, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.SetItem(ctx, cart.ID, gone.ID, 1)
	assert.Equal(t, 400, errs.StatusOf(err))

	_, err = svc.SetItem(ctx, cart.ID, uuid.New(), 1)
	assert.Equal(t, 400, errs.StatusOf(err))

	_, err = svc.Get(ctx, uuid.NewString())
	assert.Equal(t, 404, errs.StatusOf(err))
}

func TestCartService_UnavailableLinesAreNotCharged(t *testing.T) {
	ctx := context.Background()
	roses := testProduct("red-roses", "450", true)
	products := newFakeProducts(roses)
	carts := newFakeCarts()
	svc := NewCartService(carts, products, testPricing())

	cart, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.SetItem(ctx, cart.ID, roses.ID, 1)
	require.NoError(t, err)

	products.byID[roses.ID].Available = false

	priced, err := svc.Get(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, priced.Lines, 1)
	assert.False(t, priced.Lines[0].Available)
	assert.True(t, priced.Total.IsZero())
	assert.Zero(t, priced.ItemCount)
}
