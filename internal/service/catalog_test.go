package service

import (
	"context"
	"testing"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(products ...*model.Product) (*CatalogService, *fakeProducts) {
	store := newFakeProducts(products...)
	svc := NewCatalogService(store)
	svc.now = fixedNow
	return svc, store
}

func TestCatalog_ListAndGet(t *testing.T) {
	ctx := context.Background()
	hidden := testProduct("retired-roses", "10", false)
	svc, _ := newTestCatalog(testProduct("red-roses", "450", true), testProduct("white-roses", "500", true), hidden)

	page, err := svc.ListProducts(ctx, &model.ListProductsRequest{PageQuery: model.PageQuery{PageSize: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "red-roses", page.Data[0].Slug)

	p, err := svc.GetProduct(ctx, "white-roses")
	require.NoError(t, err)
	assert.Equal(t, "500", p.Price.String())

	_, err = svc.GetProduct(ctx, "retired-roses")
	assert.Equal(t, 404, errs.StatusOf(err))
	_, err = svc.GetProduct(ctx, "nope")
	assert.Equal(t, 404, errs.StatusOf(err))
}

func TestCatalog_ListCategoriesNeverNil(t *testing.T) {
	svc, _ := newTestCatalog()
	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestCatalog_CreateProduct(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestCatalog()

	p, err := svc.CreateProduct(ctx, &model.ProductInput{
		Name:     "  Pembe Güller ",
		Category: "Roses",
		Price:    decimal.RequireFromString("349.999"),
	})
	require.NoError(t, err)
	assert.Equal(t, "pembe-guller", p.Slug)
	assert.Equal(t, "Pembe Güller", p.Name)
	assert.Equal(t, "roses", p.Category)
	assert.Equal(t, "350", p.Price.String())
	assert.True(t, p.Available)
	assert.Equal(t, testNow, p.CreatedAt)

	stored, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Slug, stored.Slug)

	_, err = svc.CreateProduct(ctx, &model.ProductInput{Name: "Pembe Guller", Category: "roses", Price: decimal.NewFromInt(1)})
	assert.Equal(t, 409, errs.StatusOf(err))

	_, err = svc.CreateProduct(ctx, &model.ProductInput{Name: "!!", Category: "roses", Price: decimal.NewFromInt(1)})
	assert.Equal(t, 400, errs.StatusOf(err))
}

func TestCatalog_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	existing := testProduct("red-roses", "450", false)
	other := testProduct("white-roses", "500", true)
	svc, _ := newTestCatalog(existing, other)

	p, err := svc.UpdateProduct(ctx, existing.ID, &model.ProductInput{
		Slug:     "red-roses",
		Name:     "Red Roses Deluxe",
		Category: "roses",
		Price:    decimal.RequireFromString("520"),
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID)
	assert.Equal(t, "red-roses", p.Slug)
	assert.False(t, p.Available, "availability is kept when not sent")

	_, err = svc.UpdateProduct(ctx, existing.ID, &model.ProductInput{
		Slug: "white-roses", Name: "Clash", Category: "roses", Price: decimal.NewFromInt(1),
	})
	assert.Equal(t, 409, errs.StatusOf(err))

	_, err = svc.UpdateProduct(ctx, uuid.New(), &model.ProductInput{Name: "Ghost", Category: "roses", Price: decimal.NewFromInt(1)})
	assert.Equal(t, 404, errs.StatusOf(err))
}
