package service

import (
	"context"
	"encoding/xml"
	"testing"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSEO(reviews *fakeReviews, products ...*model.Product) *SEOService {
	return NewSEOService(newFakeProducts(products...), reviews, "Petal & Stem", "https://shop.example/", "TRY")
}

func TestSEO_Sitemap(t *testing.T) {
	roses := testProduct("red-roses", "450", true)
	hidden := testProduct("old-roses", "450", false)
	svc := newTestSEO(&fakeReviews{}, roses, hidden)

	out, err := svc.Sitemap(context.Background())
	require.NoError(t, err)

	var set sitemapURLSet
	require.NoError(t, xml.Unmarshal(out, &set))
	assert.Contains(t, string(out), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	locs := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
	}
	assert.Contains(t, locs, "https://shop.example/")
	assert.Contains(t, locs, "https://shop.example/categories/roses")
	assert.Contains(t, locs, "https://shop.example/products/red-roses")
	assert.NotContains(t, locs, "https://shop.example/products/old-roses")
	assert.Equal(t, "2026-10-19", set.URLs[len(set.URLs)-1].LastMod)
}

func TestSEO_Robots(t *testing.T) {
	robots := newTestSEO(&fakeReviews{}).Robots()
	assert.Contains(t, robots, "Disallow: /api/\n")
	assert.Contains(t, robots, "Sitemap: https://shop.example/sitemap.xml")
}

func TestSEO_ProductMeta(t *testing.T) {
	ctx := context.Background()
	roses := testProduct("red-roses", "450", true)
	roses.Name = "Red Roses"
	roses.Category = "birthday-flowers"
	reviews := &fakeReviews{reviews: []model.Review{
		{ProductID: roses.ID, CustomerID: uuid.New(), Rating: 5},
		{ProductID: roses.ID, CustomerID: uuid.New(), Rating: 4},
	}}
	svc := newTestSEO(reviews, roses, testProduct("old-roses", "1", false))

	meta, err := svc.ProductMeta(ctx, "red-roses")
	require.NoError(t, err)
	assert.Equal(t, "Red Roses | Petal & Stem", meta.Title)
	assert.Equal(t, "Red Roses, delivered fresh by Petal & Stem.", meta.Description)
	assert.Equal(t, "https://shop.example/products/red-roses", meta.CanonicalURL)
	assert.Equal(t, "product", meta.OpenGraph.Type)
	assert.Equal(t, roses.ImageURLs[0], meta.OpenGraph.Image)

	assert.Equal(t, "Product", meta.JSONLD["@type"])
	assert.Equal(t, "Birthday Flowers", meta.JSONLD["category"])
	offer := meta.JSONLD["offers"].(map[string]any)
	assert.Equal(t, "450.00", offer["price"])
	assert.Equal(t, "TRY", offer["priceCurrency"])
	rating := meta.JSONLD["aggregateRating"].(map[string]any)
	assert.Equal(t, 4.5, rating["ratingValue"])
	assert.Equal(t, 2, rating["reviewCount"])

	_, err = svc.ProductMeta(ctx, "old-roses")
	assert.Equal(t, 404, errs.StatusOf(err))
}

func TestSEO_ProductMetaWithoutReviews(t *testing.T) {
	roses := testProduct("red-roses", "450", true)
	roses.Description = "Twelve long-stemmed red roses."
	svc := newTestSEO(&fakeReviews{}, roses)

	meta, err := svc.ProductMeta(context.Background(), "red-roses")
	require.NoError(t, err)
	assert.Equal(t, "Twelve long-stemmed red roses.", meta.Description)
	assert.NotContains(t, meta.JSONLD, "aggregateRating")
}

func TestSEO_CategoryMeta(t *testing.T) {
	svc := newTestSEO(&fakeReviews{}, testProduct("red-roses", "450", true), testProduct("white-roses", "450", true))

	meta, err := svc.CategoryMeta(context.Background(), "Roses")
	require.NoError(t, err)
	assert.Equal(t, "Roses | Petal & Stem", meta.Title)
	assert.Contains(t, meta.Description, "2 designs")
	assert.Equal(t, "https://shop.example/categories/roses", meta.CanonicalURL)
	assert.Equal(t, "CollectionPage", meta.JSONLD["@type"])

	_, err = svc.CategoryMeta(context.Background(), "cacti")
	assert.Equal(t, 404, errs.StatusOf(err))
}
