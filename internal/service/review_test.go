package service

import (
	"context"
	"sync"
	"testing"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviews struct {
	mu      sync.Mutex
	reviews []model.Review
}

func (f *fakeReviews) ListByProduct(_ context.Context, productID uuid.UUID, limit, offset int) ([]model.Review, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Review
	for _, rv := range f.reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	return out[offset:min(offset+limit, total)], total, nil
}

func (f *fakeReviews) Summary(_ context.Context, productID uuid.UUID) (model.ReviewSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := model.ReviewSummary{Histogram: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, rv := range f.reviews {
		if rv.ProductID == productID {
			s.TotalCount++
			s.Histogram[rv.Rating]++
			sum += rv.Rating
		}
	}
	s.AverageRating = model.AverageRating(sum, s.TotalCount)
	return s, nil
}

func (f *fakeReviews) Exists(_ context.Context, productID, customerID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rv := range f.reviews {
		if rv.ProductID == productID && rv.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviews) Create(_ context.Context, rv *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews = append(f.reviews, *rv)
	return nil
}

func TestReview_CreateAndList(t *testing.T) {
	ctx := context.Background()
	roses := testProduct("red-roses", "450", true)
	orders := newFakeOrders()
	orders.paidFor[roses.ID] = true
	reviews := &fakeReviews{}
	svc := NewReviewService(reviews, newFakeProducts(roses), orders)
	svc.now = fixedNow

	jane := &model.Customer{ID: uuid.New(), FirstName: "Jane", LastName: "doe"}
	rv, err := svc.Create(ctx, jane, &model.CreateReviewRequest{Slug: "red-roses", Rating: 5, Title: " Lovely ", Body: "Fresh for a week."})
	require.NoError(t, err)
	assert.Equal(t, "Jane D.", rv.AuthorName)
	assert.Equal(t, "Lovely", rv.Title)
	assert.True(t, rv.VerifiedPurchase)

	orders.paidFor[roses.ID] = false
	anon := &model.Customer{ID: uuid.New()}
	rv, err = svc.Create(ctx, anon, &model.CreateReviewRequest{Slug: "red-roses", Rating: 2, Title: "Meh"})
	require.NoError(t, err)
	assert.Equal(t, "Customer", rv.AuthorName)
	assert.False(t, rv.VerifiedPurchase)

	_, err = svc.Create(ctx, jane, &model.CreateReviewRequest{Slug: "red-roses", Rating: 4, Title: "Again"})
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "REVIEW_EXISTS", httpErr.Code)

	page, err := svc.List(ctx, "red-roses", model.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 3.5, page.Summary.AverageRating)
	assert.Equal(t, 1, page.Summary.Histogram[5])

	_, err = svc.List(ctx, "tulips", model.PageQuery{})
	assert.Equal(t, 404, errs.StatusOf(err))
}

func TestAuthorName(t *testing.T) {
	assert.Equal(t, "Jane D.", authorName(&model.Customer{FirstName: "Jane", LastName: "Doe"}))
	assert.Equal(t, "Ayşe Ö.", authorName(&model.Customer{FirstName: "Ayşe", LastName: "özkan"}))
	assert.Equal(t, "Jane", authorName(&model.Customer{FirstName: "Jane"}))
	assert.Equal(t, "Customer", authorName(&model.Customer{LastName: "Doe"}))
}
