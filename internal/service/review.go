package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
)

type ReviewService struct {
	reviews  ReviewStore
	products ProductStore
	orders   OrderStore
	now      func() time.Time
}

func NewReviewService(reviews ReviewStore, products ProductStore, orders OrderStore) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, orders: orders, now: time.Now}
}

func (s *ReviewService) List(ctx context.Context, slug string, q model.PageQuery) (*model.ReviewPage, error) {
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundAs(err, "Product not found")
	}

	page, pageSize, offset := q.Normalize()
	reviews, total, err := s.reviews.ListByProduct(ctx, p.ID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	summary, err := s.reviews.Summary(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return &model.ReviewPage{
		Paginated: model.NewPaginated(reviews, page, pageSize, total),
		Summary:   summary,
	}, nil
}

// Create adds the customer's review. A customer reviews a product once;
// the review is marked verified when they have a paid order with it.
func (s *ReviewService) Create(ctx context.Context, customer *model.Customer, req *model.CreateReviewRequest) (*model.Review, error) {
	p, err := s.products.GetBySlug(ctx, req.Slug)
	if err != nil {
		return nil, notFoundAs(err, "Product not found")
	}

	exists, err := s.reviews.Exists(ctx, p.ID, customer.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.NewConflictError("You have already reviewed this product", true, errs.Code("REVIEW_EXISTS"))
	}

	verified, err := s.orders.HasPaidOrderWithProduct(ctx, customer.ID, p.ID)
	if err != nil {
		return nil, err
	}

	rv := &model.Review{
		ID:               uuid.New(),
		ProductID:        p.ID,
		CustomerID:       customer.ID,
		AuthorName:       authorName(customer),
		Rating:           req.Rating,
		Title:            strings.TrimSpace(req.Title),
		Body:             strings.TrimSpace(req.Body),
		VerifiedPurchase: verified,
		CreatedAt:        s.now(),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// authorName shows "Jane D." for Jane Doe.
func authorName(c *model.Customer) string {
	first := strings.TrimSpace(c.FirstName)
	if first == "" {
		return "Customer"
	}
	last := strings.TrimSpace(c.LastName)
	if r, _ := utf8.DecodeRuneInString(last); r != utf8.RuneError {
		return first + " " + strings.ToUpper(string(r)) + "."
	}
	return first
}
