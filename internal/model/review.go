package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Review is a customer's rating of a product. One per customer per product.
type Review struct {
	ID               uuid.UUID `json:"id"`
	ProductID        uuid.UUID `json:"product_id"`
	CustomerID       uuid.UUID `json:"-"`
	AuthorName       string    `json:"author_name"`
	Rating           int       `json:"rating"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	CreatedAt        time.Time `json:"created_at"`
}

// ReviewSummary contains aggregate review statistics for a product.
// Histogram is indexed by star count (1..5).
type ReviewSummary struct {
	AverageRating float64     `json:"average_rating"`
	TotalCount    int         `json:"total_count"`
	Histogram     map[int]int `json:"histogram"`
}

// AverageRating rounds sum/count to one decimal; zero reviews average 0.
func AverageRating(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

// ReviewPage is a page of reviews with the product's summary.
type ReviewPage struct {
	Paginated[Review]
	Summary ReviewSummary `json:"summary"`
}

type ListReviewsRequest struct {
	PageQuery
	Slug string `param:"slug" validate:"required,max=160"`
}

func (r *ListReviewsRequest) Validate() error {
	return validate.Struct(r)
}

type CreateReviewRequest struct {
	Slug   string `param:"slug" validate:"required,max=160"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Title  string `json:"title" validate:"required,min=2,max=120"`
	Body   string `json:"body" validate:"max=4000"`
}

func (r *CreateReviewRequest) Validate() error {
	return validate.Struct(r)
}
