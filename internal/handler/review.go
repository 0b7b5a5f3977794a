package handler

import (
	"net/http"

	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	Handler
	reviews   *service.ReviewService
	customers *service.CustomerService
}

func (h *ReviewHandler) ListReviews(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.ListReviewsRequest) (*model.ReviewPage, error) {
		return h.reviews.List(c.Request().Context(), req.Slug, req.PageQuery)
	}, http.StatusOK, &model.ListReviewsRequest{})(c)
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, req *model.CreateReviewRequest) (*model.Review, error) {
		customer, err := h.customers.Me(c.Request().Context(), middleware.GetUserID(c))
		if err != nil {
			return nil, err
		}
		return h.reviews.Create(c.Request().Context(), customer, req)
	}, http.StatusCreated, &model.CreateReviewRequest{})(c)
}
