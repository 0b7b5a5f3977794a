package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogService struct {
	products ProductStore
	now      func() time.Time
}

func NewCatalogService(products ProductStore) *CatalogService {
	return &CatalogService{products: products, now: time.Now}
}

func (s *CatalogService) ListProducts(ctx context.Context, req *model.ListProductsRequest) (model.Paginated[model.Product], error) {
	page, pageSize, offset := req.Normalize()

	products, total, err := s.products.List(ctx, model.ProductFilter{
		Category: strings.TrimSpace(req.Category),
		Query:    strings.TrimSpace(req.Q),
		Sort:     req.Sort,
		Limit:    pageSize,
		Offset:   offset,
	})
	if err != nil {
		return model.Paginated[model.Product]{}, err
	}
	return model.NewPaginated(products, page, pageSize, total), nil
}

// GetProduct returns an available product. Unavailable products are hidden
// from shoppers like missing ones.
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*model.Product, error) {
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundAs(err, "Product not found")
	}
	if !p.Available {
		return nil, errs.NewNotFoundError("Product not found", true, nil)
	}
	return p, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.CategoryCount, error) {
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.CategoryCount{}
	}
	return categories, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in *model.ProductInput) (*model.Product, error) {
	p := newProduct(in, s.now())
	if err := s.checkSlug(ctx, p.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in *model.ProductInput) (*model.Product, error) {
	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Product not found")
	}

	p := newProduct(in, s.now())
	p.ID = current.ID
	p.CreatedAt = current.CreatedAt
	if in.Available == nil {
		p.Available = current.Available
	}

	if err := s.checkSlug(ctx, p.Slug, id); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, notFoundAs(err, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) checkSlug(ctx context.Context, slug string, exclude uuid.UUID) error {
	if slug == "" {
		return errs.NewBadRequestError("Product name does not produce a usable slug", true, nil,
			[]errs.FieldError{{Field: "slug", Error: "is required"}}, nil)
	}
	exists, err := s.products.SlugExists(ctx, slug, exclude)
	if err != nil {
		return err
	}
	if exists {
		return errs.NewConflictError(fmt.Sprintf("A product with slug %q already exists", slug), true, errs.Code("SLUG_TAKEN"))
	}
	return nil
}

// newProduct maps validated input to a product. The slug is normalized and
// derived from the name when empty; products are available unless told
// otherwise.
func newProduct(in *model.ProductInput, now time.Time) *model.Product {
	slug := utils.Slugify(in.Slug)
	if slug == "" {
		slug = utils.Slugify(in.Name)
	}

	available := true
	if in.Available != nil {
		available = *in.Available
	}

	var compareAt *decimal.Decimal
	if in.CompareAtPrice != nil {
		v := in.CompareAtPrice.Round(2)
		compareAt = &v
	}

	return &model.Product{
		ID:             uuid.New(),
		Slug:           slug,
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		Category:       strings.ToLower(strings.TrimSpace(in.Category)),
		Price:          in.Price.Round(2),
		CompareAtPrice: compareAt,
		ImageURLs:      in.ImageURLs,
		Tags:           in.Tags,
		Available:      available,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
