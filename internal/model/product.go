package model

import (
	"time"

	"github.com/deppfellow/storefront/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item (bouquet, arrangement, plant, gift).
type Product struct {
	ID             uuid.UUID        `json:"id"`
	Slug           string           `json:"slug"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	ImageURLs      []string         `json:"image_urls"`
	Tags           []string         `json:"tags"`
	Available      bool             `json:"available"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// PrimaryImage returns the first image URL or "".
func (p *Product) PrimaryImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

// Product listing sort orders.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category           string
	Query              string
	Sort               string
	IncludeUnavailable bool
	Limit              int
	Offset             int
}

// CategoryCount is one entry of the category navigation.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ------------------------------------------------------------
// Payloads
// ------------------------------------------------------------

type ListProductsRequest struct {
	PageQuery
	Category string `query:"category" validate:"omitempty,max=64"`
	Q        string `query:"q" validate:"omitempty,max=100"`
	Sort     string `query:"sort" validate:"omitempty,oneof=newest price_asc price_desc name"`
}

func (r *ListProductsRequest) Validate() error {
	return validate.Struct(r)
}

type GetProductRequest struct {
	Slug string `param:"slug" validate:"required,max=160"`
}

func (r *GetProductRequest) Validate() error {
	return validate.Struct(r)
}

type ListCategoriesRequest struct{}

func (r *ListCategoriesRequest) Validate() error {
	return nil
}

// ProductInput is the shared body of create, update and bulk import.
type ProductInput struct {
	Slug           string           `json:"slug" validate:"omitempty,max=160"`
	Name           string           `json:"name" validate:"required,min=2,max=160"`
	Description    string           `json:"description" validate:"max=5000"`
	Category       string           `json:"category" validate:"required,max=64"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	ImageURLs      []string         `json:"image_urls" validate:"omitempty,dive,url"`
	Tags           []string         `json:"tags" validate:"omitempty,dive,max=40"`
	Available      *bool            `json:"available"`
}

// Validate runs tag validation, then the price rules tags cannot express.
func (r *ProductInput) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}

	var custom validation.CustomValidationErrors
	if !r.Price.IsPositive() {
		custom = append(custom, validation.CustomValidationError{Field: "price", Message: "must be greater than 0"})
	}
	if r.CompareAtPrice != nil && r.CompareAtPrice.LessThanOrEqual(r.Price) {
		custom = append(custom, validation.CustomValidationError{Field: "compare_at_price", Message: "must be greater than price"})
	}
	if len(custom) > 0 {
		return custom
	}
	return nil
}

type CreateProductRequest struct {
	ProductInput
}

func (r *CreateProductRequest) Validate() error {
	return r.ProductInput.Validate()
}

type UpdateProductRequest struct {
	ID string `param:"id" validate:"required,uuid"`
	ProductInput
}

func (r *UpdateProductRequest) Validate() error {
	if err := validate.Var(r.ID, "required,uuid"); err != nil {
		return validation.CustomValidationErrors{{Field: "id", Message: "must be a valid UUID"}}
	}
	return r.ProductInput.Validate()
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
