package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, slug, name, description, category, price, compare_at_price,
	image_urls, tags, available, created_at, updated_at`

func scanProduct(row pgx.Row, extra ...any) (*model.Product, error) {
	var p model.Product
	dest := []any{
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Category, &p.Price, &p.CompareAtPrice,
		&p.ImageURLs, &p.Tags, &p.Available, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &p, nil
}

var productOrderBy = map[string]string{
	model.SortNewest:    "created_at DESC, id",
	model.SortPriceAsc:  "price ASC, id",
	model.SortPriceDesc: "price DESC, id",
	model.SortName:      "name ASC, id",
}

// List returns one page of products and the total number of matches.
func (r *ProductRepository) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	var where []string
	args := pgx.NamedArgs{}
	if !f.IncludeUnavailable {
		where = append(where, "available")
	}
	if f.Category != "" {
		where = append(where, "category = @category")
		args["category"] = f.Category
	}
	if f.Query != "" {
		where = append(where, `(name ILIKE @q OR description ILIKE @q OR @tag = ANY(tags))`)
		args["q"] = likePattern(f.Query)
		args["tag"] = strings.ToLower(strings.TrimSpace(f.Query))
	}

	orderBy, ok := productOrderBy[f.Sort]
	if !ok {
		orderBy = productOrderBy[model.SortNewest]
	}

	query := `SELECT ` + productColumns + `, count(*) OVER () FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderBy + " LIMIT @limit OFFSET @offset"
	args["limit"] = f.Limit
	args["offset"] = f.Offset

	rows, err := r.pool.Query(ctx, query, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var (
		products []model.Product
		total    int
	)
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate products: %w", err)
	}

	if len(products) == 0 && f.Offset > 0 {
		// Past the last page; the window count is unavailable without rows.
		if err := r.pool.QueryRow(ctx, countProductsQuery(where), args).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count products: %w", err)
		}
	}
	return products, total, nil
}

func countProductsQuery(where []string) string {
	q := "SELECT count(*) FROM products"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
	if err != nil {
		return nil, wrapNoRows(err, "products")
	}
	return p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, wrapNoRows(err, "products")
	}
	return p, nil
}

// GetByIDs loads several products at once. Missing ids are simply absent
// from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	out := make(map[uuid.UUID]*model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ListAvailable returns every available product, used for the sitemap.
func (r *ProductRepository) ListAvailable(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE available ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list available products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Categories(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category, count(*)
		FROM products
		WHERE available
		GROUP BY category
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CategoryCount, error) {
		var c model.CategoryCount
		err := row.Scan(&c.Category, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}

// SlugExists reports whether slug is taken by a product other than exclude.
func (r *ProductRepository) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`, slug, exclude,
	).Scan(&exists)
	return exists, err
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (slug, name, description, category, price, compare_at_price, image_urls, tags, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		p.Slug, p.Name, p.Description, p.Category, p.Price, p.CompareAtPrice, nonNil(p.ImageURLs), nonNil(p.Tags), p.Available,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE products
		SET slug = $2, name = $3, description = $4, category = $5, price = $6,
		    compare_at_price = $7, image_urls = $8, tags = $9, available = $10
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.Slug, p.Name, p.Description, p.Category, p.Price, p.CompareAtPrice, nonNil(p.ImageURLs), nonNil(p.Tags), p.Available,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return wrapNoRows(err, "products")
	}
	return nil
}

const upsertProductSQL = `
	INSERT INTO products (slug, name, description, category, price, compare_at_price, image_urls, tags, available)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (slug) DO UPDATE
	SET name = EXCLUDED.name,
	    description = EXCLUDED.description,
	    category = EXCLUDED.category,
	    price = EXCLUDED.price,
	    compare_at_price = EXCLUDED.compare_at_price,
	    image_urls = EXCLUDED.image_urls,
	    tags = EXCLUDED.tags,
	    available = EXCLUDED.available
	RETURNING id, (xmax = 0) AS inserted`

func upsertArgs(p *model.Product) []any {
	return []any{p.Slug, p.Name, p.Description, p.Category, p.Price, p.CompareAtPrice, nonNil(p.ImageURLs), nonNil(p.Tags), p.Available}
}

// Upsert inserts or updates a product by slug and reports whether it was new.
func (r *ProductRepository) Upsert(ctx context.Context, p *model.Product) (bool, error) {
	var inserted bool
	if err := r.pool.QueryRow(ctx, upsertProductSQL, upsertArgs(p)...).Scan(&p.ID, &inserted); err != nil {
		return false, fmt.Errorf("failed to upsert product %q: %w", p.Slug, err)
	}
	return inserted, nil
}

// UpsertBatch upserts products in a single round trip. The batch runs in
// one implicit transaction, so any failing row fails the whole batch.
func (r *ProductRepository) UpsertBatch(ctx context.Context, products []*model.Product) (created, updated int, err error) {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(upsertProductSQL, upsertArgs(p)...).QueryRow(func(row pgx.Row) error {
			var inserted bool
			if err := row.Scan(&p.ID, &inserted); err != nil {
				return err
			}
			if inserted {
				created++
			} else {
				updated++
			}
			return nil
		})
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to upsert product batch: %w", err)
	}
	return created, updated, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
