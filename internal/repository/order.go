package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, number, customer_id, contact_email, contact_name, contact_phone, status,
	items, delivery, payment, timeline, subtotal, delivery_fee, total, currency, created_at, updated_at`

func scanOrder(row pgx.Row, extra ...any) (*model.Order, error) {
	var o model.Order
	dest := []any{
		&o.ID, &o.Number, &o.CustomerID, &o.ContactEmail, &o.ContactName, &o.ContactPhone, &o.Status,
		&o.Items, &o.Delivery, &o.Payment, &o.Timeline, &o.Subtotal, &o.DeliveryFee, &o.Total,
		&o.Currency, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows, extra ...any) ([]model.Order, error) {
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows, extra...)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Create(ctx context.Context, o *model.Order) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (number, customer_id, contact_email, contact_name, contact_phone, status,
			items, delivery, payment, timeline, subtotal, delivery_fee, total, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		o.Number, o.CustomerID, o.ContactEmail, o.ContactName, o.ContactPhone, o.Status,
		o.Items, o.Delivery, o.Payment, o.Timeline, o.Subtotal, o.DeliveryFee, o.Total, o.Currency,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, wrapNoRows(err, "orders")
	}
	return o, nil
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number))
	if err != nil {
		return nil, wrapNoRows(err, "orders")
	}
	return o, nil
}

func (r *OrderRepository) GetByPaymentToken(ctx context.Context, token string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment ->> 'token' = $1`, token))
	if err != nil {
		return nil, wrapNoRows(err, "orders")
	}
	return o, nil
}

// List returns a page of orders, newest first, and the total match count.
func (r *OrderRepository) List(ctx context.Context, f model.OrderFilter) ([]model.Order, int, error) {
	args := pgx.NamedArgs{
		"limit":  f.PageSize,
		"offset": (f.Page - 1) * f.PageSize,
	}
	query := `SELECT ` + orderColumns + `, count(*) OVER () FROM orders WHERE true`
	if f.CustomerID != nil {
		query += ` AND customer_id = @customer_id`
		args["customer_id"] = *f.CustomerID
	}
	if f.Status != "" {
		query += ` AND status = @status`
		args["status"] = string(f.Status)
	}
	query += ` ORDER BY created_at DESC, id LIMIT @limit OFFSET @offset`

	rows, err := r.pool.Query(ctx, query, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	var total int
	orders, err := collectOrders(rows, &total)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Update loads the order under a row lock, lets fn mutate it and writes the
// result back in the same transaction. Concurrent webhook, callback and
// admin updates of one order are serialized here. When fn returns
// ErrUnchanged nothing is written and changed is false.
func (r *OrderRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Order) error) (order *model.Order, changed bool, err error) {
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return wrapNoRows(err, "orders")
		}
		order = o

		if err := fn(o); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			UPDATE orders
			SET status = $2, items = $3, delivery = $4, payment = $5, timeline = $6, updated_at = now()
			WHERE id = $1
			RETURNING updated_at`,
			o.ID, o.Status, o.Items, o.Delivery, o.Payment, o.Timeline,
		).Scan(&o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		changed = true
		return nil
	})

	if errors.Is(err, ErrUnchanged) {
		return order, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return order, changed, nil
}

// ListStalePending returns pending, unpaid orders created before cutoff.
func (r *OrderRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = 'pending'
		  AND coalesce(payment ->> 'status', '') NOT IN ('paid', 'refund_required')
		  AND created_at < $1
		ORDER BY created_at
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale orders: %w", err)
	}
	return collectOrders(rows)
}

// ListAwaitingPayment returns pending orders that have a gateway token but
// no recorded result, oldest first.
func (r *OrderRepository) ListAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = 'pending'
		  AND payment ->> 'status' = 'awaiting_payment'
		  AND coalesce(payment ->> 'token', '') <> ''
		  AND created_at < $1
		ORDER BY created_at
		LIMIT $2`, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders awaiting payment: %w", err)
	}
	return collectOrders(rows)
}

// HasPaidOrderWithProduct backs the verified purchase flag on reviews.
func (r *OrderRepository) HasPaidOrderWithProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE customer_id = $1
			  AND payment ->> 'status' = 'paid'
			  AND items @> jsonb_build_array(jsonb_build_object('product_id', $2::text))
		)`, customerID, productID.String(),
	).Scan(&exists)
	return exists, err
}
