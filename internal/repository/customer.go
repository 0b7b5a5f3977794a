package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, auth_subject, email, first_name, last_name, phone, created_at, updated_at`

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.AuthSubject, &c.Email, &c.FirstName, &c.LastName, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrapNoRows(err, "customers")
	}
	return &c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

func (r *CustomerRepository) GetByAuthSubject(ctx context.Context, subject string) (*model.Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE auth_subject = $1`, subject))
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower($1)`, email))
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (auth_subject, email, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		c.AuthSubject, c.Email, c.FirstName, c.LastName, c.Phone,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// UpdateProfile changes the editable profile fields.
func (r *CustomerRepository) UpdateProfile(ctx context.Context, c *model.Customer) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE customers SET first_name = $2, last_name = $3, phone = $4
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.FirstName, c.LastName, c.Phone,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return wrapNoRows(err, "customers")
	}
	return nil
}
