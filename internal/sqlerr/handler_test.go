package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestHandleError_UniqueViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "products",
		ConstraintName: "products_slug_key",
	})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "SLUG_TAKEN", httpErr.Code)
	assert.Equal(t, "A product with this slug already exists", httpErr.Message)
	assert.True(t, httpErr.Override)

	httpErr = asHTTPError(t, HandleError(&pgconn.PgError{
		Code:           "23505",
		TableName:      "reviews",
		ConstraintName: "reviews_product_id_customer_id_key",
	}))
	assert.Equal(t, "REVIEW_EXISTS", httpErr.Code)
}

func TestHandleError_UnknownUniqueConstraint(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(&pgconn.PgError{
		Code:           "23505",
		TableName:      "visitor_sessions",
		ConstraintName: "unique_visitor_sessions_path",
	}))
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "VISITOR_SESSION_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "A Visitor Session with this Path already exists", httpErr.Message)
}

func TestHandleError_ForeignKeyViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:       "23503",
		TableName:  "reviews",
		ColumnName: "product_id",
	})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, "REVIEW_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "The referenced Product does not exist", httpErr.Message)
}

func TestHandleError_NotNullViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:       "23502",
		TableName:  "orders",
		ColumnName: "contact_email",
	})

	httpErr := asHTTPError(t, err)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "contact_email", httpErr.Errors[0].Field)
	assert.Equal(t, "The Contact Email is required", httpErr.Message)
}

func TestHandleError_NoRows(t *testing.T) {
	err := HandleError(fmt.Errorf("table:orders: %w", pgx.ErrNoRows))
	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Order not found", httpErr.Message)

	httpErr = asHTTPError(t, HandleError(pgx.ErrNoRows))
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleError_PassThroughAndFallback(t *testing.T) {
	original := errs.NewConflictError("nope", true, nil)
	assert.Same(t, original, HandleError(original))

	httpErr := asHTTPError(t, HandleError(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_customers_email"))
	assert.Equal(t, "number", extractColumnForUniqueViolation("orders_number_key"))
	assert.Equal(t, "", extractColumnForUniqueViolation("reviews_pkey"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
}
