package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *server.Server {
	l := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{Primary: config.Primary{Env: "test"}},
		Logger: &l,
	}
}

func newTestEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

type noteRequest struct {
	Name string `json:"name"`
	Note string `json:"note"`
}

func (r *noteRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestHandle_FreshRequestPerCall(t *testing.T) {
	s := testServer()
	e := newTestEcho(s)
	e.POST("/notes", Handle(NewHandler(s), func(c echo.Context, req *noteRequest) (*noteRequest, error) {
		return req, nil
	}, http.StatusCreated, &noteRequest{}))

	rec := do(e, http.MethodPost, "/notes", `{"name":"first","note":"keep me"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPost, "/notes", `{"name":"second"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got noteRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "second", got.Name)
	assert.Empty(t, got.Note, "a previous request's fields must not leak")
}

func TestHandle_BindAndValidationErrors(t *testing.T) {
	s := testServer()
	e := newTestEcho(s)
	e.POST("/notes", Handle(NewHandler(s), func(c echo.Context, req *noteRequest) (*noteRequest, error) {
		return req, nil
	}, http.StatusCreated, &noteRequest{}))

	rec := do(e, http.MethodPost, "/notes", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/notes", `{"note":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)
}

type memCarts struct {
	mu    sync.Mutex
	carts map[string]model.Cart
}

func (m *memCarts) Get(ctx context.Context, id string) (*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart %s: %w", id, pgx.ErrNoRows)
	}
	c.Items = append([]model.CartItem(nil), c.Items...)
	return &c, nil
}

func (m *memCarts) Save(ctx context.Context, cart *model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[cart.ID] = *cart
	return nil
}

func (m *memCarts) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, id)
	return nil
}

// stubProducts serves lookups by id; other ProductStore methods are unused
// by the cart routes.
type stubProducts struct {
	service.ProductStore
	byID map[uuid.UUID]*model.Product
}

func (s stubProducts) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("product %s: %w", id, pgx.ErrNoRows)
}

func (s stubProducts) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	out := make(map[uuid.UUID]*model.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func TestCartRoutes(t *testing.T) {
	roses := &model.Product{ID: uuid.New(), Slug: "red-roses", Name: "Red Roses", Price: decimal.NewFromInt(450), Available: true}
	retired := &model.Product{ID: uuid.New(), Slug: "old-tulips", Name: "Old Tulips", Price: decimal.NewFromInt(200)}
	products := stubProducts{byID: map[uuid.UUID]*model.Product{roses.ID: roses, retired.ID: retired}}

	carts := service.NewCartService(&memCarts{carts: map[string]model.Cart{}}, products, service.Pricing{
		Currency:      "TRY",
		DeliveryFee:   decimal.NewFromInt(50),
		FreeThreshold: decimal.NewFromInt(1000),
		HasThreshold:  true,
	})

	s := testServer()
	h := &CartHandler{Handler: NewHandler(s), carts: carts}
	e := newTestEcho(s)
	e.POST("/carts", h.CreateCart)
	e.GET("/carts/:id", h.GetCart)
	e.PUT("/carts/:id/items", h.SetItem)
	e.DELETE("/carts/:id/items/:productId", h.RemoveItem)

	rec := do(e, http.MethodPost, "/carts", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var cart model.PricedCart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.NotEmpty(t, cart.ID)
	assert.Empty(t, cart.Lines)

	rec = do(e, http.MethodPut, "/carts/"+cart.ID+"/items", fmt.Sprintf(`{"product_id":%q,"quantity":2}`, roses.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.Len(t, cart.Lines, 1)
	assert.True(t, decimal.NewFromInt(900).Equal(cart.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(cart.DeliveryFee))
	assert.True(t, decimal.NewFromInt(950).Equal(cart.Total))

	rec = do(e, http.MethodPut, "/carts/"+cart.ID+"/items", fmt.Sprintf(`{"product_id":%q,"quantity":1}`, retired.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/carts/"+cart.ID+"/items/"+roses.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Empty(t, cart.Lines)
	assert.True(t, cart.Total.IsZero())

	rec = do(e, http.MethodGet, "/carts/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/carts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentRoutes_RejectBeforeTouchingOrders(t *testing.T) {
	s := testServer()
	payments := service.NewPaymentService(nil, nil, nil, service.PaymentConfig{
		WebhookSecret: "whsec_test",
		PublicURL:     "https://shop.example",
	}, s.Logger)
	h := &PaymentHandler{Handler: NewHandler(s), payments: payments}

	e := newTestEcho(s)
	e.POST("/payments/webhook", h.Webhook)
	e.POST("/payments/callback", h.Callback)

	rec := do(e, http.MethodPost, "/payments/webhook", `{"token":"tok_1","conversation_id":"FL-1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"token":"tok_1"}`))
	req.Header.Set("X-Payment-Signature", "deadbeef")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/payments/callback", strings.NewReader(url.Values{"token": {" "}}.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSEORoutes_Robots(t *testing.T) {
	s := testServer()
	h := &SEOHandler{Handler: NewHandler(s), seo: service.NewSEOService(nil, nil, "Bloom", "https://shop.example/", "TRY")}
	e := newTestEcho(s)
	e.GET("/robots.txt", h.Robots)

	rec := do(e, http.MethodGet, "/robots.txt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, echo.MIMETextPlainCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), "Disallow: /api/\n")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://shop.example/sitemap.xml")
}

func TestHealth(t *testing.T) {
	s := testServer()
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	e := newTestEcho(s)
	healthy := &HealthHandler{Handler: NewHandler(s), checks: []dependencyCheck{{"database", ok}, {"redis", ok}}}
	e.GET("/status", healthy.CheckHealth)
	degraded := &HealthHandler{Handler: NewHandler(s), checks: []dependencyCheck{{"database", ok}, {"redis", down}}}
	e.GET("/degraded", degraded.CheckHealth)

	rec := do(e, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Environment)
	assert.Len(t, resp.Checks, 2)

	rec = do(e, http.MethodGet, "/degraded", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["database"].Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
}

func TestMetrics(t *testing.T) {
	e := echo.New()
	e.GET("/metrics", NewMetricsHandler().Serve)

	rec := do(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
