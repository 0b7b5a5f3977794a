package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deppfellow/storefront/internal/lib/payment"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

var errNotFound = pgx.ErrNoRows

// ---- products ----

type fakeProducts struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*model.Product
	batchErr error
	batches  [][]string
}

func newFakeProducts(products ...*model.Product) *fakeProducts {
	f := &fakeProducts{byID: map[uuid.UUID]*model.Product{}}
	for _, p := range products {
		f.byID[p.ID] = p
	}
	return f
}

func testProduct(slug, price string, available bool) *model.Product {
	return &model.Product{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      strings.ReplaceAll(slug, "-", " "),
		Category:  "roses",
		Price:     decimal.RequireFromString(price),
		ImageURLs: []string{"https://cdn.example.com/" + slug + ".jpg"},
		Available: available,
		UpdatedAt: testNow,
	}
}

func (f *fakeProducts) List(_ context.Context, flt model.ProductFilter) ([]model.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Product
	for _, p := range f.byID {
		if (flt.IncludeUnavailable || p.Available) && (flt.Category == "" || p.Category == flt.Category) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	total := len(out)
	end := min(flt.Offset+flt.Limit, total)
	if flt.Offset >= total {
		return nil, total, nil
	}
	return out[flt.Offset:end], total, nil
}

func (f *fakeProducts) GetBySlug(_ context.Context, slug string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, errNotFound
}

func (f *fakeProducts) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]*model.Product{}
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakeProducts) ListAvailable(ctx context.Context) ([]model.Product, error) {
	out, _, err := f.List(ctx, model.ProductFilter{Limit: 1000})
	return out, err
}

func (f *fakeProducts) Categories(_ context.Context) ([]model.CategoryCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, p := range f.byID {
		if p.Available {
			counts[p.Category]++
		}
	}
	var out []model.CategoryCount
	for c, n := range counts {
		out = append(out, model.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (f *fakeProducts) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Slug == slug && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) Create(_ context.Context, p *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; !ok {
		return errNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Upsert(_ context.Context, p *model.Product) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Slug == "broken" {
		return false, errors.New("check constraint violated")
	}
	for id, existing := range f.byID {
		if existing.Slug == p.Slug {
			p.ID = id
			cp := *p
			f.byID[id] = &cp
			return false, nil
		}
	}
	cp := *p
	f.byID[p.ID] = &cp
	return true, nil
}

func (f *fakeProducts) UpsertBatch(ctx context.Context, products []*model.Product) (int, int, error) {
	slugs := make([]string, 0, len(products))
	for _, p := range products {
		slugs = append(slugs, p.Slug)
		if p.Slug == "broken" {
			f.batches = append(f.batches, slugs)
			return 0, 0, errors.New("batch failed")
		}
	}
	f.batches = append(f.batches, slugs)
	if f.batchErr != nil {
		return 0, 0, f.batchErr
	}
	created, updated := 0, 0
	for _, p := range products {
		inserted, err := f.Upsert(ctx, p)
		if err != nil {
			return 0, 0, err
		}
		if inserted {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}

// ---- carts ----

type fakeCarts struct {
	mu      sync.Mutex
	carts   map[string]*model.Cart
	deleted []string
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]*model.Cart{}}
}

func (f *fakeCarts) Get(_ context.Context, id string) (*model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	return &cp, nil
}

func (f *fakeCarts) Save(_ context.Context, cart *model.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *cart
	cp.Items = append([]model.CartItem(nil), cart.Items...)
	f.carts[cart.ID] = &cp
	return nil
}

func (f *fakeCarts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// ---- orders ----

type fakeOrders struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*model.Order
	writes  int
	paidFor map[uuid.UUID]bool
}

func newFakeOrders(orders ...*model.Order) *fakeOrders {
	f := &fakeOrders{orders: map[uuid.UUID]*model.Order{}, paidFor: map[uuid.UUID]bool{}}
	for _, o := range orders {
		f.orders[o.ID] = copyOrder(o)
	}
	return f
}

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.LineItem(nil), o.Items...)
	cp.Timeline = append([]model.TimelineEntry(nil), o.Timeline...)
	return &cp
}

func (f *fakeOrders) get(id uuid.UUID) *model.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyOrder(f.orders[id])
}

func (f *fakeOrders) Create(_ context.Context, o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = copyOrder(o)
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		return copyOrder(o), nil
	}
	return nil, errNotFound
}

func (f *fakeOrders) find(match func(*model.Order) bool) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if match(o) {
			return copyOrder(o), nil
		}
	}
	return nil, errNotFound
}

func (f *fakeOrders) GetByNumber(_ context.Context, number string) (*model.Order, error) {
	return f.find(func(o *model.Order) bool { return o.Number == number })
}

func (f *fakeOrders) GetByPaymentToken(_ context.Context, token string) (*model.Order, error) {
	return f.find(func(o *model.Order) bool { return o.Payment.Token == token })
}

func (f *fakeOrders) List(_ context.Context, flt model.OrderFilter) ([]model.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		if flt.CustomerID != nil && (o.CustomerID == nil || *o.CustomerID != *flt.CustomerID) {
			continue
		}
		if flt.Status != "" && o.Status != flt.Status {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	return out, len(out), nil
}

func (f *fakeOrders) Update(_ context.Context, id uuid.UUID, fn func(*model.Order) error) (*model.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.orders[id]
	if !ok {
		return nil, false, errNotFound
	}
	o := copyOrder(cur)
	if err := fn(o); err != nil {
		if errors.Is(err, repository.ErrUnchanged) {
			return o, false, nil
		}
		return nil, false, err
	}
	f.orders[id] = copyOrder(o)
	f.writes++
	return o, true, nil
}

func (f *fakeOrders) ListStalePending(_ context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		if o.Status == model.OrderStatusPending && !o.Payment.Status.Settled() && o.CreatedAt.Before(cutoff) {
			out = append(out, *copyOrder(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) ListAwaitingPayment(_ context.Context, createdBefore time.Time, limit int) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		if o.Status == model.OrderStatusPending && o.Payment.Status == model.PaymentStatusAwaiting &&
			o.Payment.Token != "" && o.CreatedAt.Before(createdBefore) {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeOrders) HasPaidOrderWithProduct(_ context.Context, customerID, productID uuid.UUID) (bool, error) {
	return f.paidFor[productID], nil
}

// ---- tasks ----

type fakeTasks struct {
	mu            sync.Mutex
	welcome       []string
	confirmations []uuid.UUID
	statuses      []string
	err           error
}

func (f *fakeTasks) EnqueueWelcomeEmail(_ context.Context, to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcome = append(f.welcome, to)
	return f.err
}

func (f *fakeTasks) EnqueueOrderConfirmation(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, id)
	return f.err
}

func (f *fakeTasks) EnqueueOrderStatus(_ context.Context, _ uuid.UUID, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, note)
	return f.err
}

// ---- gateway ----

type fakeGateway struct {
	mu          sync.Mutex
	initErr     error
	initialized []*payment.InitializeRequest
	results     map[string]*payment.RetrieveResult
	retrieveErr error
	retrieves   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{results: map[string]*payment.RetrieveResult{}}
}

func (f *fakeGateway) Initialize(_ context.Context, req *payment.InitializeRequest) (*payment.InitializeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		return nil, f.initErr
	}
	f.initialized = append(f.initialized, req)
	token := "tok-" + req.ConversationID
	return &payment.InitializeResult{Token: token, PaymentPageURL: "https://pay.example/" + token}, nil
}

func (f *fakeGateway) Retrieve(_ context.Context, token, _ string) (*payment.RetrieveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retrieves++
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	if r, ok := f.results[token]; ok {
		cp := *r
		return &cp, nil
	}
	return &payment.RetrieveResult{Token: token, PaymentStatus: payment.PaymentStatusInit}, nil
}

func (f *fakeGateway) paid(token, number, amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[token] = &payment.RetrieveResult{
		Token:          token,
		ConversationID: number,
		PaymentStatus:  payment.PaymentStatusSuccess,
		PaymentID:      "pay-" + number,
		PaidPrice:      decimal.RequireFromString(amount),
	}
}

func (f *fakeGateway) failed(token, number, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[token] = &payment.RetrieveResult{
		Token:          token,
		ConversationID: number,
		PaymentStatus:  payment.PaymentStatusFailure,
		ErrorMessage:   reason,
	}
}

// pendingOrder is an order that has an open payment form.
func pendingOrder(number string, customerID *uuid.UUID) *model.Order {
	return &model.Order{
		ID:           uuid.New(),
		Number:       number,
		CustomerID:   customerID,
		ContactEmail: "jane@example.com",
		ContactName:  "Jane Doe",
		Status:       model.OrderStatusPending,
		Payment: model.PaymentInfo{
			Status:   model.PaymentStatusAwaiting,
			Provider: paymentProvider,
			Token:    "tok-" + number,
		},
		Timeline:  []model.TimelineEntry{{At: testNow, Status: model.OrderStatusPending, Actor: model.ActorCustomer}},
		Total:     decimal.RequireFromString("100"),
		Currency:  "TRY",
		CreatedAt: testNow.Add(-3 * time.Hour),
	}
}
