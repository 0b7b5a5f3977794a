package service

import (
	"context"
	"time"

	"github.com/deppfellow/storefront/internal/lib/payment"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
)

// The interfaces below are satisfied by the repository package and the
// payment and job clients. Services depend on them so they can be tested
// without Postgres, Redis or the gateway.

type ProductStore interface {
	List(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error)
	ListAvailable(ctx context.Context) ([]model.Product, error)
	Categories(ctx context.Context) ([]model.CategoryCount, error)
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Upsert(ctx context.Context, p *model.Product) (bool, error)
	UpsertBatch(ctx context.Context, products []*model.Product) (created, updated int, err error)
}

type CartStore interface {
	Get(ctx context.Context, id string) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, id string) error
}

type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	GetByPaymentToken(ctx context.Context, token string) (*model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]model.Order, int, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*model.Order) error) (*model.Order, bool, error)
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)
	ListAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]model.Order, error)
	HasPaidOrderWithProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
}

type CustomerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	GetByAuthSubject(ctx context.Context, subject string) (*model.Customer, error)
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
	UpdateProfile(ctx context.Context, c *model.Customer) error
}

type ReviewStore interface {
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]model.Review, int, error)
	Summary(ctx context.Context, productID uuid.UUID) (model.ReviewSummary, error)
	Exists(ctx context.Context, productID, customerID uuid.UUID) (bool, error)
	Create(ctx context.Context, rv *model.Review) error
}

type AnalyticsStore interface {
	Record(ctx context.Context, s *model.VisitorSession, pv *model.PageView, ev *model.Event) error
	Traffic(ctx context.Context, rf model.RangeFilter) (model.TrafficStats, error)
	Sales(ctx context.Context, rf model.RangeFilter) (model.SalesStats, error)
	TopPages(ctx context.Context, rf model.RangeFilter, n int) ([]model.TopEntry, error)
	TopEvents(ctx context.Context, rf model.RangeFilter, n int) ([]model.TopEntry, error)
	TopReferrers(ctx context.Context, rf model.RangeFilter, n int) ([]model.TopEntry, error)
	Daily(ctx context.Context, rf model.RangeFilter) ([]model.DailyPoint, error)
}

// PaymentGateway is the hosted checkout provider.
type PaymentGateway interface {
	Initialize(ctx context.Context, req *payment.InitializeRequest) (*payment.InitializeResult, error)
	Retrieve(ctx context.Context, token, conversationID string) (*payment.RetrieveResult, error)
}

// TaskEnqueuer schedules the transactional emails.
type TaskEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, to, firstName string) error
	EnqueueOrderConfirmation(ctx context.Context, orderID uuid.UUID) error
	EnqueueOrderStatus(ctx context.Context, orderID uuid.UUID, note string) error
}

// IdentityProvider looks up the OAuth provider's profile of a subject.
type IdentityProvider interface {
	Profile(ctx context.Context, subject string) (*model.IdentityProfile, error)
}
