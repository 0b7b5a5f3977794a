package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/metrics"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// expireBatchLimit caps how many orders one expiry sweep cancels.
const expireBatchLimit = 500

// OrderService is the single place where order status changes. Every entry
// point (customers, admins, the payment flows, the expiry sweep) goes
// through transition, which applies the change under a row lock.
type OrderService struct {
	orders     OrderStore
	tasks      TaskEnqueuer
	pendingTTL time.Duration
	logger     *zerolog.Logger
	now        func() time.Time
}

func NewOrderService(orders OrderStore, tasks TaskEnqueuer, pendingTTL time.Duration, logger *zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, tasks: tasks, pendingTTL: pendingTTL, logger: logger, now: time.Now}
}

// Viewer is who is asking for an order.
type Viewer struct {
	CustomerID *uuid.UUID
	Admin      bool
}

func (v Viewer) owns(o *model.Order) bool {
	return v.Admin || (v.CustomerID != nil && o.CustomerID != nil && *v.CustomerID == *o.CustomerID)
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Order not found")
	}
	return o, nil
}

// Get returns an order to its owner or an admin. Other viewers get a 404 so
// order numbers cannot be probed.
func (s *OrderService) Get(ctx context.Context, number string, viewer Viewer) (*model.Order, error) {
	o, err := s.orders.GetByNumber(ctx, strings.ToUpper(number))
	if err != nil {
		return nil, notFoundAs(err, "Order not found")
	}
	if !viewer.owns(o) {
		return nil, errs.NewNotFoundError("Order not found", true, nil)
	}
	return o, nil
}

// Lookup is the guest order tracking: number and contact email must match.
func (s *OrderService) Lookup(ctx context.Context, number, email string) (*model.Order, error) {
	o, err := s.orders.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, notFoundAs(err, "Order not found")
	}
	if !strings.EqualFold(o.ContactEmail, strings.TrimSpace(email)) {
		return nil, errs.NewNotFoundError("Order not found", true, nil)
	}
	return o, nil
}

func (s *OrderService) ListMine(ctx context.Context, customerID uuid.UUID, q model.PageQuery) (model.Paginated[model.Order], error) {
	return s.list(ctx, model.OrderFilter{CustomerID: &customerID}, q)
}

func (s *OrderService) List(ctx context.Context, status model.OrderStatus, q model.PageQuery) (model.Paginated[model.Order], error) {
	return s.list(ctx, model.OrderFilter{Status: status}, q)
}

func (s *OrderService) list(ctx context.Context, f model.OrderFilter, q model.PageQuery) (model.Paginated[model.Order], error) {
	page, pageSize, _ := q.Normalize()
	f.Page, f.PageSize = page, pageSize

	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return model.Paginated[model.Order]{}, err
	}
	return model.NewPaginated(orders, page, pageSize, total), nil
}

// UpdateStatus is the admin action. Illegal transitions are a 409.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, note, actor string) (*model.Order, error) {
	o, _, err := s.transition(ctx, id, status, actor, note, nil)
	return o, err
}

// Cancel lets a customer cancel their own order while it is still pending.
func (s *OrderService) Cancel(ctx context.Context, number string, viewer Viewer) (*model.Order, error) {
	o, err := s.Get(ctx, number, viewer)
	if err != nil {
		return nil, err
	}

	updated, _, err := s.transition(ctx, o.ID, model.OrderStatusCancelled, model.ActorCustomer, "cancelled by customer",
		func(cur *model.Order) error {
			if cur.Status != model.OrderStatusPending {
				return errs.NewConflictError("Only orders awaiting payment can be cancelled", true, errs.Code("ORDER_NOT_CANCELLABLE"))
			}
			return nil
		})
	return updated, err
}

// ExpireStale cancels pending orders that were not paid within the
// configured window. It returns how many orders were cancelled.
func (s *OrderService) ExpireStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.pendingTTL)
	stale, err := s.orders.ListStalePending(ctx, cutoff, expireBatchLimit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, o := range stale {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		_, changed, err := s.transition(ctx, o.ID, model.OrderStatusCancelled, model.ActorSystem, "payment not received in time",
			func(cur *model.Order) error {
				// Paid in the meantime: leave it alone.
				if cur.Status != model.OrderStatusPending || cur.Payment.Status.Settled() {
					return repository.ErrUnchanged
				}
				return nil
			})
		if err != nil {
			s.logger.Error().Err(err).Str("order_number", o.Number).Msg("failed to expire order")
			continue
		}
		if changed {
			expired++
		}
	}
	return expired, nil
}

// transition applies next under the order's row lock. guard runs on the
// locked row first and may return repository.ErrUnchanged to skip quietly.
func (s *OrderService) transition(
	ctx context.Context,
	id uuid.UUID,
	next model.OrderStatus,
	actor, note string,
	guard func(*model.Order) error,
) (*model.Order, bool, error) {
	var from model.OrderStatus
	o, changed, err := s.orders.Update(ctx, id, func(cur *model.Order) error {
		if guard != nil {
			if err := guard(cur); err != nil {
				return err
			}
		}
		from = cur.Status
		applied, err := cur.TransitionTo(next, actor, note, s.now())
		if err != nil {
			return err
		}
		if !applied {
			return repository.ErrUnchanged
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrIllegalTransition) {
			return nil, false, errs.NewConflictError(
				"Order cannot move from "+string(from)+" to "+string(next), true, errs.Code("ILLEGAL_TRANSITION"))
		}
		return nil, false, notFoundAs(err, "Order not found")
	}

	if changed {
		metrics.RecordOrderTransition(string(from), string(next), actor)
		s.logger.Info().
			Str("order_number", o.Number).
			Str("from", string(from)).
			Str("to", string(next)).
			Str("actor", actor).
			Msg("order status changed")
		s.notifyStatus(ctx, o, note)
	}
	return o, changed, nil
}

// notifyStatus enqueues the status email. Failures are logged only.
func (s *OrderService) notifyStatus(ctx context.Context, o *model.Order, note string) {
	var err error
	if o.Status == model.OrderStatusConfirmed {
		err = s.tasks.EnqueueOrderConfirmation(ctx, o.ID)
	} else {
		err = s.tasks.EnqueueOrderStatus(ctx, o.ID, note)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("order_number", o.Number).Msg("failed to enqueue order email")
	}
}
