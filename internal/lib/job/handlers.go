package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/storefront/internal/metrics"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Mailer sends the transactional emails.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to, firstName string) error
	SendOrderConfirmationEmail(ctx context.Context, order *model.Order) error
	SendOrderStatusEmail(ctx context.Context, order *model.Order, note string) error
}

type OrderLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

// Maintainer runs the periodic order and payment sweeps.
type Maintainer interface {
	ExpireStale(ctx context.Context) (int, error)
	ReconcilePending(ctx context.Context) (*model.ReconcileResult, error)
}

// Deps are the collaborators task handlers need. They are provided after
// the services are built, which themselves enqueue through JobService.
type Deps struct {
	Mailer      Mailer
	Orders      OrderLoader
	Maintenance Maintainer
}

type taskHandlers struct {
	deps   Deps
	logger *zerolog.Logger
}

func (h *taskHandlers) register(mux *asynq.ServeMux) {
	mux.Use(recordMetrics)
	mux.HandleFunc(TaskWelcome, h.handleWelcomeEmail)
	mux.HandleFunc(TaskOrderConfirmation, h.handleOrderConfirmationEmail)
	mux.HandleFunc(TaskOrderStatus, h.handleOrderStatusEmail)
	mux.HandleFunc(TaskExpireOrders, h.handleExpireOrders)
	mux.HandleFunc(TaskReconcilePayments, h.handleReconcilePayments)
}

func recordMetrics(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		err := next.ProcessTask(ctx, t)
		metrics.RecordJob(t.Type(), err)
		return err
	})
}

func (h *taskHandlers) handleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.deps.Mailer.SendWelcomeEmail(ctx, p.To, p.FirstName); err != nil {
		h.logger.Error().Err(err).Str("type", t.Type()).Msg("failed to send welcome email")
		return err
	}

	h.logger.Info().Str("type", t.Type()).Msg("sent welcome email")
	return nil
}

func (h *taskHandlers) handleOrderConfirmationEmail(ctx context.Context, t *asynq.Task) error {
	order, p, err := h.loadOrder(ctx, t)
	if err != nil {
		return err
	}

	if err := h.deps.Mailer.SendOrderConfirmationEmail(ctx, order); err != nil {
		h.logger.Error().Err(err).Str("type", t.Type()).Str("order_id", p.OrderID.String()).Msg("failed to send order confirmation")
		return err
	}

	h.logger.Info().Str("type", t.Type()).Str("order_number", order.Number).Msg("sent order confirmation")
	return nil
}

func (h *taskHandlers) handleOrderStatusEmail(ctx context.Context, t *asynq.Task) error {
	order, p, err := h.loadOrder(ctx, t)
	if err != nil {
		return err
	}

	if err := h.deps.Mailer.SendOrderStatusEmail(ctx, order, p.Note); err != nil {
		h.logger.Error().Err(err).Str("type", t.Type()).Str("order_id", p.OrderID.String()).Msg("failed to send order status email")
		return err
	}

	h.logger.Info().
		Str("type", t.Type()).
		Str("order_number", order.Number).
		Str("status", string(order.Status)).
		Msg("sent order status email")
	return nil
}

func (h *taskHandlers) loadOrder(ctx context.Context, t *asynq.Task) (*model.Order, *OrderEmailPayload, error) {
	var p OrderEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal %s payload: %w: %w", t.Type(), err, asynq.SkipRetry)
	}

	order, err := h.deps.Orders.GetByID(ctx, p.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load order %s: %w", p.OrderID, err)
	}
	return order, &p, nil
}

func (h *taskHandlers) handleExpireOrders(ctx context.Context, t *asynq.Task) error {
	n, err := h.deps.Maintenance.ExpireStale(ctx)
	if err != nil {
		h.logger.Error().Err(err).Str("type", t.Type()).Msg("failed to expire stale orders")
		return err
	}
	h.logger.Info().Str("type", t.Type()).Int("expired", n).Msg("expired stale orders")
	return nil
}

func (h *taskHandlers) handleReconcilePayments(ctx context.Context, t *asynq.Task) error {
	res, err := h.deps.Maintenance.ReconcilePending(ctx)
	if err != nil {
		h.logger.Error().Err(err).Str("type", t.Type()).Msg("failed to reconcile payments")
		return err
	}
	h.logger.Info().
		Str("type", t.Type()).
		Int("checked", res.Checked).
		Int("confirmed", res.Confirmed).
		Int("failed", res.Failed).
		Int("errors", res.Errors).
		Msg("reconciled pending payments")
	return nil
}
