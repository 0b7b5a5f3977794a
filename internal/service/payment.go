package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/payment"
	"github.com/deppfellow/storefront/internal/metrics"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// reconcileGrace skips orders whose customer may still be on the payment page.
	reconcileGrace     = time.Minute
	reconcileLimit     = 500
	reconcileChunkSize = 10
)

// Redirect outcomes appended to the order page URL after the hosted form.
const (
	RedirectSuccess = "success"
	RedirectFailed  = "failed"
	RedirectPending = "pending"
)

// PaymentService folds gateway results into orders. The webhook, the
// redirect callback, manual verification and the reconcile sweep all end in
// apply, which never trusts a notification on its own: the result always
// comes from polling the gateway by token.
type PaymentService struct {
	orders         OrderStore
	gateway        PaymentGateway
	orderSvc       *OrderService
	webhookSecret  string
	publicURL      string
	reconcileDelay time.Duration
	logger         *zerolog.Logger
	now            func() time.Time
}

type PaymentConfig struct {
	WebhookSecret  string
	PublicURL      string
	ReconcileDelay time.Duration
}

func NewPaymentService(orders OrderStore, gateway PaymentGateway, orderSvc *OrderService, cfg PaymentConfig, logger *zerolog.Logger) *PaymentService {
	return &PaymentService{
		orders:         orders,
		gateway:        gateway,
		orderSvc:       orderSvc,
		webhookSecret:  cfg.WebhookSecret,
		publicURL:      strings.TrimRight(cfg.PublicURL, "/"),
		reconcileDelay: cfg.ReconcileDelay,
		logger:         logger,
		now:            time.Now,
	}
}

// HandleCallback completes the redirect from the hosted form and returns
// where to send the customer.
func (s *PaymentService) HandleCallback(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errs.NewBadRequestError("Missing payment token", true, nil, nil, nil)
	}

	order, err := s.orders.GetByPaymentToken(ctx, token)
	if err != nil {
		return "", notFoundAs(err, "Payment session not found")
	}

	order, _, err = s.poll(ctx, order, model.ActorCallback)
	if err != nil {
		// The webhook or the reconcile sweep settles it later.
		s.logger.Warn().Err(err).Str("order_number", order.Number).Msg("payment callback could not be completed")
		return s.orderPageURL(order.Number, RedirectPending), nil
	}
	return s.orderPageURL(order.Number, redirectOutcome(order)), nil
}

func redirectOutcome(o *model.Order) string {
	switch o.Payment.Status {
	case model.PaymentStatusPaid, model.PaymentStatusRefundRequired:
		return RedirectSuccess
	case model.PaymentStatusFailed:
		return RedirectFailed
	default:
		return RedirectPending
	}
}

func (s *PaymentService) orderPageURL(number, outcome string) string {
	return s.publicURL + "/orders/" + url.PathEscape(number) + "?payment=" + outcome
}

// HandleWebhook verifies and processes a gateway notification. Unknown
// orders are acknowledged so the gateway stops retrying.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	event, err := payment.VerifyWebhook(s.webhookSecret, body, signature)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrMissingSignature), errors.Is(err, payment.ErrInvalidSignature):
			metrics.RecordWebhook("invalid_signature")
			return errs.NewUnauthorizedError("Invalid webhook signature", true)
		default:
			metrics.RecordWebhook("malformed")
			return errs.NewBadRequestError("Malformed webhook payload", true, nil, nil, nil)
		}
	}

	order, err := s.findWebhookOrder(ctx, event)
	if repository.IsNotFound(err) {
		metrics.RecordWebhook("ignored")
		s.logger.Warn().
			Str("conversation_id", event.ConversationID).
			Str("event_type", event.EventType).
			Msg("webhook for unknown order ignored")
		return nil
	}
	if err != nil {
		metrics.RecordWebhook("error")
		return err
	}

	// The token is saved right after form initialization; a very early
	// webhook may arrive before that write.
	if order.Payment.Token == "" {
		order.Payment.Token = event.Token
	}
	if _, _, err := s.poll(ctx, order, model.ActorWebhook); err != nil {
		metrics.RecordWebhook("error")
		return err
	}
	metrics.RecordWebhook("processed")
	return nil
}

func (s *PaymentService) findWebhookOrder(ctx context.Context, event *payment.WebhookEvent) (*model.Order, error) {
	if event.ConversationID != "" {
		o, err := s.orders.GetByNumber(ctx, event.ConversationID)
		if err == nil || !repository.IsNotFound(err) || event.Token == "" {
			return o, err
		}
	}
	if event.Token == "" {
		return nil, errs.NewBadRequestError("Webhook has no order reference", true, nil, nil, nil)
	}
	return s.orders.GetByPaymentToken(ctx, event.Token)
}

// VerifyPayment is the admin's manual check against the gateway.
func (s *PaymentService) VerifyPayment(ctx context.Context, id uuid.UUID, actor string) (*model.PaymentVerification, error) {
	order, err := s.orderSvc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Payment.Token == "" {
		return nil, errs.NewConflictError("Order has no payment session to verify", true, errs.Code("NO_PAYMENT_SESSION"))
	}

	order, change, err := s.poll(ctx, order, actor)
	if err != nil {
		return nil, err
	}
	return &model.PaymentVerification{
		Order:   order,
		Applied: change != model.PaymentUnchanged,
		Result:  change.String(),
	}, nil
}

// ReconcilePending polls the gateway for orders still awaiting payment, in
// small chunks with a pause between them.
func (s *PaymentService) ReconcilePending(ctx context.Context) (*model.ReconcileResult, error) {
	orders, err := s.orders.ListAwaitingPayment(ctx, s.now().Add(-reconcileGrace), reconcileLimit)
	if err != nil {
		return nil, err
	}

	res := &model.ReconcileResult{}
	err = inChunks(ctx, orders, reconcileChunkSize, s.reconcileDelay, func(chunk []model.Order) error {
		for i := range chunk {
			res.Checked++
			_, change, err := s.poll(ctx, &chunk[i], model.ActorSystem)
			if err != nil {
				res.Errors++
				s.logger.Warn().Err(err).Str("order_number", chunk[i].Number).Msg("failed to reconcile payment")
				continue
			}
			switch change {
			case model.PaymentConfirmed:
				res.Confirmed++
			case model.PaymentFailed:
				res.Failed++
			case model.PaymentRefundRequired:
				res.Refunds++
			}
		}
		return nil
	})
	return res, err
}

// poll retrieves the payment by the order's token and applies it.
func (s *PaymentService) poll(ctx context.Context, order *model.Order, actor string) (*model.Order, model.PaymentChange, error) {
	if order.Payment.Token == "" {
		return order, model.PaymentUnchanged, nil
	}

	result, err := s.gateway.Retrieve(ctx, order.Payment.Token, order.Number)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("order_number", order.Number).
			Str("actor", actor).
			Msg("payment gateway lookup failed")
		return order, model.PaymentUnchanged, errs.NewBadGatewayError("Payment provider is unavailable, please try again later", true)
	}
	if result.ConversationID != "" && result.ConversationID != order.Number {
		return order, model.PaymentUnchanged, fmt.Errorf("payment token %s belongs to %s, not %s", order.Payment.Token, result.ConversationID, order.Number)
	}
	if !result.Final() {
		return order, model.PaymentUnchanged, nil
	}

	outcome := model.PaymentOutcome{
		Succeeded:     result.Paid(),
		PaymentID:     result.PaymentID,
		PaidAmount:    result.PaidPrice,
		Currency:      result.Currency,
		FailureReason: result.FailureReason(),
	}
	if outcome.Succeeded {
		if mismatch := order.PaidMismatch(outcome); mismatch != "" {
			s.logger.Warn().
				Str("order_number", order.Number).
				Str("payment_id", outcome.PaymentID).
				Msg(mismatch)
		}
	}
	return s.apply(ctx, order, outcome, actor)
}

// apply records outcome on the locked order row and sends notifications
// for whatever actually changed.
func (s *PaymentService) apply(ctx context.Context, order *model.Order, outcome model.PaymentOutcome, actor string) (*model.Order, model.PaymentChange, error) {
	var (
		change model.PaymentChange
		from   model.OrderStatus
	)
	updated, _, err := s.orders.Update(ctx, order.ID, func(cur *model.Order) error {
		from = cur.Status
		change = cur.ApplyPayment(outcome, actor, s.now())
		if change == model.PaymentUnchanged {
			return repository.ErrUnchanged
		}
		return nil
	})
	if err != nil {
		return order, model.PaymentUnchanged, notFoundAs(err, "Order not found")
	}
	if change == model.PaymentUnchanged {
		return updated, change, nil
	}

	metrics.RecordPaymentResult(actor, change.String())
	log := s.logger.Info()
	if change == model.PaymentRefundRequired {
		log = s.logger.Warn()
	}
	log.Str("order_number", updated.Number).
		Str("actor", actor).
		Str("result", change.String()).
		Msg("payment result applied")

	if change == model.PaymentConfirmed && from != updated.Status {
		metrics.RecordOrderTransition(string(from), string(updated.Status), actor)
		s.orderSvc.notifyStatus(ctx, updated, "payment received")
	}
	return updated, change, nil
}
