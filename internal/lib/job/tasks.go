package job

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types. Asynq routes tasks to handlers by these names.
const (
	TaskWelcome           = "email:welcome"
	TaskOrderConfirmation = "email:order_confirmation"
	TaskOrderStatus       = "email:order_status"
	TaskExpireOrders      = "order:expire_pending"
	TaskReconcilePayments = "payment:reconcile"
)

const (
	queueCritical = "critical"
	queueDefault  = "default"
	queueLow      = "low"
)

type WelcomeEmailPayload struct {
	To        string `json:"to"`
	FirstName string `json:"first_name"`
}

// OrderEmailPayload references the order; handlers load it fresh so the
// email shows the state at send time.
type OrderEmailPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	Note    string    `json:"note,omitempty"`
}

func NewWelcomeEmailTask(to, firstName string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{To: to, FirstName: firstName})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(queueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}

func NewOrderConfirmationTask(orderID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(OrderEmailPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskOrderConfirmation,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(queueCritical),
		asynq.Timeout(30*time.Second),
	), nil
}

func NewOrderStatusTask(orderID uuid.UUID, note string) (*asynq.Task, error) {
	payload, err := json.Marshal(OrderEmailPayload{OrderID: orderID, Note: note})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskOrderStatus,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(queueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}

// Maintenance tasks are unique for their window so overlapping cron ticks
// or a slow worker never run two sweeps at once.
func NewExpireOrdersTask() *asynq.Task {
	return asynq.NewTask(
		TaskExpireOrders,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue(queueLow),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(5*time.Minute),
	)
}

func NewReconcilePaymentsTask() *asynq.Task {
	return asynq.NewTask(
		TaskReconcilePayments,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue(queueLow),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(10*time.Minute),
	)
}
