package job

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	welcome       []string
	confirmations []string
	statuses      []string
	err           error
}

func (f *fakeMailer) SendWelcomeEmail(_ context.Context, to, _ string) error {
	f.welcome = append(f.welcome, to)
	return f.err
}

func (f *fakeMailer) SendOrderConfirmationEmail(_ context.Context, order *model.Order) error {
	f.confirmations = append(f.confirmations, order.Number)
	return f.err
}

func (f *fakeMailer) SendOrderStatusEmail(_ context.Context, order *model.Order, note string) error {
	f.statuses = append(f.statuses, order.Number+":"+note)
	return f.err
}

type fakeOrders map[uuid.UUID]*model.Order

func (f fakeOrders) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	if o, ok := f[id]; ok {
		return o, nil
	}
	return nil, errors.New("not found")
}

type fakeMaintainer struct {
	expired int
	runs    int
}

func (f *fakeMaintainer) ExpireStale(context.Context) (int, error) {
	f.runs++
	return f.expired, nil
}

func (f *fakeMaintainer) ReconcilePending(context.Context) (*model.ReconcileResult, error) {
	f.runs++
	return &model.ReconcileResult{Checked: 2, Confirmed: 1}, nil
}

func newTestHandlers(deps Deps) *taskHandlers {
	logger := zerolog.Nop()
	return &taskHandlers{deps: deps, logger: &logger}
}

func TestTaskConstructors(t *testing.T) {
	task, err := NewWelcomeEmailTask("jane@example.com", "Jane")
	require.NoError(t, err)
	assert.Equal(t, TaskWelcome, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "Jane", p.FirstName)

	id := uuid.New()
	task, err = NewOrderStatusTask(id, "on its way")
	require.NoError(t, err)
	assert.Equal(t, TaskOrderStatus, task.Type())

	var op OrderEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &op))
	assert.Equal(t, id, op.OrderID)
	assert.Equal(t, "on its way", op.Note)

	assert.Equal(t, TaskExpireOrders, NewExpireOrdersTask().Type())
	assert.Equal(t, TaskReconcilePayments, NewReconcilePaymentsTask().Type())
}

func TestHandleOrderEmails(t *testing.T) {
	id := uuid.New()
	mailer := &fakeMailer{}
	h := newTestHandlers(Deps{
		Mailer: mailer,
		Orders: fakeOrders{id: {ID: id, Number: "FL-1", Status: model.OrderStatusConfirmed}},
	})

	task, err := NewOrderConfirmationTask(id)
	require.NoError(t, err)
	require.NoError(t, h.handleOrderConfirmationEmail(context.Background(), task))
	assert.Equal(t, []string{"FL-1"}, mailer.confirmations)

	task, err = NewOrderStatusTask(id, "arranged")
	require.NoError(t, err)
	require.NoError(t, h.handleOrderStatusEmail(context.Background(), task))
	assert.Equal(t, []string{"FL-1:arranged"}, mailer.statuses)

	task, err = NewOrderStatusTask(uuid.New(), "")
	require.NoError(t, err)
	assert.Error(t, h.handleOrderStatusEmail(context.Background(), task))
}

func TestHandleWelcomeEmail(t *testing.T) {
	mailer := &fakeMailer{}
	h := newTestHandlers(Deps{Mailer: mailer})

	task, err := NewWelcomeEmailTask("jane@example.com", "Jane")
	require.NoError(t, err)
	require.NoError(t, h.handleWelcomeEmail(context.Background(), task))
	assert.Equal(t, []string{"jane@example.com"}, mailer.welcome)

	err = h.handleWelcomeEmail(context.Background(), asynq.NewTask(TaskWelcome, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	mailer.err = errors.New("provider down")
	assert.Error(t, h.handleWelcomeEmail(context.Background(), task))
}

func TestHandleMaintenance(t *testing.T) {
	m := &fakeMaintainer{expired: 3}
	h := newTestHandlers(Deps{Maintenance: m})

	require.NoError(t, h.handleExpireOrders(context.Background(), NewExpireOrdersTask()))
	require.NoError(t, h.handleReconcilePayments(context.Background(), NewReconcilePaymentsTask()))
	assert.Equal(t, 2, m.runs)
}
