// Package job runs background work on Asynq, a Redis-backed task queue.
//
// Services enqueue email tasks through JobService. A cron scheduler enqueues
// the periodic maintenance tasks (expiring stale orders, reconciling pending
// payments) and the worker server processes everything.
package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// JobService holds the Asynq client (enqueue), the worker server and the
// cron scheduler for periodic tasks.
type JobService struct {
	Client *asynq.Client

	server    *asynq.Server
	scheduler *cron.Cron
	cfg       config.JobsConfig
	logger    *zerolog.Logger
	handlers  *taskHandlers
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				queueCritical: 6,
				queueDefault:  3,
				queueLow:      1,
			},
		},
	)

	return &JobService{
		Client:    asynq.NewClient(redisOpt),
		server:    server,
		scheduler: cron.New(),
		cfg:       cfg.Jobs,
		logger:    logger,
	}
}

// InitHandlers wires the task handlers' collaborators. It must run before
// Start.
func (j *JobService) InitHandlers(deps Deps) {
	j.handlers = &taskHandlers{deps: deps, logger: j.logger}
}

// Start registers the handlers, starts the workers and the cron scheduler.
// It does not block.
func (j *JobService) Start() error {
	if j.handlers == nil {
		return fmt.Errorf("job handlers not initialized")
	}

	mux := asynq.NewServeMux()
	j.handlers.register(mux)

	if err := j.schedule(j.cfg.ExpireOrdersSchedule, NewExpireOrdersTask); err != nil {
		return err
	}
	if err := j.schedule(j.cfg.ReconcileSchedule, NewReconcilePaymentsTask); err != nil {
		return err
	}

	j.logger.Info().Msg("starting background job server")
	if err := j.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}
	j.scheduler.Start()
	return nil
}

func (j *JobService) schedule(spec string, newTask func() *asynq.Task) error {
	_, err := j.scheduler.AddFunc(spec, func() {
		task := newTask()
		if _, err := j.Client.Enqueue(task); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
			j.logger.Error().Err(err).Str("type", task.Type()).Msg("failed to enqueue periodic task")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Stop halts the scheduler, drains the workers and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	<-j.scheduler.Stop().Done()
	j.server.Shutdown()
	j.Client.Close()
}

func (j *JobService) enqueue(ctx context.Context, task *asynq.Task, err error) error {
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	j.logger.Debug().Str("type", task.Type()).Str("task_id", info.ID).Msg("task enqueued")
	return nil
}

func (j *JobService) EnqueueWelcomeEmail(ctx context.Context, to, firstName string) error {
	task, err := NewWelcomeEmailTask(to, firstName)
	return j.enqueue(ctx, task, err)
}

func (j *JobService) EnqueueOrderConfirmation(ctx context.Context, orderID uuid.UUID) error {
	task, err := NewOrderConfirmationTask(orderID)
	return j.enqueue(ctx, task, err)
}

func (j *JobService) EnqueueOrderStatus(ctx context.Context, orderID uuid.UUID, note string) error {
	task, err := NewOrderStatusTask(orderID, note)
	return j.enqueue(ctx, task, err)
}
