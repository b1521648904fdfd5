package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Critiquely/internal/domain"
	"github.com/shaiso/Critiquely/internal/engine"
	"github.com/shaiso/Critiquely/internal/mq"
	"github.com/shaiso/Critiquely/internal/telemetry"
	"github.com/shaiso/Critiquely/internal/workflow"
)

const defaultPrefetch = 1

// Runner выполняет review-граф для одного run.
// Реализуется engine.Runner, в тестах подменяется фейком.
type Runner interface {
	Run(ctx context.Context, runID string, initial workflow.State) (workflow.State, error)
}

// RunStore персистит записи о runs. Nil-store допустим: тогда runs
// живут только в логах.
type RunStore interface {
	Create(ctx context.Context, run *domain.Run) error
	Update(ctx context.Context, run *domain.Run) error
}

// Dispatcher связывает очередь задач с review-графом.
//
// Dispatcher — stateless компонент системы, который:
//   - Потребляет задачи на review из очереди RabbitMQ
//   - Валидирует сообщение; невалидные уходят в DLQ без повтора
//   - Запускает review-граф и финализирует запись run
//   - Классифицирует ошибки выполнения (permanent / transient)
//
// Несколько экземпляров могут потреблять из одной очереди.
type Dispatcher struct {
	conn    *mq.Connection
	queue   string
	runner  Runner
	runs    RunStore
	cleanup func(path string) error

	prefetch int

	consumer   *mq.Consumer
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Dispatcher.
type Config struct {
	// Conn — соединение с RabbitMQ.
	Conn *mq.Connection

	// Queue — имя очереди задач.
	Queue string

	// Runner — скомпилированный review-граф.
	Runner Runner

	// Runs — хранилище записей о runs (опционально).
	Runs RunStore

	// Cleanup удаляет рабочую копию после успешного review
	// (опционально). При ошибке копия сохраняется: повторная
	// доставка возобновит run с checkpoint'а в том же каталоге.
	Cleanup func(path string) error

	// Prefetch — количество задач в обработке одновременно (default: 1).
	Prefetch int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Dispatcher.
func New(cfg Config) *Dispatcher {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	queue := cfg.Queue
	if queue == "" {
		queue = string(mq.QueueReviews)
	}

	return &Dispatcher{
		conn:     cfg.Conn,
		queue:    queue,
		runner:   cfg.Runner,
		runs:     cfg.Runs,
		cleanup:  cfg.Cleanup,
		prefetch: prefetch,
		logger:   logger,
	}
}

// Start запускает потребление задач.
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancelFunc = cancel

	d.logger.Info("starting dispatcher", "queue", d.queue, "prefetch", d.prefetch)

	d.consumer = mq.NewConsumer(d.conn, d.logger, mq.ConsumerConfig{
		Queue:    d.queue,
		Handler:  d.handleReview,
		Prefetch: d.prefetch,
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("review consumer error", "error", err)
		}
	}()

	d.logger.Info("dispatcher started")
	return nil
}

// Stop останавливает Dispatcher и дожидается текущей задачи.
func (d *Dispatcher) Stop() {
	d.logger.Info("stopping dispatcher...")

	if d.cancelFunc != nil {
		d.cancelFunc()
	}
	if d.consumer != nil {
		d.consumer.Stop()
	}

	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

// handleReview обрабатывает одну задачу на review.
//
// Возвращаемая ошибка классифицирует судьбу сообщения:
// невалидная задача и исчерпание лимита шагов графа — permanent
// (DLQ), остальные ошибки — transient (requeue).
func (d *Dispatcher) handleReview(ctx context.Context, msg *mq.Delivery) error {
	task, err := domain.ParseReviewTask(msg.Body)
	if err != nil {
		d.logger.Error("rejecting invalid review task", "error", err)
		telemetry.ReviewsTotal.WithLabelValues("rejected").Inc()
		return mq.Permanent(err)
	}

	run := domain.NewRun(task)
	// ID run выводится из MessageId сообщения: повторная доставка
	// получает тот же ID и возобновляет граф с checkpoint'а.
	if id, err := uuid.Parse(msg.Raw.MessageId); err == nil {
		run.ID = id
	}
	logger := telemetry.WithRunID(
		telemetry.WithRepo(d.logger, task.RepoURL), run.ID.String())

	logger.Info("review task received",
		"original_pr", task.OriginalPRURL,
		"branch", task.Branch,
		"modified_files", len(task.ModifiedFiles),
	)

	d.persistCreate(ctx, run, logger)

	run.MarkRunning()
	d.persistUpdate(ctx, run, logger)

	start := time.Now()
	final, err := d.runner.Run(ctx, run.ID.String(), workflow.InitialState(task))
	telemetry.ReviewDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		run.MarkFailed(err.Error())
		d.persistUpdate(ctx, run, logger)
		telemetry.ReviewsTotal.WithLabelValues("failed").Inc()

		logger.Error("review failed", "error", err)

		if errors.Is(err, engine.ErrMaxSteps) {
			return mq.Permanent(err)
		}
		return err
	}

	run.MarkSucceeded(final.PRURL)
	d.persistUpdate(ctx, run, logger)
	telemetry.ReviewsTotal.WithLabelValues("succeeded").Inc()

	if d.cleanup != nil && final.ClonePath != "" {
		if err := d.cleanup(final.ClonePath); err != nil {
			logger.Warn("failed to clean up working copy", "path", final.ClonePath, "error", err)
		}
	}

	if final.PRURL != "" {
		logger.Info("review succeeded", "pr_url", final.PRURL, "updated_files", len(final.UpdatedFiles))
	} else {
		logger.Info("review finished without changes")
	}
	return nil
}

// Ошибки персистентности не влияют на судьбу задачи: review важнее
// записи о нём.

func (d *Dispatcher) persistCreate(ctx context.Context, run *domain.Run, logger *slog.Logger) {
	if d.runs == nil {
		return
	}
	if err := d.runs.Create(ctx, run); err != nil {
		logger.Error("failed to persist run", "error", err)
	}
}

func (d *Dispatcher) persistUpdate(ctx context.Context, run *domain.Run, logger *slog.Logger) {
	if d.runs == nil {
		return
	}
	if err := d.runs.Update(ctx, run); err != nil {
		logger.Error("failed to update run", "error", err)
	}
}
