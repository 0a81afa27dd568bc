package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/domain/repository"
	"github.com/polkiloo/codguard/internal/metrics"
)

const (
	// QueueKey is the transient holding pending order records.
	QueueKey = "codguard_order_queue"
	// FlushTaskName is the scheduled task that sends the bundled queue.
	FlushTaskName = "codguard_send_bundled_orders"
)

// OrderImporter posts a batch of order records.
type OrderImporter interface {
	ImportOrders(ctx context.Context, keys model.APIKeys, orders []model.OrderRecord) (*model.ImportResult, error)
}

// queue maps order id to its latest qualifying record.
type queue map[string]model.OrderRecord

// OrderSyncUseCase accumulates order outcomes and flushes them once per bundle window.
type OrderSyncUseCase struct {
	settings    SettingsProvider
	transients  repository.TransientRepository
	tasks       repository.TaskScheduler
	importer    OrderImporter
	bundleDelay time.Duration
	queueTTL    time.Duration
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewOrderSyncUseCase constructs OrderSyncUseCase.
func NewOrderSyncUseCase(
	settings SettingsProvider,
	transients repository.TransientRepository,
	tasks repository.TaskScheduler,
	importer OrderImporter,
	opts Options,
	m *metrics.Metrics,
	logger *slog.Logger,
) *OrderSyncUseCase {
	opts = opts.withDefaults()
	return &OrderSyncUseCase{
		settings:    settings,
		transients:  transients,
		tasks:       tasks,
		importer:    importer,
		bundleDelay: opts.BundleDelay,
		queueTTL:    opts.QueueTTL,
		now:         opts.clock(),
		metrics:     m,
		logger:      logger,
	}
}

// OnOrderStatusChanged queues the order when it reaches a configured status
// and arms the bundled send.
func (u *OrderSyncUseCase) OnOrderStatusChanged(ctx context.Context, order model.Order, oldStatus, newStatus string) error {
	if order.ID <= 0 {
		return domainErrors.ErrInvalidOrder
	}

	settings, err := u.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		return nil
	}
	if newStatus != settings.GoodStatus && newStatus != settings.RefusedStatus {
		return nil
	}

	u.logger.Info("order status changed, adding to queue",
		slog.Int64("order_id", order.ID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	record, err := projectOrder(settings, order, newStatus)
	if err != nil {
		u.logger.Warn("skipping order", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return nil
	}

	size, err := u.enqueue(ctx, order.ID, record)
	if err != nil {
		return err
	}
	u.metrics.ObserveQueued(outcomeLabel(record.Outcome))
	u.logger.Debug("order added to queue", slog.Int64("order_id", order.ID), slog.Int("queued", size))

	if _, err := u.EnsureScheduled(ctx); err != nil {
		return fmt.Errorf("schedule bundled send: %w", err)
	}
	return nil
}

// EnsureScheduled arms the bundled send unless one is already pending.
// It reports whether a new registration was created.
func (u *OrderSyncUseCase) EnsureScheduled(ctx context.Context) (bool, error) {
	scheduled, err := u.tasks.IsScheduled(ctx, FlushTaskName)
	if err != nil {
		return false, err
	}
	if scheduled {
		return false, nil
	}

	at := u.now().Add(u.bundleDelay)
	created, err := u.tasks.ScheduleOnce(ctx, FlushTaskName, at)
	if err != nil {
		return false, err
	}
	if created {
		u.logger.Info("bundled send scheduled", slog.Time("run_at", at))
	}
	return created, nil
}

// Flush sends the queued records as one batch. On failure the queue is left
// as it was; on success the sent records are removed.
func (u *OrderSyncUseCase) Flush(ctx context.Context) error {
	snapshot, err := u.load(ctx)
	if err != nil {
		return err
	}
	if len(snapshot) == 0 {
		u.logger.Info("bundled send triggered but queue is empty")
		return nil
	}

	settings, err := u.settings.Get(ctx)
	if err != nil {
		return err
	}

	orders := snapshot.records()
	u.logger.Info("sending bundled orders", slog.Int("count", len(orders)))

	if _, err := u.importer.ImportOrders(ctx, settings.APIKeys(), orders); err != nil {
		u.metrics.ObserveFlush("failure", len(orders))
		u.logger.Error("bundled send failed", slog.Int("count", len(orders)), slog.String("error", err.Error()))
		return fmt.Errorf("import orders: %w", err)
	}

	remaining, err := u.removeSent(ctx, snapshot)
	if err != nil {
		return err
	}
	u.metrics.ObserveFlush("success", len(orders))
	u.logger.Info("bundled orders sent", slog.Int("count", len(orders)), slog.Int("remaining", remaining))

	if remaining > 0 {
		if _, err := u.EnsureScheduled(ctx); err != nil {
			return fmt.Errorf("schedule bundled send: %w", err)
		}
	}
	return nil
}

// Status reports queue size and the pending send time.
func (u *OrderSyncUseCase) Status(ctx context.Context) (*model.QueueStatus, error) {
	q, err := u.load(ctx)
	if err != nil {
		return nil, err
	}

	status := &model.QueueStatus{Pending: len(q)}
	task, err := u.tasks.Next(ctx, FlushTaskName)
	switch {
	case err == nil:
		runAt := task.RunAt
		status.NextFlushAt = &runAt
	case errors.Is(err, domainErrors.ErrNotFound):
	default:
		return nil, err
	}
	return status, nil
}

// Deactivate clears the pending send and drops the queue.
func (u *OrderSyncUseCase) Deactivate(ctx context.Context) error {
	if err := u.tasks.Clear(ctx, FlushTaskName); err != nil {
		return fmt.Errorf("clear bundled send: %w", err)
	}
	if err := u.transients.Delete(ctx, QueueKey); err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrQueuePersistence, err)
	}
	u.logger.Info("order sync deactivated")
	return nil
}

func (u *OrderSyncUseCase) enqueue(ctx context.Context, orderID int64, record model.OrderRecord) (int, error) {
	var size int
	err := u.transients.Update(ctx, QueueKey, u.queueTTL, func(current []byte) ([]byte, error) {
		q := u.decode(current)
		q[strconv.FormatInt(orderID, 10)] = record
		size = len(q)
		return json.Marshal(q)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domainErrors.ErrQueuePersistence, err)
	}
	return size, nil
}

func (u *OrderSyncUseCase) removeSent(ctx context.Context, sent queue) (int, error) {
	var remaining int
	err := u.transients.Update(ctx, QueueKey, u.queueTTL, func(current []byte) ([]byte, error) {
		q := u.decode(current)
		for id, record := range sent {
			if q[id] == record {
				delete(q, id)
			}
		}
		remaining = len(q)
		if remaining == 0 {
			return nil, nil
		}
		return json.Marshal(q)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domainErrors.ErrQueuePersistence, err)
	}
	return remaining, nil
}

func (u *OrderSyncUseCase) load(ctx context.Context) (queue, error) {
	raw, err := u.transients.Get(ctx, QueueKey)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return queue{}, nil
		}
		return nil, fmt.Errorf("load order queue: %w", err)
	}
	return u.decode(raw), nil
}

func (u *OrderSyncUseCase) decode(raw []byte) queue {
	q := queue{}
	if len(raw) == 0 {
		return q
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		u.logger.Warn("order queue unreadable, starting empty", slog.String("error", err.Error()))
		return queue{}
	}
	return q
}

func (q queue) records() []model.OrderRecord {
	ids := make([]string, 0, len(q))
	for id := range q {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		if errA != nil || errB != nil {
			return ids[i] < ids[j]
		}
		return a < b
	})

	records := make([]model.OrderRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, q[id])
	}
	return records
}

func projectOrder(settings model.Settings, order model.Order, status string) (model.OrderRecord, error) {
	email := strings.TrimSpace(order.BillingEmail)
	if email == "" {
		return model.OrderRecord{}, domainErrors.ErrMissingEmail
	}

	outcome := model.OutcomeSuccessful
	if status == settings.RefusedStatus {
		outcome = model.OutcomeRefused
	}

	return model.OrderRecord{
		EshopID:     settings.EshopID(),
		Email:       email,
		Code:        order.Number,
		Status:      status,
		Outcome:     outcome,
		Phone:       order.BillingPhone,
		CountryCode: order.BillingCountry,
		PostalCode:  order.BillingPostcode,
		Address:     order.FormattedAddress(),
	}, nil
}

func outcomeLabel(o model.Outcome) string {
	if o == model.OutcomeRefused {
		return "refused"
	}
	return "successful"
}
