package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/metrics"
	testhelpers "github.com/polkiloo/codguard/internal/test"
)

type syncFixture struct {
	uc         *OrderSyncUseCase
	transients *testhelpers.TransientStoreStub
	tasks      *testhelpers.TaskSchedulerStub
	client     *testhelpers.CodGuardClientStub
	m          *metrics.Metrics
}

func newSyncFixture(settings model.Settings) *syncFixture {
	transients := testhelpers.NewTransientStoreStub()
	transients.Now = func() time.Time { return testNow }
	tasks := testhelpers.NewTaskSchedulerStub()
	client := &testhelpers.CodGuardClientStub{}
	m := metrics.New(prometheus.NewRegistry())
	uc := NewOrderSyncUseCase(settingsStub{settings: settings}, transients, tasks, client, testOptions(), m, testLogger())
	return &syncFixture{uc: uc, transients: transients, tasks: tasks, client: client, m: m}
}

func (f *syncFixture) queue(t *testing.T) map[string]model.OrderRecord {
	t.Helper()
	raw, err := f.transients.Get(context.Background(), QueueKey)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return map[string]model.OrderRecord{}
	}
	if err != nil {
		t.Fatalf("read queue: %v", err)
	}
	q := map[string]model.OrderRecord{}
	if err := json.Unmarshal(raw, &q); err != nil {
		t.Fatalf("decode queue: %v", err)
	}
	return q
}

func sampleOrder(id int64) model.Order {
	return model.Order{
		ID:              id,
		Number:          fmt.Sprintf("10%02d", id),
		BillingEmail:    "a@b.com",
		BillingPhone:    "+420123456789",
		BillingCountry:  "CZ",
		BillingPostcode: "11000",
		AddressLines:    []string{"Main 1", "", "Prague", "CZ-10"},
	}
}

func TestOnOrderStatusChangedLastWriteWins(t *testing.T) {
	f := newSyncFixture(enabledSettings())
	ctx := context.Background()
	order := sampleOrder(7)

	if err := f.uc.OnOrderStatusChanged(ctx, order, "processing", model.DefaultRefusedStatus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := f.queue(t)
	if len(q) != 1 || q["7"].Outcome != model.OutcomeRefused {
		t.Fatalf("expected one refused entry, got %+v", q)
	}
	rec := q["7"]
	if rec.Address != "Main 1, Prague, CZ-10" {
		t.Fatalf("unexpected address %q", rec.Address)
	}
	if rec.EshopID != 123 || rec.Email != "a@b.com" || rec.Code != order.Number || rec.Status != model.DefaultRefusedStatus {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Phone != "+420123456789" || rec.CountryCode != "CZ" || rec.PostalCode != "11000" {
		t.Fatalf("unexpected contact fields %+v", rec)
	}

	if err := f.uc.OnOrderStatusChanged(ctx, order, model.DefaultRefusedStatus, model.DefaultGoodStatus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q = f.queue(t)
	if len(q) != 1 || q["7"].Outcome != model.OutcomeSuccessful {
		t.Fatalf("expected the same entry updated to successful, got %+v", q)
	}

	if v := testutil.ToFloat64(f.m.QueuedCounter("refused")); v != 1 {
		t.Fatalf("expected refused counter 1, got %v", v)
	}
	if !f.transients.ExpiresAt(QueueKey).Equal(testNow.Add(24 * time.Hour)) {
		t.Fatalf("expected 24h queue expiry, got %v", f.transients.ExpiresAt(QueueKey))
	}
}

func TestOnOrderStatusChangedSchedulesOnce(t *testing.T) {
	f := newSyncFixture(enabledSettings())
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(id), "processing", model.DefaultGoodStatus); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if f.tasks.Count() != 1 {
		t.Fatalf("expected exactly one pending send, got %d", f.tasks.Count())
	}
	task, err := f.tasks.Next(ctx, FlushTaskName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !task.RunAt.Equal(testNow.Add(time.Hour)) {
		t.Fatalf("expected send one hour after first enqueue, got %v", task.RunAt)
	}
	if len(f.queue(t)) != 3 {
		t.Fatalf("expected three queued orders")
	}
}

func TestOnOrderStatusChangedIgnoredCases(t *testing.T) {
	disabled := model.DefaultSettings()
	noEmail := sampleOrder(1)
	noEmail.BillingEmail = "  "

	cases := []struct {
		name     string
		settings model.Settings
		order    model.Order
		status   string
	}{
		{name: "disabled", settings: disabled, order: sampleOrder(1), status: model.DefaultGoodStatus},
		{name: "other status", settings: enabledSettings(), order: sampleOrder(1), status: "on-hold"},
		{name: "no email", settings: enabledSettings(), order: noEmail, status: model.DefaultGoodStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSyncFixture(tc.settings)
			if err := f.uc.OnOrderStatusChanged(context.Background(), tc.order, "processing", tc.status); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.transients.Updates() != 0 {
				t.Fatal("expected no queue write")
			}
			if f.tasks.Attempts() != 0 || f.tasks.Count() != 0 {
				t.Fatal("expected no scheduling")
			}
		})
	}
}

func TestOnOrderStatusChangedErrors(t *testing.T) {
	ctx := context.Background()

	f := newSyncFixture(enabledSettings())
	if err := f.uc.OnOrderStatusChanged(ctx, model.Order{BillingEmail: "a@b.com"}, "", model.DefaultGoodStatus); !errors.Is(err, domainErrors.ErrInvalidOrder) {
		t.Fatalf("expected invalid order, got %v", err)
	}

	f = newSyncFixture(enabledSettings())
	f.transients.UpdateErr = errors.New("disk full")
	if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(1), "", model.DefaultGoodStatus); !errors.Is(err, domainErrors.ErrQueuePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if f.tasks.Count() != 0 {
		t.Fatal("nothing must be scheduled when the queue write failed")
	}

	f = newSyncFixture(enabledSettings())
	f.tasks.ScheduleErr = errors.New("scheduler down")
	if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(1), "", model.DefaultGoodStatus); err == nil {
		t.Fatal("expected scheduling error")
	}
	if len(f.queue(t)) != 1 {
		t.Fatal("queue write must survive scheduling failure")
	}

	uc := NewOrderSyncUseCase(settingsStub{err: errors.New("db")}, testhelpers.NewTransientStoreStub(), testhelpers.NewTaskSchedulerStub(), &testhelpers.CodGuardClientStub{}, testOptions(), nil, testLogger())
	if err := uc.OnOrderStatusChanged(ctx, sampleOrder(1), "", model.DefaultGoodStatus); err == nil {
		t.Fatal("expected settings error")
	}
}

func TestEnsureScheduledIsIdempotent(t *testing.T) {
	f := newSyncFixture(enabledSettings())
	ctx := context.Background()

	created, err := f.uc.EnsureScheduled(ctx)
	if err != nil || !created {
		t.Fatalf("expected first call to schedule, got %v err=%v", created, err)
	}
	created, err = f.uc.EnsureScheduled(ctx)
	if err != nil || created {
		t.Fatalf("expected second call to be a no-op, got %v err=%v", created, err)
	}
	if f.tasks.Count() != 1 {
		t.Fatalf("expected exactly one scheduled task, got %d", f.tasks.Count())
	}

	f.tasks.CheckErr = errors.New("boom")
	if _, err := f.uc.EnsureScheduled(ctx); err == nil {
		t.Fatal("expected error")
	}
}

func TestFlushFailureKeepsQueue(t *testing.T) {
	f := newSyncFixture(enabledSettings())
	ctx := context.Background()
	for id := int64(1); id <= 2; id++ {
		if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(id), "", model.DefaultGoodStatus); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	before := f.queue(t)

	f.client.ImportOrdersFn = func(context.Context, model.APIKeys, []model.OrderRecord) (*model.ImportResult, error) {
		return nil, errors.New("codguard returned status 500")
	}
	if err := f.uc.Flush(ctx); err == nil {
		t.Fatal("expected flush error")
	}

	after := f.queue(t)
	if len(after) != len(before) {
		t.Fatalf("queue changed after failed flush: %+v", after)
	}
	for id, rec := range before {
		if after[id] != rec {
			t.Fatalf("entry %s changed after failed flush", id)
		}
	}
	if v := testutil.ToFloat64(f.m.FlushCounter("failure")); v != 1 {
		t.Fatalf("expected failure counter 1, got %v", v)
	}
}

func TestFlushSuccessEmptiesQueue(t *testing.T) {
	settings := enabledSettings()
	f := newSyncFixture(settings)
	ctx := context.Background()
	for _, id := range []int64{3, 1, 2} {
		if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(id), "", model.DefaultGoodStatus); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var keys model.APIKeys
	f.client.ImportOrdersFn = func(_ context.Context, k model.APIKeys, orders []model.OrderRecord) (*model.ImportResult, error) {
		keys = k
		return &model.ImportResult{StatusCode: 200, Body: []byte(`{}`)}, nil
	}
	if err := f.uc.Flush(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.queue(t)) != 0 {
		t.Fatal("expected empty queue after successful flush")
	}
	if keys != settings.APIKeys() {
		t.Fatalf("expected both api keys sent, got %+v", keys)
	}
	imports := f.client.Imports()
	if len(imports) != 1 || len(imports[0]) != 3 {
		t.Fatalf("expected one batch of three, got %+v", imports)
	}
	if imports[0][0].Code != sampleOrder(1).Number || imports[0][2].Code != sampleOrder(3).Number {
		t.Fatalf("expected batch ordered by order id, got %+v", imports[0])
	}
	if v := testutil.ToFloat64(f.m.BatchSizeGauge()); v != 3 {
		t.Fatalf("expected batch size gauge 3, got %v", v)
	}
}

func TestFlushEmptyQueueIsNoop(t *testing.T) {
	f := newSyncFixture(enabledSettings())
	if err := f.uc.Flush(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.client.Imports()) != 0 {
		t.Fatal("expected no import call for empty queue")
	}
}

func TestFlushKeepsEntriesChangedDuringSend(t *testing.T) {
	f := newSyncFixture(enabledSettings())
	ctx := context.Background()
	if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(1), "", model.DefaultGoodStatus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(2), "", model.DefaultGoodStatus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.tasks.ClaimDue(ctx, testNow.Add(2*time.Hour), 10); err != nil {
		t.Fatalf("claim: %v", err)
	}

	f.client.ImportOrdersFn = func(ctx context.Context, _ model.APIKeys, _ []model.OrderRecord) (*model.ImportResult, error) {
		if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(1), model.DefaultGoodStatus, model.DefaultRefusedStatus); err != nil {
			t.Errorf("concurrent enqueue failed: %v", err)
		}
		if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(3), "", model.DefaultGoodStatus); err != nil {
			t.Errorf("concurrent enqueue failed: %v", err)
		}
		return &model.ImportResult{StatusCode: 201, Body: []byte(`[]`)}, nil
	}
	if err := f.uc.Flush(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := f.queue(t)
	if len(q) != 2 {
		t.Fatalf("expected entries written during send to survive, got %+v", q)
	}
	if q["1"].Outcome != model.OutcomeRefused {
		t.Fatalf("expected overwritten entry to survive, got %+v", q["1"])
	}
	if _, ok := q["2"]; ok {
		t.Fatal("sent entry must be removed")
	}
	if f.tasks.Count() != 1 {
		t.Fatalf("expected leftover entries to be scheduled, got %d tasks", f.tasks.Count())
	}
}

func TestFlushPersistenceErrorAfterSend(t *testing.T) {
	f := newSyncFixture(enabledSettings())
	ctx := context.Background()
	if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(1), "", model.DefaultGoodStatus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.client.ImportOrdersFn = func(context.Context, model.APIKeys, []model.OrderRecord) (*model.ImportResult, error) {
		f.transients.UpdateErr = errors.New("disk full")
		return &model.ImportResult{StatusCode: 200}, nil
	}
	if err := f.uc.Flush(ctx); !errors.Is(err, domainErrors.ErrQueuePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestStatusAndDeactivate(t *testing.T) {
	f := newSyncFixture(enabledSettings())
	ctx := context.Background()

	status, err := f.uc.Status(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Pending != 0 || status.NextFlushAt != nil {
		t.Fatalf("expected idle status, got %+v", status)
	}

	if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(1), "", model.DefaultGoodStatus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status, err = f.uc.Status(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Pending != 1 || status.NextFlushAt == nil || !status.NextFlushAt.Equal(testNow.Add(time.Hour)) {
		t.Fatalf("unexpected status %+v", status)
	}

	if err := f.uc.Deactivate(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.tasks.Count() != 0 || len(f.queue(t)) != 0 {
		t.Fatal("expected task and queue cleared")
	}

	f.transients.DeleteErr = errors.New("boom")
	if err := f.uc.Deactivate(ctx); !errors.Is(err, domainErrors.ErrQueuePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestQueueRecordsSkipsCorruptBlob(t *testing.T) {
	f := newSyncFixture(enabledSettings())
	ctx := context.Background()
	if err := f.transients.Set(ctx, QueueKey, []byte("garbage"), time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.uc.OnOrderStatusChanged(ctx, sampleOrder(1), "", model.DefaultGoodStatus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.queue(t)) != 1 {
		t.Fatal("expected corrupt queue to be replaced")
	}
}
