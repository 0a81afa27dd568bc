package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polkiloo/codguard/internal/domain/model"
	testhelpers "github.com/polkiloo/codguard/internal/test"
	"github.com/polkiloo/codguard/internal/usecase"
)

type healthStub struct {
	err error
}

func (h healthStub) HealthCheck(context.Context) error { return h.err }

type fixture struct {
	facade     *CodGuardFacade
	options    *testhelpers.OptionRepositoryStub
	transients *testhelpers.TransientStoreStub
	tasks      *testhelpers.TaskSchedulerStub
	events     *testhelpers.BlockEventRepositoryStub
	client     *testhelpers.CodGuardClientStub
	health     *healthStub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testLogger()
	f := &fixture{
		options:    testhelpers.NewOptionRepositoryStub(),
		transients: testhelpers.NewTransientStoreStub(),
		tasks:      testhelpers.NewTaskSchedulerStub(),
		events:     &testhelpers.BlockEventRepositoryStub{},
		client:     &testhelpers.CodGuardClientStub{},
		health:     &healthStub{},
	}
	opts := usecase.Options{BundleDelay: time.Hour}
	settings := usecase.NewSettingsUseCase(f.options, logger)
	blocks := usecase.NewBlockLogUseCase(f.events, opts, logger)
	feedback := usecase.NewFeedbackReporter(f.client, nil, logger)
	gate := usecase.NewCheckoutGate(settings, f.client, blocks, feedback, nil, logger)
	sync := usecase.NewOrderSyncUseCase(settings, f.transients, f.tasks, f.client, opts, nil, logger)
	f.facade = NewCodGuardFacade(settings, gate, blocks, sync, f.health)
	return f
}

func strPtr(s string) *string { return &s }

func (f *fixture) enable(t *testing.T) {
	t.Helper()
	_, err := f.facade.UpdateSettings(context.Background(), model.SettingsUpdate{
		ShopID:     strPtr("123"),
		PublicKey:  strPtr(testhelpers.RandomASCIIString(12, 20)),
		PrivateKey: strPtr(testhelpers.RandomASCIIString(12, 20)),
		CODMethods: &[]string{"cod"},
	})
	if err != nil {
		t.Fatalf("enable settings: %v", err)
	}
}

func TestCodGuardFacadeCheckoutFlow(t *testing.T) {
	f := newFixture(t)
	f.enable(t)
	f.client.FetchRatingFn = func(context.Context, string, string, string) (float64, error) { return 0.2, nil }
	ctx := context.Background()

	scope := usecase.NewCheckoutScope()
	if got := f.facade.EvaluateCheckout(ctx, scope, "cod", "a@b.com"); got != model.DecisionBlocked {
		t.Fatalf("expected blocked, got %q", got)
	}

	stats, err := f.facade.BlockStats(ctx)
	if err != nil {
		t.Fatalf("block stats: %v", err)
	}
	if stats.All != 1 || len(stats.Recent) != 1 || stats.Recent[0].Email != "a@b.com" {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCodGuardFacadeSyncFlow(t *testing.T) {
	f := newFixture(t)
	f.enable(t)
	ctx := context.Background()

	order := model.Order{ID: 9, Number: "9", BillingEmail: "a@b.com"}
	if err := f.facade.OrderStatusChanged(ctx, order, "processing", model.DefaultGoodStatus); err != nil {
		t.Fatalf("status changed: %v", err)
	}

	status, err := f.facade.QueueStatus(ctx)
	if err != nil || status.Pending != 1 || status.NextFlushAt == nil {
		t.Fatalf("unexpected queue status %+v err=%v", status, err)
	}

	if err := f.facade.FlushQueue(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	status, err = f.facade.QueueStatus(ctx)
	if err != nil || status.Pending != 0 {
		t.Fatalf("expected empty queue, got %+v err=%v", status, err)
	}

	if err := f.facade.DeactivateSync(ctx); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if f.tasks.Count() != 0 {
		t.Fatal("expected pending send cleared")
	}
}

func TestCodGuardFacadeSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	settings, err := f.facade.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.Enabled || settings.RatingTolerance != model.DefaultRatingTolerance {
		t.Fatalf("expected defaults, got %+v", settings)
	}

	_, err = f.facade.UpdateSettings(ctx, model.SettingsUpdate{ShopID: strPtr("abc")})
	var verr *usecase.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if seeded, err := f.facade.SeedSettings(ctx, ""); err != nil || seeded {
		t.Fatalf("expected empty seed path to be a no-op, got %v err=%v", seeded, err)
	}
}

func TestCodGuardFacadeHealth(t *testing.T) {
	f := newFixture(t)
	if err := f.facade.Health(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.health.err = errors.New("ping failed")
	if err := f.facade.Health(context.Background()); err == nil {
		t.Fatal("expected health error")
	}

	bare := NewCodGuardFacade(nil, nil, nil, nil, nil)
	if err := bare.Health(context.Background()); err != nil {
		t.Fatalf("expected nil checker to report healthy, got %v", err)
	}
}
