package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/polkiloo/codguard/internal/domain/model"
	testhelpers "github.com/polkiloo/codguard/internal/test"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testOptions() Options {
	return Options{
		BundleDelay:    time.Hour,
		QueueTTL:       24 * time.Hour,
		BlockRetention: 90 * 24 * time.Hour,
		Now:            func() time.Time { return testNow },
	}
}

type settingsStub struct {
	settings model.Settings
	err      error
}

func (s settingsStub) Get(context.Context) (model.Settings, error) {
	return s.settings, s.err
}

func enabledSettings() model.Settings {
	s := model.DefaultSettings()
	s.ShopID = "123"
	s.PublicKey = testhelpers.RandomASCIIString(16, 16)
	s.PrivateKey = testhelpers.RandomASCIIString(16, 16)
	s.CODMethods = []string{"cod"}
	s.RefreshEnabled()
	return s
}
