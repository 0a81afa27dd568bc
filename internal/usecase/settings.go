package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/domain/repository"
)

// SettingsOptionName is the option holding shop settings.
const SettingsOptionName = "codguard_settings"

// SettingsProvider exposes read access to shop settings.
type SettingsProvider interface {
	Get(ctx context.Context) (model.Settings, error)
}

// SettingsUseCase reads and writes shop settings.
type SettingsUseCase struct {
	options repository.OptionRepository
	logger  *slog.Logger
}

// NewSettingsUseCase constructs SettingsUseCase.
func NewSettingsUseCase(options repository.OptionRepository, logger *slog.Logger) *SettingsUseCase {
	return &SettingsUseCase{options: options, logger: logger}
}

// Get returns stored settings merged onto defaults.
func (u *SettingsUseCase) Get(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()

	raw, err := u.options.Get(ctx, SettingsOptionName)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return settings, nil
		}
		return model.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	if err := json.Unmarshal(raw, &settings); err != nil {
		u.logger.Warn("stored settings are unreadable, using defaults", slog.String("error", err.Error()))
		settings = model.DefaultSettings()
	}
	if settings.CODMethods == nil {
		settings.CODMethods = []string{}
	}
	settings.RefreshEnabled()
	return settings, nil
}

// IsEnabled reports whether credentials are configured.
func (u *SettingsUseCase) IsEnabled(ctx context.Context) (bool, error) {
	settings, err := u.Get(ctx)
	if err != nil {
		return false, err
	}
	return settings.Enabled, nil
}

// Update merges, sanitizes and validates the change before storing it.
func (u *SettingsUseCase) Update(ctx context.Context, update model.SettingsUpdate) (model.Settings, error) {
	current, err := u.Get(ctx)
	if err != nil {
		return model.Settings{}, err
	}

	next := sanitizeSettings(update.Apply(current))
	if err := ValidateSettings(next); err != nil {
		return model.Settings{}, err
	}
	next.RefreshEnabled()

	raw, err := json.Marshal(next)
	if err != nil {
		return model.Settings{}, fmt.Errorf("encode settings: %w", err)
	}
	if err := u.options.Set(ctx, SettingsOptionName, raw); err != nil {
		return model.Settings{}, fmt.Errorf("store settings: %w", err)
	}

	u.logger.Info("settings updated", slog.String("shop_id", next.ShopID), slog.Bool("enabled", next.Enabled))
	return next, nil
}

// Seed stores settings from a YAML file when nothing is stored yet.
func (u *SettingsUseCase) Seed(ctx context.Context, path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read settings seed: %w", err)
	}

	var update model.SettingsUpdate
	if err := yaml.Unmarshal(content, &update); err != nil {
		return false, fmt.Errorf("parse settings seed: %w", err)
	}

	seeded := sanitizeSettings(update.Apply(model.DefaultSettings()))
	if err := ValidateSettings(seeded); err != nil {
		return false, err
	}
	seeded.RefreshEnabled()

	raw, err := json.Marshal(seeded)
	if err != nil {
		return false, fmt.Errorf("encode settings: %w", err)
	}
	added, err := u.options.Add(ctx, SettingsOptionName, raw)
	if err != nil {
		return false, fmt.Errorf("store settings: %w", err)
	}
	if added {
		u.logger.Info("settings seeded", slog.String("path", path), slog.Bool("enabled", seeded.Enabled))
	}
	return added, nil
}

func sanitizeSettings(s model.Settings) model.Settings {
	s.ShopID = strings.TrimSpace(s.ShopID)
	s.PublicKey = strings.TrimSpace(s.PublicKey)
	s.PrivateKey = strings.TrimSpace(s.PrivateKey)
	s.GoodStatus = strings.TrimSpace(s.GoodStatus)
	s.RefusedStatus = strings.TrimSpace(s.RefusedStatus)
	s.RejectionMessage = strings.TrimSpace(s.RejectionMessage)
	s.NotificationEmail = strings.TrimSpace(s.NotificationEmail)

	methods := make([]string, 0, len(s.CODMethods))
	seen := make(map[string]struct{}, len(s.CODMethods))
	for _, m := range s.CODMethods {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		methods = append(methods, m)
	}
	s.CODMethods = methods

	if s.RatingTolerance < 0 {
		s.RatingTolerance = 0
	}
	if s.RatingTolerance > 100 {
		s.RatingTolerance = 100
	}
	return s
}
