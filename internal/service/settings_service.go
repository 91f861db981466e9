package service

import (
	"context"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/util"
	"storefront-service/internal/watch"

	"go.uber.org/zap"
)

// SettingsService manages the singleton store profile
type SettingsService struct {
	store  SettingsStore
	cache  SettingsCache
	feed   *watch.Feed
	logger *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsStore SettingsStore, cache SettingsCache, feed *watch.Feed) *SettingsService {
	return &SettingsService{
		store:  settingsStore,
		cache:  cache,
		feed:   feed,
		logger: util.GetLogger(),
	}
}

// Get returns the current settings record
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	if s.cache != nil {
		if settings, ok := s.cache.GetSettingsCache(ctx); ok {
			return settings, nil
		}
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSettingsCache(ctx, settings); err != nil {
			s.logger.Warn("Failed to cache settings", zap.Error(err))
		}
	}
	return settings, nil
}

// Upsert creates or replaces the settings record. The operation is
// idempotent; there is always exactly one logical record.
func (s *SettingsService) Upsert(ctx context.Context, input *models.Settings) (*models.Settings, error) {
	if strings.TrimSpace(input.StoreName) == "" {
		return nil, apperr.Validation("store name must not be empty", "name")
	}

	settings := &models.Settings{
		StoreName: input.StoreName,
		Address:   input.Address,
		Contact:   input.Contact,
		Email:     input.Email,
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("Settings updated", zap.String("store_name", settings.StoreName))

	if s.cache != nil {
		if err := s.cache.InvalidateSettings(ctx); err != nil {
			s.logger.Warn("Failed to invalidate settings cache", zap.Error(err))
		}
		if _, err := s.cache.BumpVersion(ctx, redisclient.ScopeSettings); err != nil {
			s.logger.Warn("Failed to bump settings version", zap.Error(err))
		}
	}
	if s.feed != nil {
		s.feed.Publish(watch.ScopeSettings)
	}
	return settings, nil
}
