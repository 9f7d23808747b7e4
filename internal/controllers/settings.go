package controllers

import (
	"context"
	"math"
	"time"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
	"github.com/patrickmn/go-cache"
)

// SettingsStore persists per-owner settings
type SettingsStore interface {
	GetSettings(ctx context.Context, ownerID string) (*models.UserSettings, error)
	SaveSettings(ctx context.Context, settings *models.UserSettings) error
}

// SettingsProvider serves owner reading speeds with a short-lived cache in front of the store
type SettingsProvider struct {
	store            SettingsStore
	cache            *cache.Cache
	defaultPagesRate float64
}

// SettingsOptions configures a SettingsProvider
type SettingsOptions struct {
	DefaultPagesPerInterval float64
	CacheTTL                time.Duration
}

// NewSettingsProvider creates a new settings provider
func NewSettingsProvider(store SettingsStore, opts SettingsOptions) *SettingsProvider {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &SettingsProvider{
		store:            store,
		cache:            cache.New(ttl, 2*ttl),
		defaultPagesRate: opts.DefaultPagesPerInterval,
	}
}

// Get returns an owner's effective settings, falling back to the defaults
func (p *SettingsProvider) Get(ctx context.Context, ownerID string) (*models.UserSettings, error) {
	if cached, ok := p.cache.Get(ownerID); ok {
		settings := cached.(models.UserSettings)
		return &settings, nil
	}

	settings, err := p.store.GetSettings(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &models.UserSettings{OwnerID: ownerID, PagesPerInterval: p.defaultPagesRate}
	}

	p.cache.SetDefault(ownerID, *settings)
	return settings, nil
}

// PagesPerInterval returns an owner's reading speed
func (p *SettingsProvider) PagesPerInterval(ctx context.Context, ownerID string) (float64, error) {
	settings, err := p.Get(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return settings.PagesPerInterval, nil
}

// Update validates and stores new settings for an owner and drops the cached copy
func (p *SettingsProvider) Update(ctx context.Context, ownerID string, pagesPerInterval float64) (*models.UserSettings, error) {
	if math.IsNaN(pagesPerInterval) || math.IsInf(pagesPerInterval, 0) || pagesPerInterval <= 0 {
		return nil, apperrors.NewValidationError("pages_per_interval", "must be a positive number")
	}

	settings := &models.UserSettings{OwnerID: ownerID, PagesPerInterval: pagesPerInterval}
	if err := p.store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	p.cache.Delete(ownerID)
	return settings, nil
}
