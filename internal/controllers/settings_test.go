package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

type countingSettingsStore struct {
	saved map[string]models.UserSettings
	reads int
}

func (s *countingSettingsStore) GetSettings(_ context.Context, ownerID string) (*models.UserSettings, error) {
	s.reads++
	if settings, ok := s.saved[ownerID]; ok {
		return &settings, nil
	}
	return nil, nil
}

func (s *countingSettingsStore) SaveSettings(_ context.Context, settings *models.UserSettings) error {
	s.saved[settings.OwnerID] = *settings
	return nil
}

func TestSettingsProviderCachesAndInvalidates(t *testing.T) {
	store := &countingSettingsStore{saved: map[string]models.UserSettings{}}
	provider := NewSettingsProvider(store, SettingsOptions{DefaultPagesPerInterval: 20, CacheTTL: time.Minute})
	ctx := context.Background()

	speed, err := provider.PagesPerInterval(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 20.0, speed)

	_, err = provider.PagesPerInterval(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads)

	_, err = provider.Update(ctx, owner, 45)
	require.NoError(t, err)

	speed, err = provider.PagesPerInterval(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 45.0, speed)
	assert.Equal(t, 2, store.reads)
}
