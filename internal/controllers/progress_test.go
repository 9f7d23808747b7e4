package controllers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

func TestProgressTrackerDerivesCanonicalMinutes(t *testing.T) {
	tracker := NewProgressTracker()

	show := &models.MediaItem{ID: 1, MediaType: models.MediaTypeTV, Duration: 420,
		Details: models.Details{TV: &models.TVDetails{TotalEpisodes: 10, EpisodeRuntime: 42}}}
	book := &models.MediaItem{ID: 2, MediaType: models.MediaTypeBook, Duration: 400,
		Details: models.Details{Book: &models.BookDetails{PageCount: 400}}}
	game := &models.MediaItem{ID: 3, MediaType: models.MediaTypeGame, Duration: 600}

	tests := []struct {
		name        string
		item        *models.MediaItem
		input       ProgressInput
		wantNative  int
		wantMinutes int
	}{
		{"episodes", show, ProgressInput{Value: 4, Unit: models.UnitEpisodes}, 4, 168},
		{"pages at 20 per interval", book, ProgressInput{Value: 50, Unit: models.UnitPages}, 50, 75},
		{"minutes pass through", game, ProgressInput{Value: 125, Unit: models.UnitMinutes}, 125, 125},
		{"fractional value rounds", game, ProgressInput{Value: 12.6, Unit: models.UnitMinutes}, 13, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := tracker.RecordProgress(tt.item, &models.ProgressRecord{ItemID: tt.item.ID}, tt.input, 20)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNative, change.Current.Native(tt.item.Unit()))
			assert.Equal(t, tt.wantMinutes, change.Current.CompletedDuration)
			assert.Equal(t, tt.wantNative, change.Delta)
			assert.False(t, change.Current.Completed)
		})
	}
}

func TestProgressTrackerLeavesCurrentUntouched(t *testing.T) {
	tracker := NewProgressTracker()
	game := &models.MediaItem{ID: 3, MediaType: models.MediaTypeGame, Duration: 600}
	current := &models.ProgressRecord{ItemID: 3, CompletedDuration: 100}

	change, err := tracker.RecordProgress(game, current, ProgressInput{Value: 600, Unit: models.UnitMinutes}, 20)
	require.NoError(t, err)

	assert.True(t, change.NewlyCompleted)
	assert.True(t, change.Current.Completed)
	assert.Equal(t, 500, change.Delta)
	assert.False(t, current.Completed)
	assert.Equal(t, 100, current.CompletedDuration)
	assert.Equal(t, 100, change.Previous.CompletedDuration)
}

func TestProgressTrackerRejectsNonFiniteValues(t *testing.T) {
	tracker := NewProgressTracker()
	game := &models.MediaItem{ID: 3, MediaType: models.MediaTypeGame, Duration: 600}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := tracker.RecordProgress(game, &models.ProgressRecord{}, ProgressInput{Value: v, Unit: models.UnitMinutes}, 20)
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestContributionUnitSubstitution(t *testing.T) {
	graph := NewLockGraph(nil, 20)
	showDependent := &models.MediaItem{MediaType: models.MediaTypeTV,
		Details: models.Details{TV: &models.TVDetails{TotalEpisodes: 8, EpisodeRuntime: 45}}}

	movie := &models.MediaItem{ID: 1, MediaType: models.MediaTypeMovie, Duration: 90}
	partial := &models.ProgressRecord{ItemID: 1, CompletedDuration: 60}
	done := &models.ProgressRecord{ItemID: 1, CompletedDuration: 60, Completed: true}

	tests := []struct {
		name     string
		progress *models.ProgressRecord
		unit     models.Unit
		want     int
	}{
		{"minutes", partial, models.UnitMinutes, 60},
		{"completed counts full duration", done, models.UnitMinutes, 90},
		{"pages from time", partial, models.UnitPages, 40},
		{"episodes from dependent runtime", done, models.UnitEpisodes, 2},
		{"custom units do not mix", done, models.UnitUnits, 0},
		{"no record", nil, models.UnitMinutes, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := graph.Contribution(movie, tt.progress, tt.unit, showDependent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	book := &models.MediaItem{ID: 2, MediaType: models.MediaTypeBook, Duration: 300,
		Details: models.Details{Book: &models.BookDetails{PageCount: 250}}}
	got, err := graph.Contribution(book, &models.ProgressRecord{PagesCompleted: 10, Completed: true}, models.UnitPages, nil)
	require.NoError(t, err)
	assert.Equal(t, 250, got)
}
