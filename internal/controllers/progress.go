package controllers

import (
	"math"
	"time"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/goals"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

// ProgressInput is one raw progress edit. Unit names the field the caller is setting;
// the other fields are derived from it and never fed back.
type ProgressInput struct {
	Value        float64     `json:"value"`
	Unit         models.Unit `json:"unit"`
	MarkComplete bool        `json:"mark_complete"`
}

// ProgressChange is the outcome of applying a ProgressInput to an item
type ProgressChange struct {
	Item     *models.MediaItem
	Previous models.ProgressRecord
	Current  *models.ProgressRecord

	// Delta is the change of the native value (pages, episodes, units or minutes)
	Delta          int
	NewlyCompleted bool
}

// Changed reports whether anything downstream needs to be re-evaluated
func (c *ProgressChange) Changed() bool {
	return c.Delta != 0 || c.NewlyCompleted
}

// ProgressTracker normalizes raw progress edits into canonical progress records
type ProgressTracker struct {
	now func() time.Time
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{now: time.Now}
}

// RecordProgress applies input to the item's current record and returns the change.
// current is not modified. pagesPerInterval is the owner's reading speed, used for books.
func (t *ProgressTracker) RecordProgress(item *models.MediaItem, current *models.ProgressRecord, input ProgressInput, pagesPerInterval float64) (*ProgressChange, error) {
	unit := item.Unit()
	if input.Unit != unit {
		return nil, apperrors.NewValidationError("unit", "%s progress is recorded in %s, not %q", item.MediaType, unit, input.Unit)
	}
	if math.IsNaN(input.Value) || math.IsInf(input.Value, 0) {
		return nil, apperrors.NewValidationError("value", "must be a finite number")
	}
	if input.Value < 0 {
		return nil, apperrors.NewValidationError("value", "must not be negative, got %g", input.Value)
	}

	max := item.MaxProgress()
	if max <= 0 {
		return nil, apperrors.NewValidationError("item", "item %d has no measurable size", item.ID)
	}

	native := int(math.Round(input.Value))
	if native > max {
		native = max
	}

	// A completed item keeps at least the progress that completed it
	if current.Completed && native < current.Native(unit) {
		return nil, apperrors.NewValidationError("value", "item %d is completed; un-complete it before lowering its progress", item.ID)
	}

	minutes, err := t.canonicalMinutes(item, native, pagesPerInterval)
	if err != nil {
		return nil, err
	}

	next := *current
	next.ItemID = item.ID
	next.SetNative(unit, native)
	next.CompletedDuration = minutes
	next.Completed = current.Completed || native >= max || input.MarkComplete

	change := &ProgressChange{
		Item:     item,
		Previous: *current,
		Current:  &next,
		Delta:    native - current.Native(unit),
	}
	if next.Completed && !current.Completed {
		now := t.now()
		next.CompletedAt = &now
		change.NewlyCompleted = true
	}

	return change, nil
}

// canonicalMinutes derives completed_duration from the native value
func (t *ProgressTracker) canonicalMinutes(item *models.MediaItem, native int, pagesPerInterval float64) (int, error) {
	switch item.MediaType {
	case models.MediaTypeBook:
		return goals.ReadingTime(float64(native), pagesPerInterval)
	case models.MediaTypeTV:
		return goals.TVDuration(float64(native), float64(item.Details.TV.EpisodeRuntime))
	case models.MediaTypeTask:
		return goals.UnitsToTime(float64(native), float64(item.Details.Task.UnitRange), float64(item.Duration))
	default:
		return native, nil
	}
}
