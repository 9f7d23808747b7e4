package controllers

import (
	"context"
	"fmt"

	"github.com/WayneDavenport/Mediaq-sub000/internal/goals"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

// LockStore is the read side of the store the lock graph needs
type LockStore interface {
	ListLocksMatchingTarget(ctx context.Context, ownerID string, mediaType models.MediaType, category string, itemID uint) ([]*models.Lock, error)
	ListItemsMatchingLock(ctx context.Context, lock *models.Lock) ([]*models.MediaItem, error)
	ListProgress(ctx context.Context, itemIDs []uint) (map[uint]*models.ProgressRecord, error)
}

// LockGraph answers which locks an item feeds and how far along each lock is
type LockGraph struct {
	store            LockStore
	pagesPerInterval float64
}

// NewLockGraph creates a lock graph over one owner's store view.
// pagesPerInterval converts time into pages for page goals fed by non-book items.
func NewLockGraph(store LockStore, pagesPerInterval float64) *LockGraph {
	return &LockGraph{store: store, pagesPerInterval: pagesPerInterval}
}

// Matches returns the item owner's locks whose target predicate the item satisfies, in ID order
func (g *LockGraph) Matches(ctx context.Context, item *models.MediaItem) ([]*models.Lock, error) {
	locks, err := g.store.ListLocksMatchingTarget(ctx, item.OwnerID, item.MediaType, item.Category, item.ID)
	if err != nil {
		return nil, err
	}

	// The store query is coarse; keep only what the predicate accepts
	matched := locks[:0]
	for _, lock := range locks {
		if lock.Matches(item) {
			matched = append(matched, lock)
		}
	}
	return matched, nil
}

// Aggregate sums the contribution of every item in the lock's owner set, in the lock's goal unit.
// dependent is the lock's gated item; its episode runtime converts time into episodes.
func (g *LockGraph) Aggregate(ctx context.Context, lock *models.Lock, dependent *models.MediaItem) (int, error) {
	items, err := g.store.ListItemsMatchingLock(ctx, lock)
	if err != nil {
		return 0, err
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	progress, err := g.store.ListProgress(ctx, ids)
	if err != nil {
		return 0, err
	}

	unit, _ := lock.Goal()
	total := 0
	for _, item := range items {
		amount, err := g.Contribution(item, progress[item.ID], unit, dependent)
		if err != nil {
			return 0, fmt.Errorf("failed to measure item %d for lock %d: %w", item.ID, lock.ID, err)
		}
		total += amount
	}
	return total, nil
}

// Contribution is what one item adds to an aggregate in the given unit: its full size when
// completed, its completed amount otherwise. A missing record counts as no progress.
func (g *LockGraph) Contribution(item *models.MediaItem, progress *models.ProgressRecord, unit models.Unit, dependent *models.MediaItem) (int, error) {
	record := progress
	if record == nil {
		record = &models.ProgressRecord{ItemID: item.ID}
	}

	// Native unit: no conversion
	if item.Unit() == unit {
		if record.Completed {
			return item.MaxProgress(), nil
		}
		return record.Native(unit), nil
	}

	minutes := record.CompletedDuration
	if record.Completed {
		minutes = item.Duration
	}

	switch unit {
	case models.UnitMinutes:
		return minutes, nil
	case models.UnitPages:
		return goals.PagesFromTime(float64(minutes), g.pagesPerInterval)
	case models.UnitEpisodes:
		if dependent == nil || dependent.Details.TV == nil {
			return 0, nil
		}
		return goals.EpisodesFromTime(float64(minutes), float64(dependent.Details.TV.EpisodeRuntime))
	default:
		// Custom units only compare with other tasks
		return 0, nil
	}
}
