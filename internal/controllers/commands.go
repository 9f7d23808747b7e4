package controllers

import (
	"context"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

// ProgressResult is returned by RecordProgress
type ProgressResult struct {
	Item            *models.MediaItem      `json:"item"`
	Progress        *models.ProgressRecord `json:"progress"`
	PercentComplete float64                `json:"percent_complete"`
	Delta           int                    `json:"delta"`
	AffectedLocks   []AffectedLock         `json:"affected_locks"`
}

// RecordProgress sets an item's progress and propagates the change through every lock it
// feeds. An item that becomes complete leaves the queue.
func (e *Engine) RecordProgress(ctx context.Context, ownerID string, itemID uint, input ProgressInput) (*ProgressResult, error) {
	// Read outside the transaction: the store has a single connection
	pagesPerInterval, err := e.settings.PagesPerInterval(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var result *ProgressResult
	err = e.run(ctx, "record_progress", ownerID, func(ctx context.Context, tx *models.Database) error {
		item, err := tx.GetItem(ctx, ownerID, itemID)
		if err != nil {
			return err
		}
		current, err := tx.GetProgress(ctx, item.ID)
		if err != nil {
			return err
		}

		change, err := e.tracker.RecordProgress(item, current, input, pagesPerInterval)
		if err != nil {
			return err
		}

		result = &ProgressResult{
			Item:            item,
			Progress:        change.Current,
			PercentComplete: models.PercentComplete(item, change.Current),
			Delta:           change.Delta,
			AffectedLocks:   []AffectedLock{},
		}
		if !change.Changed() {
			return nil
		}

		if err := tx.SaveProgress(ctx, change.Current); err != nil {
			return err
		}

		propagated, err := e.propagation.Propagate(ctx, tx, NewLockGraph(tx, pagesPerInterval), change)
		if err != nil {
			return err
		}
		e.metrics.observePropagation(propagated)
		result.AffectedLocks = propagated.Affected

		if change.NewlyCompleted {
			if _, err := e.queue.Normalize(ctx, tx, ownerID); err != nil {
				return err
			}
			if _, err := e.bumpQueue(ctx, tx, ownerID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReorderResult is returned by ReorderQueue
type ReorderResult struct {
	Reordered []*models.MediaItem `json:"reordered"`
	Version   int64               `json:"version"`
}

// ReorderQueue moves an incomplete item to the top, the bottom or a numbered position.
// When expectedVersion is set and the queue has moved on since, nothing changes and a
// ConflictError is returned.
func (e *Engine) ReorderQueue(ctx context.Context, ownerID string, itemID uint, pos Position, expectedVersion *int64) (*ReorderResult, error) {
	var result *ReorderResult
	err := e.run(ctx, "reorder_queue", ownerID, func(ctx context.Context, tx *models.Database) error {
		item, err := tx.GetItem(ctx, ownerID, itemID)
		if err != nil {
			return err
		}
		progress, err := tx.GetProgress(ctx, item.ID)
		if err != nil {
			return err
		}
		if progress.Completed {
			return apperrors.NewValidationError("item", "item %d is completed and cannot be reordered", item.ID)
		}

		current, err := tx.GetQueueVersion(ctx, ownerID)
		if err != nil {
			return err
		}
		if expectedVersion != nil && *expectedVersion != current {
			return apperrors.NewConflictError("queue", "queue is at version %d, expected %d", current, *expectedVersion)
		}

		ordered, err := e.queue.Move(ctx, tx, ownerID, item.ID, pos)
		if err != nil {
			return err
		}
		version, err := tx.BumpQueueVersion(ctx, ownerID, current)
		if err != nil {
			return err
		}

		result = &ReorderResult{Reordered: ordered, Version: version}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
