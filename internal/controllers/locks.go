package controllers

import (
	"context"
	"slices"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
	"github.com/WayneDavenport/Mediaq-sub000/internal/utils"
)

// LockRequest describes a lock to create. LockType may be left empty to infer it.
type LockRequest struct {
	DependentItemID uint            `json:"dependent_item_id"`
	KeyParentID     *uint           `json:"key_parent_id,omitempty"`
	KeyParentText   *string         `json:"key_parent_text,omitempty"`
	LockType        models.LockType `json:"lock_type,omitempty"`

	GoalTime     *int `json:"goal_time,omitempty"`
	GoalPages    *int `json:"goal_pages,omitempty"`
	GoalEpisodes *int `json:"goal_episodes,omitempty"`
	GoalUnits    *int `json:"goal_units,omitempty"`
}

// LockResult is returned by CreateLock
type LockResult struct {
	Lock          *models.Lock   `json:"lock"`
	AffectedLocks []AffectedLock `json:"affected_locks"`
}

// CreateLock validates and stores a new lock, then evaluates it right away. A goal that
// is already met completes the lock and cascades like any other unlock.
func (e *Engine) CreateLock(ctx context.Context, ownerID string, req LockRequest) (*LockResult, error) {
	lock := &models.Lock{
		OwnerID:         ownerID,
		DependentItemID: req.DependentItemID,
		KeyParentID:     req.KeyParentID,
		LockType:        req.LockType,
		GoalTime:        req.GoalTime,
		GoalPages:       req.GoalPages,
		GoalEpisodes:    req.GoalEpisodes,
		GoalUnits:       req.GoalUnits,
	}
	if req.KeyParentText != nil {
		text := utils.NormalizeCategory(*req.KeyParentText)
		lock.KeyParentText = &text
	}
	if lock.LockType == "" {
		lock.LockType = models.InferLockType(lock.KeyParentID, lock.KeyParentText)
	}
	if err := lock.ValidateShape(); err != nil {
		return nil, err
	}

	pagesPerInterval, err := e.settings.PagesPerInterval(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var result *LockResult
	err = e.run(ctx, "create_lock", ownerID, func(ctx context.Context, tx *models.Database) error {
		// Retries start from the request, not from a half-written lock
		candidate := *lock

		dependent, err := tx.GetItem(ctx, ownerID, candidate.DependentItemID)
		if err != nil {
			return err
		}
		if err := candidate.ValidateGoal(dependent); err != nil {
			return err
		}
		if err := e.validateTarget(ctx, tx, &candidate, dependent); err != nil {
			return err
		}

		if err := tx.CreateLock(ctx, &candidate); err != nil {
			return err
		}
		evaluated, err := e.propagation.EvaluateLock(ctx, tx, NewLockGraph(tx, pagesPerInterval), &candidate)
		if err != nil {
			return err
		}
		e.metrics.observePropagation(evaluated)

		result = &LockResult{Lock: &candidate, AffectedLocks: evaluated.Affected}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateTarget checks that the key parent exists for the owner and that a specific
// lock does not close a cycle
func (e *Engine) validateTarget(ctx context.Context, tx *models.Database, lock *models.Lock, dependent *models.MediaItem) error {
	switch lock.LockType {
	case models.LockTypeSpecific:
		key, err := tx.GetItem(ctx, lock.OwnerID, *lock.KeyParentID)
		if err != nil {
			return err
		}
		if key.ID == dependent.ID {
			return apperrors.NewValidationError("key_parent_id", "an item cannot be locked behind itself")
		}
		locks, err := tx.ListLocksByOwner(ctx, lock.OwnerID)
		if err != nil {
			return err
		}
		if reaches(locks, dependent.ID, key.ID) {
			return apperrors.NewValidationError("key_parent_id", "item %d already depends on item %d", key.ID, dependent.ID)
		}

	case models.LockTypeCategory:
		categories, err := tx.ListCategories(ctx, lock.OwnerID)
		if err != nil {
			return err
		}
		text := *lock.KeyParentText
		if slices.Contains(categories, text) {
			return nil
		}
		if suggestion, ok := utils.SuggestCategory(text, categories); ok {
			return apperrors.NewValidationError("key_parent_text", "no item has category %q, did you mean %q?", text, suggestion)
		}
		return apperrors.NewValidationError("key_parent_text", "no item has category %q", text)
	}
	return nil
}

// reaches reports whether to is reachable from from along specific-lock edges
// (key parent -> dependent item)
func reaches(locks []*models.Lock, from, to uint) bool {
	edges := make(map[uint][]uint)
	for _, l := range locks {
		if l.KeyParentID != nil {
			edges[*l.KeyParentID] = append(edges[*l.KeyParentID], l.DependentItemID)
		}
	}

	seen := map[uint]bool{from: true}
	queue := []uint{from}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == to {
			return true
		}
		for _, dep := range edges[next] {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return false
}

// ListLocks returns every lock of an owner
func (e *Engine) ListLocks(ctx context.Context, ownerID string) ([]*models.Lock, error) {
	return e.db.ListLocksByOwner(ctx, ownerID)
}

// ResetLock explicitly re-locks a lock: it is marked incomplete and its accumulated
// progress is cleared. The next change that touches it re-evaluates it.
func (e *Engine) ResetLock(ctx context.Context, ownerID string, lockID uint) (*models.Lock, error) {
	var lock *models.Lock
	err := e.run(ctx, "reset_lock", ownerID, func(ctx context.Context, tx *models.Database) error {
		l, err := tx.GetLock(ctx, ownerID, lockID)
		if err != nil {
			return err
		}
		l.Completed = false
		l.CompletedAt = nil
		l.SetAccumulated(0)
		if err := tx.SaveLock(ctx, l); err != nil {
			return err
		}
		lock = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// DeleteLock removes a lock
func (e *Engine) DeleteLock(ctx context.Context, ownerID string, lockID uint) error {
	return e.run(ctx, "delete_lock", ownerID, func(ctx context.Context, tx *models.Database) error {
		return tx.DeleteLock(ctx, ownerID, lockID)
	})
}
