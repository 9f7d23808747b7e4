package controllers

import (
	"context"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/goals"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
	"github.com/WayneDavenport/Mediaq-sub000/internal/utils"
)

// ItemRequest describes an item to add to the queue
type ItemRequest struct {
	Title     string           `json:"title"`
	MediaType models.MediaType `json:"media_type"`
	Category  string           `json:"category"`
	Duration  int              `json:"duration"` // minutes; derived for books and shows when zero
	Details   models.Details   `json:"details"`
}

// CreateItem adds an item at the bottom of the owner's queue with zero progress
func (e *Engine) CreateItem(ctx context.Context, ownerID string, req ItemRequest) (*ItemView, error) {
	item := &models.MediaItem{
		OwnerID:   ownerID,
		Title:     req.Title,
		MediaType: req.MediaType,
		Category:  utils.NormalizeCategory(req.Category),
		Duration:  req.Duration,
		Details:   req.Details,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := e.deriveDuration(ctx, item); err != nil {
		return nil, err
	}

	var view *ItemView
	err := e.run(ctx, "create_item", ownerID, func(ctx context.Context, tx *models.Database) error {
		candidate := *item
		if err := tx.CreateItem(ctx, &candidate); err != nil {
			return err
		}
		progress := &models.ProgressRecord{ItemID: candidate.ID}
		if err := tx.CreateProgress(ctx, progress); err != nil {
			return err
		}

		ordered, err := e.queue.Append(ctx, tx, ownerID, candidate.ID)
		if err != nil {
			return err
		}
		candidate.QueueNumber = len(ordered)
		if _, err := e.bumpQueue(ctx, tx, ownerID); err != nil {
			return err
		}

		view = newItemView(&candidate, progress)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// deriveDuration fills in the total minutes of books and shows when the caller left it out
func (e *Engine) deriveDuration(ctx context.Context, item *models.MediaItem) error {
	if item.Duration > 0 {
		return nil
	}

	var err error
	switch item.MediaType {
	case models.MediaTypeBook:
		var speed float64
		speed, err = e.settings.PagesPerInterval(ctx, item.OwnerID)
		if err != nil {
			return err
		}
		item.Duration, err = goals.ReadingTime(float64(item.Details.Book.PageCount), speed)
	case models.MediaTypeTV:
		tv := item.Details.TV
		item.Duration, err = goals.TVDuration(float64(tv.TotalEpisodes), float64(tv.EpisodeRuntime))
	case models.MediaTypeTask:
		return apperrors.NewValidationError("duration", "tasks need an estimated duration")
	}
	return err
}

// UncompleteItem reverses a completion on the user's request. Progress values are kept,
// the item goes back to the bottom of the queue, and no lock is reopened.
func (e *Engine) UncompleteItem(ctx context.Context, ownerID string, itemID uint) (*ItemView, error) {
	var view *ItemView
	err := e.run(ctx, "uncomplete_item", ownerID, func(ctx context.Context, tx *models.Database) error {
		item, err := tx.GetItem(ctx, ownerID, itemID)
		if err != nil {
			return err
		}
		progress, err := tx.GetProgress(ctx, item.ID)
		if err != nil {
			return err
		}
		if !progress.Completed {
			view = newItemView(item, progress)
			return nil
		}

		progress.Completed = false
		progress.CompletedAt = nil
		if err := tx.SaveProgress(ctx, progress); err != nil {
			return err
		}

		ordered, err := e.queue.Append(ctx, tx, ownerID, item.ID)
		if err != nil {
			return err
		}
		item.QueueNumber = len(ordered)
		if _, err := e.bumpQueue(ctx, tx, ownerID); err != nil {
			return err
		}

		view = newItemView(item, progress)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetItem returns one item with its progress
func (e *Engine) GetItem(ctx context.Context, ownerID string, itemID uint) (*ItemView, error) {
	item, err := e.db.GetItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	progress, err := e.db.GetProgress(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return newItemView(item, progress), nil
}

// QueueView is an owner's queue in order, with the version to echo back on reorder
type QueueView struct {
	Items   []*ItemView `json:"items"`
	Version int64       `json:"version"`
}

// ListQueue returns the owner's incomplete items in queue order
func (e *Engine) ListQueue(ctx context.Context, ownerID string) (*QueueView, error) {
	view := &QueueView{Items: []*ItemView{}}
	err := e.db.Transaction(ctx, func(tx *models.Database) error {
		items, err := tx.ListQueue(ctx, ownerID)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		progress, err := tx.ListProgress(ctx, ids)
		if err != nil {
			return err
		}
		for _, item := range items {
			record := progress[item.ID]
			if record == nil {
				record = &models.ProgressRecord{ItemID: item.ID}
			}
			view.Items = append(view.Items, newItemView(item, record))
		}

		view.Version, err = tx.GetQueueVersion(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Status summarizes an owner's items and locks
func (e *Engine) Status(ctx context.Context, ownerID string) (*models.OwnerStats, error) {
	return e.db.GetOwnerStats(ctx, ownerID)
}

// GetSettings returns an owner's effective settings
func (e *Engine) GetSettings(ctx context.Context, ownerID string) (*models.UserSettings, error) {
	return e.settings.Get(ctx, ownerID)
}

// UpdateSettings stores an owner's reading speed
func (e *Engine) UpdateSettings(ctx context.Context, ownerID string, pagesPerInterval float64) (*models.UserSettings, error) {
	return e.settings.Update(ctx, ownerID, pagesPerInterval)
}
