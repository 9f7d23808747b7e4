package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

// runawayStore hands out a fresh, already satisfied lock for every item it is asked about,
// the way a corrupted lock table with a cycle would
type runawayStore struct {
	lockCount int64
	nextLock  uint
	saved     int
}

func (s *runawayStore) GetItem(_ context.Context, ownerID string, id uint) (*models.MediaItem, error) {
	return &models.MediaItem{ID: id, OwnerID: ownerID, Title: "Item", MediaType: models.MediaTypeMovie, Duration: 10}, nil
}

func (s *runawayStore) ListLocksMatchingTarget(_ context.Context, ownerID string, _ models.MediaType, _ string, itemID uint) ([]*models.Lock, error) {
	s.nextLock++
	key := itemID
	return []*models.Lock{{
		ID:              s.nextLock,
		OwnerID:         ownerID,
		DependentItemID: itemID + 1,
		KeyParentID:     &key,
		LockType:        models.LockTypeSpecific,
		GoalTime:        intPtr(1),
	}}, nil
}

func (s *runawayStore) ListItemsMatchingLock(ctx context.Context, lock *models.Lock) ([]*models.MediaItem, error) {
	item, _ := s.GetItem(ctx, lock.OwnerID, *lock.KeyParentID)
	return []*models.MediaItem{item}, nil
}

func (s *runawayStore) ListProgress(_ context.Context, itemIDs []uint) (map[uint]*models.ProgressRecord, error) {
	out := make(map[uint]*models.ProgressRecord)
	for _, id := range itemIDs {
		out[id] = &models.ProgressRecord{ItemID: id, CompletedDuration: 10, Completed: true}
	}
	return out, nil
}

func (s *runawayStore) CountLocks(context.Context, string) (int64, error) {
	return s.lockCount, nil
}

func (s *runawayStore) SaveLock(context.Context, *models.Lock) error {
	s.saved++
	return nil
}

func TestPropagateStopsAtLockCount(t *testing.T) {
	store := &runawayStore{lockCount: 3}
	engine := NewPropagationEngine()
	item, _ := store.GetItem(context.Background(), owner, 1)

	change := &ProgressChange{
		Item:     item,
		Current:  &models.ProgressRecord{ItemID: 1, CompletedDuration: 10, Completed: true},
		Delta:    10,
		Previous: models.ProgressRecord{ItemID: 1},
	}
	_, err := engine.Propagate(context.Background(), store, NewLockGraph(store, 30), change)
	require.Error(t, err)
	assert.True(t, apperrors.IsPropagationLimit(err))

	var limitErr *apperrors.PropagationLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 3, limitErr.Limit)
	assert.Equal(t, 4, limitErr.Visits)
	assert.Equal(t, 3, store.saved)
}

func TestPropagateTerminatesWithinLockCount(t *testing.T) {
	e, db := setupEngine(t)
	ctx := context.Background()

	// A chain a -> b -> c -> d, each unlocked by the one before
	a := addMovie(t, e, "A", 30)
	b := addMovie(t, e, "B", 30)
	c := addMovie(t, e, "C", 30)
	d := addMovie(t, e, "D", 30)
	_, err := e.RecordProgress(ctx, owner, b.ID, ProgressInput{Value: 30, Unit: models.UnitMinutes})
	require.NoError(t, err)
	_, err = e.RecordProgress(ctx, owner, c.ID, ProgressInput{Value: 30, Unit: models.UnitMinutes})
	require.NoError(t, err)

	// Stored directly so none of them is evaluated before the pass under test
	for _, pair := range [][2]uint{{a.ID, b.ID}, {b.ID, c.ID}, {c.ID, d.ID}} {
		key := pair[0]
		require.NoError(t, db.CreateLock(ctx, &models.Lock{
			OwnerID: owner, DependentItemID: pair[1], KeyParentID: &key,
			LockType: models.LockTypeSpecific, GoalTime: intPtr(30),
		}))
	}

	result, err := e.RecordProgress(ctx, owner, a.ID, ProgressInput{Value: 30, Unit: models.UnitMinutes})
	require.NoError(t, err)
	require.Len(t, result.AffectedLocks, 3)
	assert.Equal(t, []string{"B", "C", "D"}, []string{
		result.AffectedLocks[0].DependentItemTitle,
		result.AffectedLocks[1].DependentItemTitle,
		result.AffectedLocks[2].DependentItemTitle,
	})
	assert.Equal(t, 30, result.AffectedLocks[0].ContributedDelta)
	assert.Equal(t, 0, result.AffectedLocks[1].ContributedDelta)
}

func TestPropagationFailureRollsBackCommand(t *testing.T) {
	e, db := setupEngine(t)
	ctx := context.Background()

	book := addBook(t, e, "Dune", "", 100)
	// Dependent item was removed out of band; evaluating the lock fails
	require.NoError(t, db.CreateLock(ctx, &models.Lock{
		OwnerID: owner, DependentItemID: 999, KeyParentID: uintPtr(book.ID),
		LockType: models.LockTypeSpecific, GoalPages: intPtr(10),
	}))

	_, err := e.RecordProgress(ctx, owner, book.ID, ProgressInput{Value: 100, Unit: models.UnitPages})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	progress, err := db.GetProgress(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, progress.Completed)
	assert.Equal(t, 0, progress.PagesCompleted)
	assert.Equal(t, []uint{book.ID}, queueIDs(t, e))
}
