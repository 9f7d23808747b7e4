package models

import (
	"testing"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockValidateShape(t *testing.T) {
	tests := []struct {
		name    string
		lock    Lock
		wantErr bool
	}{
		{"specific", Lock{KeyParentID: uintPtr(1), LockType: LockTypeSpecific}, false},
		{"category", Lock{KeyParentText: strPtr("scifi"), LockType: LockTypeCategory}, false},
		{"media type", Lock{KeyParentText: strPtr("book"), LockType: LockTypeMediaType}, false},
		{"both key parents", Lock{KeyParentID: uintPtr(1), KeyParentText: strPtr("book"), LockType: LockTypeSpecific}, true},
		{"no key parent", Lock{LockType: LockTypeCategory}, true},
		{"specific with text", Lock{KeyParentText: strPtr("scifi"), LockType: LockTypeSpecific}, true},
		{"category with id", Lock{KeyParentID: uintPtr(1), LockType: LockTypeCategory}, true},
		{"media type not a type", Lock{KeyParentText: strPtr("scifi"), LockType: LockTypeMediaType}, true},
		{"blank text", Lock{KeyParentText: strPtr("  "), LockType: LockTypeCategory}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lock.ValidateShape()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLockValidateGoal(t *testing.T) {
	book := &MediaItem{MediaType: MediaTypeBook}
	game := &MediaItem{MediaType: MediaTypeGame}

	assert.NoError(t, (&Lock{GoalPages: intPtr(100)}).ValidateGoal(book))
	assert.NoError(t, (&Lock{GoalTime: intPtr(60)}).ValidateGoal(game))

	assert.Error(t, (&Lock{GoalTime: intPtr(60)}).ValidateGoal(book))
	assert.Error(t, (&Lock{}).ValidateGoal(book))
	assert.Error(t, (&Lock{GoalPages: intPtr(0)}).ValidateGoal(book))
	assert.Error(t, (&Lock{GoalPages: intPtr(10), GoalTime: intPtr(10)}).ValidateGoal(book))
}

func TestLockAccumulatedMirrorsGoal(t *testing.T) {
	lock := &Lock{GoalEpisodes: intPtr(10)}
	assert.Equal(t, 0, lock.Accumulated())

	lock.SetAccumulated(7)
	unit, goal := lock.Goal()
	assert.Equal(t, UnitEpisodes, unit)
	assert.Equal(t, 10, goal)
	assert.Equal(t, 7, lock.Accumulated())
	require.NotNil(t, lock.CompletedEpisodes)
	assert.Nil(t, lock.CompletedTime)
}

func TestLockMatches(t *testing.T) {
	item := &MediaItem{ID: 7, OwnerID: "alice", MediaType: MediaTypeBook, Category: "scifi"}

	assert.True(t, (&Lock{OwnerID: "alice", KeyParentID: uintPtr(7)}).Matches(item))
	assert.True(t, (&Lock{OwnerID: "alice", KeyParentText: strPtr("book")}).Matches(item))
	assert.True(t, (&Lock{OwnerID: "alice", KeyParentText: strPtr("scifi")}).Matches(item))
	assert.False(t, (&Lock{OwnerID: "alice", KeyParentText: strPtr("movie")}).Matches(item))
	assert.False(t, (&Lock{OwnerID: "bob", KeyParentText: strPtr("book")}).Matches(item))
}

func TestInferLockType(t *testing.T) {
	assert.Equal(t, LockTypeSpecific, InferLockType(uintPtr(1), nil))
	assert.Equal(t, LockTypeMediaType, InferLockType(nil, strPtr("tv")))
	assert.Equal(t, LockTypeCategory, InferLockType(nil, strPtr("horror")))
}

func TestMediaItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    MediaItem
		wantErr bool
	}{
		{"movie", MediaItem{OwnerID: "a", Title: "Alien", MediaType: MediaTypeMovie, Duration: 117}, false},
		{"book", MediaItem{OwnerID: "a", Title: "Dune", MediaType: MediaTypeBook, Details: Details{Book: &BookDetails{PageCount: 400}}}, false},
		{"task", MediaItem{OwnerID: "a", Title: "Course", MediaType: MediaTypeTask, Details: Details{Task: &TaskDetails{UnitRange: 12, UnitName: "lessons"}}}, false},
		{"book without details", MediaItem{OwnerID: "a", Title: "Dune", MediaType: MediaTypeBook}, true},
		{"book with tv details", MediaItem{OwnerID: "a", Title: "Dune", MediaType: MediaTypeBook, Details: Details{Book: &BookDetails{PageCount: 1}, TV: &TVDetails{TotalEpisodes: 1, EpisodeRuntime: 1}}}, true},
		{"movie with details", MediaItem{OwnerID: "a", Title: "Alien", MediaType: MediaTypeMovie, Duration: 117, Details: Details{Task: &TaskDetails{UnitRange: 1}}}, true},
		{"movie without duration", MediaItem{OwnerID: "a", Title: "Alien", MediaType: MediaTypeMovie}, true},
		{"unknown type", MediaItem{OwnerID: "a", Title: "X", MediaType: "podcast", Duration: 10}, true},
		{"no title", MediaItem{OwnerID: "a", MediaType: MediaTypeMovie, Duration: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPercentComplete(t *testing.T) {
	book := &MediaItem{MediaType: MediaTypeBook, Details: Details{Book: &BookDetails{PageCount: 200}}}
	assert.Equal(t, 25.0, PercentComplete(book, &ProgressRecord{PagesCompleted: 50}))
	assert.Equal(t, 100.0, PercentComplete(book, &ProgressRecord{PagesCompleted: 10, Completed: true}))
}
