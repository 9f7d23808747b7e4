package controllers

import (
	"cmp"
	"context"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

func numberedItems(n int) []*models.MediaItem {
	items := make([]*models.MediaItem, n)
	for i := range items {
		items[i] = &models.MediaItem{ID: uint(i + 1), QueueNumber: i + 1}
	}
	return items
}

func ids(items []*models.MediaItem) []uint {
	out := make([]uint, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestSplice(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []uint
	}{
		{"to front", 4, 0, []uint{5, 1, 2, 3, 4, 6, 7, 8}},
		{"to back", 1, 7, []uint{1, 3, 4, 5, 6, 7, 8, 2}},
		{"forward", 2, 5, []uint{1, 2, 4, 5, 6, 3, 7, 8}},
		{"backward", 6, 1, []uint{1, 7, 2, 3, 4, 5, 6, 8}},
		{"in place", 3, 3, []uint{1, 2, 3, 4, 5, 6, 7, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := numberedItems(8)
			got := splice(items, tt.from, tt.to)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, []uint{1, 2, 3, 4, 5, 6, 7, 8}, ids(items), "input must not change")
		})
	}
}

func TestRenumberReturnsOnlyChangedItems(t *testing.T) {
	items := splice(numberedItems(5), 3, 1) // 1 4 2 3 5
	changed := renumber(items)
	assert.Equal(t, []uint{4, 2, 3}, ids(changed))
	for i, item := range items {
		assert.Equal(t, i+1, item.QueueNumber)
	}
}

func TestParsePosition(t *testing.T) {
	pos, err := ParsePosition("Top")
	require.NoError(t, err)
	assert.Equal(t, PositionTop, pos.Kind)

	pos, err = ParsePosition(" bottom ")
	require.NoError(t, err)
	assert.Equal(t, PositionBottom, pos.Kind)

	pos, err = ParsePosition("4")
	require.NoError(t, err)
	assert.Equal(t, Position{Kind: PositionIndex, Index: 4}, pos)
	assert.Equal(t, "4", pos.String())

	_, err = ParsePosition("middle")
	assert.Error(t, err)
}

func TestCheckDensity(t *testing.T) {
	assert.Nil(t, CheckDensity(owner, numberedItems(4)))
	assert.Nil(t, CheckDensity(owner, nil))

	items := numberedItems(4)
	items[3].QueueNumber = 2
	v := CheckDensity(owner, items)
	require.NotNil(t, v)
	assert.Equal(t, []int{2}, v.Duplicates)
	assert.Equal(t, []int{4}, v.Missing)
}

// memoryQueue is an in-memory QueueStore
type memoryQueue struct {
	items []*models.MediaItem
	saves int
}

func (m *memoryQueue) ListQueue(context.Context, string) ([]*models.MediaItem, error) {
	out := slices.Clone(m.items)
	slices.SortStableFunc(out, func(a, b *models.MediaItem) int {
		return cmp.Compare(a.QueueNumber, b.QueueNumber)
	})
	return out, nil
}

func (m *memoryQueue) SaveItems(_ context.Context, items []*models.MediaItem) error {
	m.saves += len(items)
	return nil
}

func TestQueueStaysDenseUnderRandomMoves(t *testing.T) {
	store := &memoryQueue{items: numberedItems(12)}
	orderer := NewQueueOrderer()
	rng := rand.New(rand.NewSource(7))
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		id := uint(rng.Intn(12) + 1)
		var pos Position
		switch rng.Intn(3) {
		case 0:
			pos = Position{Kind: PositionTop}
		case 1:
			pos = Position{Kind: PositionBottom}
		default:
			pos = Position{Kind: PositionIndex, Index: rng.Intn(20) - 4}
		}

		ordered, err := orderer.Move(ctx, store, owner, id, pos)
		require.NoError(t, err)
		require.Nil(t, CheckDensity(owner, ordered))
		require.Len(t, ordered, 12)
	}
}

func TestAppendMovesItemToEnd(t *testing.T) {
	items := numberedItems(3)
	fresh := &models.MediaItem{ID: 9, QueueNumber: 0}
	store := &memoryQueue{items: append(items, fresh)}

	ordered, err := NewQueueOrderer().Append(context.Background(), store, owner, 9)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3, 9}, ids(ordered))
	assert.Equal(t, 4, fresh.QueueNumber)
}
