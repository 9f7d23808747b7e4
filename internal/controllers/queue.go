package controllers

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

// QueueStore is the store surface the queue orderer needs
type QueueStore interface {
	ListQueue(ctx context.Context, ownerID string) ([]*models.MediaItem, error)
	SaveItems(ctx context.Context, items []*models.MediaItem) error
}

// PositionKind selects how a reorder target is interpreted
type PositionKind string

const (
	PositionTop    PositionKind = "top"
	PositionBottom PositionKind = "bottom"
	PositionIndex  PositionKind = "index"
)

// Position is a reorder target: top, bottom, or a 1-based queue number
type Position struct {
	Kind  PositionKind
	Index int
}

// ParsePosition parses "top", "bottom" or an integer queue number
func ParsePosition(raw string) (Position, error) {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "top":
		return Position{Kind: PositionTop}, nil
	case "bottom":
		return Position{Kind: PositionBottom}, nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return Position{}, apperrors.NewValidationError("position", "must be top, bottom or an integer, got %q", raw)
		}
		return Position{Kind: PositionIndex, Index: n}, nil
	}
}

// String renders the position the way ParsePosition accepts it
func (p Position) String() string {
	if p.Kind == PositionIndex {
		return strconv.Itoa(p.Index)
	}
	return string(p.Kind)
}

// QueueOrderer keeps each owner's incomplete items densely numbered 1..N
type QueueOrderer struct{}

// NewQueueOrderer creates a new queue orderer
func NewQueueOrderer() *QueueOrderer {
	return &QueueOrderer{}
}

// MoveToTop moves an item to queue number 1
func (q *QueueOrderer) MoveToTop(ctx context.Context, store QueueStore, ownerID string, itemID uint) ([]*models.MediaItem, error) {
	return q.Move(ctx, store, ownerID, itemID, Position{Kind: PositionTop})
}

// MoveToBottom moves an item to queue number N
func (q *QueueOrderer) MoveToBottom(ctx context.Context, store QueueStore, ownerID string, itemID uint) ([]*models.MediaItem, error) {
	return q.Move(ctx, store, ownerID, itemID, Position{Kind: PositionBottom})
}

// MoveToPosition moves an item to the given queue number, clamped to [1, N]
func (q *QueueOrderer) MoveToPosition(ctx context.Context, store QueueStore, ownerID string, itemID uint, target int) ([]*models.MediaItem, error) {
	return q.Move(ctx, store, ownerID, itemID, Position{Kind: PositionIndex, Index: target})
}

// Move splices an incomplete item to a new position and renumbers the queue.
// It returns the full queue in its new order.
func (q *QueueOrderer) Move(ctx context.Context, store QueueStore, ownerID string, itemID uint, pos Position) ([]*models.MediaItem, error) {
	queue, err := store.ListQueue(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	from := indexOf(queue, itemID)
	if from < 0 {
		return nil, apperrors.NewValidationError("item", "item %d is completed and not in the queue", itemID)
	}

	var to int
	switch pos.Kind {
	case PositionTop:
		to = 0
	case PositionBottom:
		to = len(queue) - 1
	case PositionIndex:
		to = clamp(pos.Index, 1, len(queue)) - 1
	default:
		return nil, apperrors.NewValidationError("position", "unknown position %q", pos.Kind)
	}

	ordered := splice(queue, from, to)
	if err := q.persist(ctx, store, ordered); err != nil {
		return nil, err
	}
	return ordered, nil
}

// Append places an item at the end of its owner's queue. The item must already be
// incomplete; a stale tombstone number is discarded.
func (q *QueueOrderer) Append(ctx context.Context, store QueueStore, ownerID string, itemID uint) ([]*models.MediaItem, error) {
	queue, err := store.ListQueue(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	from := indexOf(queue, itemID)
	if from < 0 {
		return nil, apperrors.NewValidationError("item", "item %d is completed and cannot be queued", itemID)
	}

	ordered := splice(queue, from, len(queue)-1)
	if err := q.persist(ctx, store, ordered); err != nil {
		return nil, err
	}
	return ordered, nil
}

// Normalize renumbers the owner's queue 1..N in its current order. Used after an item
// leaves the queue and by the density repair.
func (q *QueueOrderer) Normalize(ctx context.Context, store QueueStore, ownerID string) ([]*models.MediaItem, error) {
	queue, err := store.ListQueue(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := q.persist(ctx, store, queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// persist renumbers items 1..N and saves the ones whose number changed
func (q *QueueOrderer) persist(ctx context.Context, store QueueStore, ordered []*models.MediaItem) error {
	changed := renumber(ordered)
	if len(changed) == 0 {
		return nil
	}
	if err := store.SaveItems(ctx, changed); err != nil {
		return fmt.Errorf("failed to save queue order: %w", err)
	}
	return nil
}

// DensityViolation describes how an owner's queue numbers deviate from 1..N
type DensityViolation struct {
	OwnerID    string `json:"owner_id"`
	Expected   int    `json:"expected"`
	Duplicates []int  `json:"duplicates,omitempty"`
	Missing    []int  `json:"missing,omitempty"`
}

// CheckDensity reports whether the queue numbers of the given incomplete items form 1..N.
// It returns nil when they do.
func CheckDensity(ownerID string, queue []*models.MediaItem) *DensityViolation {
	n := len(queue)
	seen := make(map[int]int, n)
	for _, item := range queue {
		seen[item.QueueNumber]++
	}

	v := &DensityViolation{OwnerID: ownerID, Expected: n}
	for number, count := range seen {
		if count > 1 {
			v.Duplicates = append(v.Duplicates, number)
		}
	}
	for i := 1; i <= n; i++ {
		if seen[i] == 0 {
			v.Missing = append(v.Missing, i)
		}
	}
	if len(v.Duplicates) == 0 && len(v.Missing) == 0 {
		return nil
	}
	slices.Sort(v.Duplicates)
	return v
}

// splice moves the element at from to index to, shifting the rest, and returns a new slice
func splice(items []*models.MediaItem, from, to int) []*models.MediaItem {
	moved := items[from]
	out := slices.Delete(slices.Clone(items), from, from+1)
	return slices.Insert(out, to, moved)
}

// renumber assigns 1..N in slice order and returns the items that changed
func renumber(items []*models.MediaItem) []*models.MediaItem {
	var changed []*models.MediaItem
	for i, item := range items {
		if item.QueueNumber != i+1 {
			item.QueueNumber = i + 1
			changed = append(changed, item)
		}
	}
	return changed
}

func indexOf(items []*models.MediaItem, id uint) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
