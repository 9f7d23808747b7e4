package controllers

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

// PropagationStore is what a propagation pass reads and writes
type PropagationStore interface {
	LockStore
	GetItem(ctx context.Context, ownerID string, id uint) (*models.MediaItem, error)
	CountLocks(ctx context.Context, ownerID string) (int64, error)
	SaveLock(ctx context.Context, lock *models.Lock) error
}

// AffectedLock describes a lock that transitioned to completed during a command
type AffectedLock struct {
	LockID             uint        `json:"lock_id"`
	DependentItemID    uint        `json:"dependent_item_id"`
	DependentItemTitle string      `json:"dependent_item_title"`
	ContributedDelta   int         `json:"contributed_delta"`
	Aggregate          int         `json:"aggregate"`
	Goal               int         `json:"goal"`
	Unit               models.Unit `json:"unit"`
	NewlyCompleted     bool        `json:"newly_completed"`
}

// PropagationResult is the outcome of one propagation pass
type PropagationResult struct {
	Affected []AffectedLock
	Visits   int
}

// PropagationEngine re-evaluates locks after a change until nothing else unlocks
type PropagationEngine struct {
	now func() time.Time
}

// NewPropagationEngine creates a new propagation engine
func NewPropagationEngine() *PropagationEngine {
	return &PropagationEngine{now: time.Now}
}

// Propagate evaluates every lock reachable from the changed item, breadth first.
// Each lock is visited at most once per pass; completed locks never reopen.
func (p *PropagationEngine) Propagate(ctx context.Context, store PropagationStore, graph *LockGraph, change *ProgressChange) (*PropagationResult, error) {
	pass, err := p.newPass(ctx, store, graph, change.Item.OwnerID, change)
	if err != nil {
		return nil, err
	}
	pass.frontier = append(pass.frontier, change.Item.ID)
	if err := pass.drain(ctx); err != nil {
		return nil, err
	}
	return pass.result(), nil
}

// EvaluateLock evaluates a single lock, typically right after it was created, and
// cascades from its dependent item if it completes
func (p *PropagationEngine) EvaluateLock(ctx context.Context, store PropagationStore, graph *LockGraph, lock *models.Lock) (*PropagationResult, error) {
	pass, err := p.newPass(ctx, store, graph, lock.OwnerID, nil)
	if err != nil {
		return nil, err
	}
	if err := pass.evaluate(ctx, lock); err != nil {
		return nil, err
	}
	if err := pass.drain(ctx); err != nil {
		return nil, err
	}
	return pass.result(), nil
}

func (p *PropagationEngine) newPass(ctx context.Context, store PropagationStore, graph *LockGraph, ownerID string, origin *ProgressChange) (*propagationPass, error) {
	limit, err := store.CountLocks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &propagationPass{
		engine:   p,
		store:    store,
		graph:    graph,
		ownerID:  ownerID,
		origin:   origin,
		limit:    int(limit),
		visited:  make(map[uint]struct{}),
		affected: []AffectedLock{},
	}, nil
}

// propagationPass holds the state of one run; it never outlives the command
type propagationPass struct {
	engine   *PropagationEngine
	store    PropagationStore
	graph    *LockGraph
	ownerID  string
	origin   *ProgressChange
	limit    int
	frontier []uint
	visited  map[uint]struct{}
	affected []AffectedLock
}

func (s *propagationPass) drain(ctx context.Context) error {
	for len(s.frontier) > 0 {
		itemID := s.frontier[0]
		s.frontier = s.frontier[1:]

		item, err := s.store.GetItem(ctx, s.ownerID, itemID)
		if err != nil {
			return err
		}
		locks, err := s.graph.Matches(ctx, item)
		if err != nil {
			return err
		}
		for _, lock := range locks {
			if err := s.evaluate(ctx, lock); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *propagationPass) evaluate(ctx context.Context, lock *models.Lock) error {
	if _, seen := s.visited[lock.ID]; seen {
		return nil
	}
	s.visited[lock.ID] = struct{}{}
	if len(s.visited) > s.limit {
		return &apperrors.PropagationLimitError{OwnerID: s.ownerID, Visits: len(s.visited), Limit: s.limit}
	}

	// Completed is terminal for propagation
	if lock.Completed {
		return nil
	}

	dependent, err := s.store.GetItem(ctx, s.ownerID, lock.DependentItemID)
	if err != nil {
		return fmt.Errorf("lock %d: %w", lock.ID, err)
	}
	aggregate, err := s.graph.Aggregate(ctx, lock, dependent)
	if err != nil {
		return err
	}

	unit, goal := lock.Goal()
	dirty := lock.Accumulated() != aggregate
	lock.SetAccumulated(aggregate)

	unlocked := aggregate >= goal
	if unlocked {
		now := s.engine.now()
		lock.Completed = true
		lock.CompletedAt = &now
		dirty = true
	}

	if dirty {
		if err := s.store.SaveLock(ctx, lock); err != nil {
			return err
		}
	}
	if !unlocked {
		return nil
	}

	delta, err := s.contributedDelta(lock, unit, dependent)
	if err != nil {
		return err
	}
	s.affected = append(s.affected, AffectedLock{
		LockID:             lock.ID,
		DependentItemID:    dependent.ID,
		DependentItemTitle: dependent.Title,
		ContributedDelta:   delta,
		Aggregate:          aggregate,
		Goal:               goal,
		Unit:               unit,
		NewlyCompleted:     true,
	})
	s.frontier = append(s.frontier, dependent.ID)
	return nil
}

// contributedDelta is how much the originating edit moved this lock's aggregate.
// Locks reached only through a cascade have no direct contribution.
func (s *propagationPass) contributedDelta(lock *models.Lock, unit models.Unit, dependent *models.MediaItem) (int, error) {
	if s.origin == nil || !lock.Matches(s.origin.Item) {
		return 0, nil
	}
	before, err := s.graph.Contribution(s.origin.Item, &s.origin.Previous, unit, dependent)
	if err != nil {
		return 0, err
	}
	after, err := s.graph.Contribution(s.origin.Item, s.origin.Current, unit, dependent)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

func (s *propagationPass) result() *PropagationResult {
	return &PropagationResult{Affected: s.affected, Visits: len(s.visited)}
}
