package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

const tracerName = "github.com/WayneDavenport/Mediaq-sub000/internal/controllers"

// EngineOptions tunes the command runner
type EngineOptions struct {
	// RetryMaxElapsed bounds retries of a command that hit transient store contention.
	// Zero disables retries.
	RetryMaxElapsed time.Duration
}

// Engine runs progress, lock and queue commands. Each command is one store transaction:
// either every progress write, lock flip and queue renumbering is persisted, or none is.
type Engine struct {
	db          *models.Database
	tracker     *ProgressTracker
	propagation *PropagationEngine
	queue       *QueueOrderer
	settings    *SettingsProvider
	metrics     *Metrics
	tracer      trace.Tracer
	opts        EngineOptions
}

// NewEngine creates a new engine
func NewEngine(db *models.Database, settings *SettingsProvider, metrics *Metrics, tp trace.TracerProvider, opts EngineOptions) *Engine {
	return &Engine{
		db:          db,
		tracker:     NewProgressTracker(),
		propagation: NewPropagationEngine(),
		queue:       NewQueueOrderer(),
		settings:    settings,
		metrics:     metrics,
		tracer:      tp.Tracer(tracerName),
		opts:        opts,
	}
}

// run executes fn inside a transaction, retrying on transient store contention only
func (e *Engine) run(ctx context.Context, command, ownerID string, fn func(ctx context.Context, tx *models.Database) error) error {
	ctx, span := e.tracer.Start(ctx, "engine."+command, trace.WithAttributes(
		attribute.String("mediaq.owner_id", ownerID),
	))
	defer span.End()
	start := time.Now()

	operation := func() error {
		err := e.db.Transaction(ctx, func(tx *models.Database) error {
			return fn(ctx, tx)
		})
		if err == nil {
			return nil
		}
		if !apperrors.IsDomain(err) && models.IsBusy(err) {
			e.metrics.storeRetries.Inc()
			return err
		}
		return backoff.Permanent(err)
	}

	var err error
	if e.opts.RetryMaxElapsed > 0 {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = 20 * time.Millisecond
		policy.MaxElapsedTime = e.opts.RetryMaxElapsed
		err = backoff.Retry(operation, backoff.WithContext(policy, ctx))
	} else {
		err = operation()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	}

	outcome := outcomeOf(err)
	e.metrics.observeCommand(command, outcome, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("mediaq.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperrors.IsValidation(err):
		return "validation"
	case apperrors.IsNotFound(err):
		return "not_found"
	case apperrors.IsConflict(err):
		return "conflict"
	case apperrors.IsPropagationLimit(err):
		return "propagation_limit"
	default:
		return "error"
	}
}

// bumpQueue advances the owner's queue version after an ordering change
func (e *Engine) bumpQueue(ctx context.Context, tx *models.Database, ownerID string) (int64, error) {
	current, err := tx.GetQueueVersion(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return tx.BumpQueueVersion(ctx, ownerID, current)
}

// ItemView is an item with its progress and derived completion percentage
type ItemView struct {
	Item            *models.MediaItem      `json:"item"`
	Progress        *models.ProgressRecord `json:"progress"`
	PercentComplete float64                `json:"percent_complete"`
}

func newItemView(item *models.MediaItem, progress *models.ProgressRecord) *ItemView {
	return &ItemView{Item: item, Progress: progress, PercentComplete: models.PercentComplete(item, progress)}
}
