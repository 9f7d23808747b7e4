package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/WayneDavenport/Mediaq-sub000/internal/controllers"
)

// QueueAuditor checks every owner's queue for gaps and duplicates
type QueueAuditor interface {
	AuditQueues(ctx context.Context, repair bool) (*controllers.AuditReport, error)
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	auditor  QueueAuditor
	schedule string
	repair   bool
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new scheduler. An empty schedule disables the queue audit.
func NewScheduler(auditor QueueAuditor, schedule string, repair bool, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		auditor:  auditor,
		schedule: schedule,
		repair:   repair,
		logger:   logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info().Msg("Queue audit disabled")
		return nil
	}
	s.logger.Info().Str("schedule", s.schedule).Bool("repair", s.repair).Msg("Starting scheduler")

	if _, err := s.cron.AddFunc(s.schedule, s.runAudit); err != nil {
		return fmt.Errorf("failed to add queue audit job: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")

	// Run an initial audit so damage from a previous run is reported at boot
	go s.runAudit()

	return nil
}

// Stop stops the scheduler and waits for a running audit to finish
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// runAudit executes the queue audit job. Overlapping runs are skipped.
func (s *Scheduler) runAudit() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Debug().Msg("Queue audit already running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Debug().Msg("Running scheduled queue audit")

	report, err := s.auditor.AuditQueues(context.Background(), s.repair)
	if err != nil {
		s.logger.Error().Err(err).Msg("Queue audit failed")
		return
	}

	for _, v := range report.Violations {
		s.logger.Warn().
			Str("owner_id", v.OwnerID).
			Int("expected", v.Expected).
			Ints("duplicates", v.Duplicates).
			Ints("missing", v.Missing).
			Msg("Queue numbering is not dense")
	}
	s.logger.Info().
		Int("owners", report.Owners).
		Int("violations", len(report.Violations)).
		Int("repaired", report.Repaired).
		Msg("Queue audit completed")
}
