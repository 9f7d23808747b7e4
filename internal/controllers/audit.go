package controllers

import (
	"context"
	"fmt"

	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

// AuditReport summarizes a queue density audit
type AuditReport struct {
	Owners     int                `json:"owners"`
	Violations []DensityViolation `json:"violations"`
	Repaired   int                `json:"repaired"`
}

// AuditQueues checks every owner's queue numbers and, when repair is set, renumbers the
// queues that are not dense. Each owner is checked in its own transaction.
func (e *Engine) AuditQueues(ctx context.Context, repair bool) (*AuditReport, error) {
	owners, err := e.db.ListOwners(ctx)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{Owners: len(owners), Violations: []DensityViolation{}}
	for _, ownerID := range owners {
		var violation *DensityViolation
		err := e.run(ctx, "audit_queue", ownerID, func(ctx context.Context, tx *models.Database) error {
			queue, err := tx.ListQueue(ctx, ownerID)
			if err != nil {
				return err
			}
			violation = CheckDensity(ownerID, queue)
			if violation == nil || !repair {
				return nil
			}

			if _, err := e.queue.Normalize(ctx, tx, ownerID); err != nil {
				return err
			}
			_, err = e.bumpQueue(ctx, tx, ownerID)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to audit queue of %s: %w", ownerID, err)
		}
		if violation != nil {
			report.Violations = append(report.Violations, *violation)
			if repair {
				report.Repaired++
			}
		}
	}

	e.metrics.queueViolations.Set(float64(len(report.Violations) - report.Repaired))
	return report, nil
}
