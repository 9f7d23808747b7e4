package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WayneDavenport/Mediaq-sub000/internal/controllers"
)

type fakeAuditor struct {
	calls  atomic.Int32
	repair atomic.Bool
	err    error
}

func (f *fakeAuditor) AuditQueues(_ context.Context, repair bool) (*controllers.AuditReport, error) {
	f.calls.Add(1)
	f.repair.Store(repair)
	if f.err != nil {
		return nil, f.err
	}
	return &controllers.AuditReport{
		Owners:     2,
		Violations: []controllers.DensityViolation{{OwnerID: "alice", Expected: 3, Missing: []int{3}}},
		Repaired:   1,
	}, nil
}

func TestRunAuditPassesRepairFlag(t *testing.T) {
	auditor := &fakeAuditor{}
	s := NewScheduler(auditor, "0 * * * *", true, zerolog.Nop())

	s.runAudit()
	assert.Equal(t, int32(1), auditor.calls.Load())
	assert.True(t, auditor.repair.Load())
}

func TestRunAuditSurvivesErrors(t *testing.T) {
	auditor := &fakeAuditor{err: errors.New("database is locked")}
	s := NewScheduler(auditor, "0 * * * *", false, zerolog.Nop())

	assert.NotPanics(t, s.runAudit)
	assert.Equal(t, int32(1), auditor.calls.Load())
}

func TestRunAuditSkipsOverlappingRuns(t *testing.T) {
	auditor := &fakeAuditor{}
	s := NewScheduler(auditor, "0 * * * *", false, zerolog.Nop())

	s.running = true
	s.runAudit()
	assert.Equal(t, int32(0), auditor.calls.Load())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&fakeAuditor{}, "every tuesday", false, zerolog.Nop())
	require.Error(t, s.Start())
}

func TestStartWithEmptyScheduleIsDisabled(t *testing.T) {
	auditor := &fakeAuditor{}
	s := NewScheduler(auditor, "", false, zerolog.Nop())

	require.NoError(t, s.Start())
	s.Stop()
	assert.Equal(t, int32(0), auditor.calls.Load())
}
