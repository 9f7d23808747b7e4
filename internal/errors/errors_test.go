package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", NewValidationError("unit", "expected %s", "pages"), IsValidation},
		{"not found", NewNotFoundError("media item", 7), IsNotFound},
		{"conflict", NewConflictError("queue", "version %d is stale", 3), IsConflict},
		{"propagation limit", &PropagationLimitError{OwnerID: "u1", Visits: 5, Limit: 4}, IsPropagationLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("record progress: %w", tt.err)
			assert.True(t, tt.check(wrapped))
			assert.True(t, IsDomain(wrapped))
		})
	}
}

func TestInfrastructureErrorIsNotDomain(t *testing.T) {
	err := fmt.Errorf("query items: %w", errors.New("database is locked"))
	assert.False(t, IsDomain(err))
	assert.False(t, IsValidation(err))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "media item 7 not found", NewNotFoundError("media item", 7).Error())
	assert.Equal(t, "validation failed on unit: expected pages", NewValidationError("unit", "expected pages").Error())
	assert.Equal(t, "validation failed: bad", (&ValidationError{Reason: "bad"}).Error())
}
