package models

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
)

// Lock gates a dependent item until the aggregate progress of its key parent group reaches a goal
type Lock struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OwnerID string `gorm:"not null;index" json:"owner_id"`

	DependentItemID uint `gorm:"not null;index" json:"dependent_item_id"`

	// Exactly one key parent is set
	KeyParentID   *uint    `gorm:"index" json:"key_parent_id,omitempty"`
	KeyParentText *string  `gorm:"index" json:"key_parent_text,omitempty"`
	LockType      LockType `gorm:"not null" json:"lock_type"`

	// Exactly one goal is set, selected by the dependent item's media type
	GoalTime     *int `json:"goal_time,omitempty"`
	GoalPages    *int `json:"goal_pages,omitempty"`
	GoalEpisodes *int `json:"goal_episodes,omitempty"`
	GoalUnits    *int `json:"goal_units,omitempty"`

	// Accumulated progress mirroring the goal field
	CompletedTime     *int `json:"completed_time,omitempty"`
	CompletedPages    *int `json:"completed_pages,omitempty"`
	CompletedEpisodes *int `json:"completed_episodes,omitempty"`
	CompletedUnits    *int `json:"completed_units,omitempty"`

	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Version int `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Lock
func (Lock) TableName() string {
	return "locks"
}

// InferLockType picks the lock type implied by which key parent is set
func InferLockType(keyParentID *uint, keyParentText *string) LockType {
	if keyParentID != nil {
		return LockTypeSpecific
	}
	if keyParentText != nil && IsMediaTypeName(*keyParentText) {
		return LockTypeMediaType
	}
	return LockTypeCategory
}

// ValidateShape checks the key parent XOR and the lock type pairing
func (l *Lock) ValidateShape() error {
	hasID := l.KeyParentID != nil
	hasText := l.KeyParentText != nil
	if hasID == hasText {
		return apperrors.NewValidationError("key_parent", "exactly one of key_parent_id or key_parent_text is required")
	}
	if hasText && strings.TrimSpace(*l.KeyParentText) == "" {
		return apperrors.NewValidationError("key_parent_text", "must not be empty")
	}
	if !l.LockType.Valid() {
		return apperrors.NewValidationError("lock_type", "unsupported lock type %q", l.LockType)
	}
	if (l.LockType == LockTypeSpecific) != hasID {
		return apperrors.NewValidationError("lock_type", "%s does not agree with the key parent that is set", l.LockType)
	}
	if l.LockType == LockTypeMediaType && !IsMediaTypeName(*l.KeyParentText) {
		return apperrors.NewValidationError("key_parent_text", "%q is not a media type", *l.KeyParentText)
	}
	return nil
}

// ValidateGoal checks that exactly the goal field for the dependent item's unit is set and positive
func (l *Lock) ValidateGoal(dependent *MediaItem) error {
	want := dependent.Unit()
	set := 0
	for _, unit := range []Unit{UnitMinutes, UnitPages, UnitEpisodes, UnitUnits} {
		goal := l.goalField(unit)
		if goal == nil {
			continue
		}
		set++
		if unit != want {
			return apperrors.NewValidationError("goal", "a %s dependent takes a goal in %s, not %s", dependent.MediaType, want, unit)
		}
		if *goal <= 0 {
			return apperrors.NewValidationError("goal", "must be greater than zero")
		}
	}
	if set != 1 {
		return apperrors.NewValidationError("goal", "exactly one goal in %s is required", want)
	}
	return nil
}

// Goal returns the lock's unit and goal. The unit is whichever goal field is set.
func (l *Lock) Goal() (Unit, int) {
	for _, unit := range []Unit{UnitMinutes, UnitPages, UnitEpisodes, UnitUnits} {
		if goal := l.goalField(unit); goal != nil {
			return unit, *goal
		}
	}
	return UnitMinutes, 0
}

// Accumulated returns the stored aggregate in the goal unit
func (l *Lock) Accumulated() int {
	unit, _ := l.Goal()
	if v := l.accumulatedField(unit); *v != nil {
		return **v
	}
	return 0
}

// SetAccumulated stores the aggregate in the field mirroring the goal
func (l *Lock) SetAccumulated(value int) {
	unit, _ := l.Goal()
	*l.accumulatedField(unit) = &value
}

// Matches reports whether item satisfies the lock's target predicate
func (l *Lock) Matches(item *MediaItem) bool {
	if item.OwnerID != l.OwnerID {
		return false
	}
	if l.KeyParentID != nil {
		return *l.KeyParentID == item.ID
	}
	if l.KeyParentText != nil {
		text := *l.KeyParentText
		return text == string(item.MediaType) || (item.Category != "" && text == item.Category)
	}
	return false
}

// Target describes the key parent for messages and logs
func (l *Lock) Target() string {
	if l.KeyParentText != nil {
		return *l.KeyParentText
	}
	if l.KeyParentID != nil {
		return "item " + strconv.FormatUint(uint64(*l.KeyParentID), 10)
	}
	return ""
}

func (l *Lock) goalField(unit Unit) *int {
	switch unit {
	case UnitPages:
		return l.GoalPages
	case UnitEpisodes:
		return l.GoalEpisodes
	case UnitUnits:
		return l.GoalUnits
	default:
		return l.GoalTime
	}
}

func (l *Lock) accumulatedField(unit Unit) **int {
	switch unit {
	case UnitPages:
		return &l.CompletedPages
	case UnitEpisodes:
		return &l.CompletedEpisodes
	case UnitUnits:
		return &l.CompletedUnits
	default:
		return &l.CompletedTime
	}
}
