package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
)

// MediaItem represents a queued movie, show, book, game or task
type MediaItem struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OwnerID string `gorm:"not null;index:idx_items_owner_type;index:idx_items_owner_category" json:"owner_id"`

	Title     string    `gorm:"not null" json:"title"`
	MediaType MediaType `gorm:"not null;index:idx_items_owner_type" json:"media_type"`
	Category  string    `gorm:"index:idx_items_owner_category" json:"category"`
	Duration  int       `json:"duration"` // total minutes

	// Position among the owner's incomplete items. Completed items keep their last
	// number as a tombstone.
	QueueNumber int `gorm:"not null;default:0" json:"queue_number"`

	// Type-specific fields, only the variant matching MediaType is set
	Details Details `gorm:"type:text" json:"details"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for MediaItem
func (MediaItem) TableName() string {
	return "media_items"
}

// Details is the per-media-type variant of a MediaItem.
// Movies and games carry no variant; their progress is measured in minutes.
type Details struct {
	Book *BookDetails `json:"book,omitempty"`
	TV   *TVDetails   `json:"tv,omitempty"`
	Task *TaskDetails `json:"task,omitempty"`
}

// BookDetails holds book-specific fields
type BookDetails struct {
	PageCount int `json:"page_count"`
}

// TVDetails holds show-specific fields
type TVDetails struct {
	TotalEpisodes  int `json:"total_episodes"`
	EpisodeRuntime int `json:"episode_runtime"` // average minutes per episode
}

// TaskDetails holds freeform task fields
type TaskDetails struct {
	UnitRange int    `json:"unit_range"`
	UnitName  string `json:"unit_name,omitempty"`
}

// Value implements driver.Valuer
func (d Details) Value() (driver.Value, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode details: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (d *Details) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*d = Details{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported details column type %T", value)
	}
	if len(data) == 0 {
		*d = Details{}
		return nil
	}
	return json.Unmarshal(data, d)
}

// Validate checks the item's own invariants: a supported media type, a title, and exactly
// the details variant that matches the media type.
func (m *MediaItem) Validate() error {
	if strings.TrimSpace(m.OwnerID) == "" {
		return apperrors.NewValidationError("owner_id", "is required")
	}
	if strings.TrimSpace(m.Title) == "" {
		return apperrors.NewValidationError("title", "is required")
	}
	if !m.MediaType.Valid() {
		return apperrors.NewValidationError("media_type", "unsupported media type %q", m.MediaType)
	}
	if m.Duration < 0 {
		return apperrors.NewValidationError("duration", "must not be negative")
	}

	d := m.Details
	switch m.MediaType {
	case MediaTypeBook:
		if d.Book == nil || d.TV != nil || d.Task != nil {
			return apperrors.NewValidationError("details", "a book carries only book details")
		}
		if d.Book.PageCount <= 0 {
			return apperrors.NewValidationError("details.book.page_count", "must be greater than zero")
		}
	case MediaTypeTV:
		if d.TV == nil || d.Book != nil || d.Task != nil {
			return apperrors.NewValidationError("details", "a show carries only tv details")
		}
		if d.TV.TotalEpisodes <= 0 {
			return apperrors.NewValidationError("details.tv.total_episodes", "must be greater than zero")
		}
		if d.TV.EpisodeRuntime <= 0 {
			return apperrors.NewValidationError("details.tv.episode_runtime", "must be greater than zero")
		}
	case MediaTypeTask:
		if d.Task == nil || d.Book != nil || d.TV != nil {
			return apperrors.NewValidationError("details", "a task carries only task details")
		}
		if d.Task.UnitRange <= 0 {
			return apperrors.NewValidationError("details.task.unit_range", "must be greater than zero")
		}
	default:
		if d.Book != nil || d.TV != nil || d.Task != nil {
			return apperrors.NewValidationError("details", "%s items carry no details", m.MediaType)
		}
		if m.Duration <= 0 {
			return apperrors.NewValidationError("duration", "must be greater than zero for %s items", m.MediaType)
		}
	}
	return nil
}

// Unit returns the item's native progress unit
func (m *MediaItem) Unit() Unit {
	return m.MediaType.Unit()
}

// MaxProgress returns the full size of the item in its native unit
func (m *MediaItem) MaxProgress() int {
	switch m.MediaType {
	case MediaTypeBook:
		if m.Details.Book != nil {
			return m.Details.Book.PageCount
		}
	case MediaTypeTV:
		if m.Details.TV != nil {
			return m.Details.TV.TotalEpisodes
		}
	case MediaTypeTask:
		if m.Details.Task != nil {
			return m.Details.Task.UnitRange
		}
	default:
		return m.Duration
	}
	return 0
}
