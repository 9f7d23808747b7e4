package models

import "time"

// UserSettings holds per-owner parameters used by the goal conversions
type UserSettings struct {
	OwnerID          string    `gorm:"primaryKey" json:"owner_id"`
	PagesPerInterval float64   `gorm:"not null" json:"pages_per_interval"` // pages per 30 minutes
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for UserSettings
func (UserSettings) TableName() string {
	return "user_settings"
}

// QueueState carries the version of an owner's queue ordering.
// Every reorder, append or removal bumps it; clients echo it back to detect concurrent edits.
type QueueState struct {
	OwnerID   string    `gorm:"primaryKey" json:"owner_id"`
	Version   int64     `gorm:"not null;default:0" json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for QueueState
func (QueueState) TableName() string {
	return "queue_states"
}
