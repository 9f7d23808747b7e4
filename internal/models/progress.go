package models

import "time"

// ProgressRecord tracks how far an owner is through one media item
type ProgressRecord struct {
	ItemID uint `gorm:"primaryKey;autoIncrement:false" json:"item_id"`

	CompletedDuration int `gorm:"not null;default:0" json:"completed_duration"` // canonical minutes
	PagesCompleted    int `gorm:"not null;default:0" json:"pages_completed"`
	EpisodesCompleted int `gorm:"not null;default:0" json:"episodes_completed"`
	UnitsCompleted    int `gorm:"not null;default:0" json:"units_completed"`

	Completed   bool       `gorm:"not null;default:false;index" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for ProgressRecord
func (ProgressRecord) TableName() string {
	return "progress_records"
}

// Native returns the completed amount in the given unit
func (p *ProgressRecord) Native(unit Unit) int {
	switch unit {
	case UnitPages:
		return p.PagesCompleted
	case UnitEpisodes:
		return p.EpisodesCompleted
	case UnitUnits:
		return p.UnitsCompleted
	default:
		return p.CompletedDuration
	}
}

// SetNative stores the completed amount for the given unit.
// For minutes this is the canonical duration itself.
func (p *ProgressRecord) SetNative(unit Unit, value int) {
	switch unit {
	case UnitPages:
		p.PagesCompleted = value
	case UnitEpisodes:
		p.EpisodesCompleted = value
	case UnitUnits:
		p.UnitsCompleted = value
	default:
		p.CompletedDuration = value
	}
}

// PercentComplete derives the completion percentage for an item. It is never stored.
func PercentComplete(item *MediaItem, p *ProgressRecord) float64 {
	if p.Completed {
		return 100
	}
	max := item.MaxProgress()
	if max <= 0 {
		return 0
	}
	pct := float64(p.Native(item.Unit())) / float64(max) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
