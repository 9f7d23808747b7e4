package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database wraps the gorm connection
type Database struct {
	db *gorm.DB
}

// NewDatabase creates a new database connection and migrates the schema
func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	// One writer connection serializes commands per database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&MediaItem{}, &ProgressRecord{}, &Lock{}, &QueueState{}, &UserSettings{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func dsn(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:"
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn against a transaction-bound Database. Any error rolls everything back.
func (d *Database) Transaction(ctx context.Context, fn func(tx *Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{db: tx})
	})
}

// IsBusy reports whether err is transient SQLite lock contention
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// Item operations

// CreateItem inserts a new media item
func (d *Database) CreateItem(ctx context.Context, item *MediaItem) error {
	if err := d.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetItem retrieves an item by ID within an owner's scope
func (d *Database) GetItem(ctx context.Context, ownerID string, id uint) (*MediaItem, error) {
	var item MediaItem
	err := d.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	return &item, nil
}

// SaveItem updates an existing item
func (d *Database) SaveItem(ctx context.Context, item *MediaItem) error {
	if err := d.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save item %d: %w", item.ID, err)
	}
	return nil
}

// SaveItems updates several items in one statement batch
func (d *Database) SaveItems(ctx context.Context, items []*MediaItem) error {
	for _, item := range items {
		if err := d.SaveItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// ListItemsByOwner retrieves every item of an owner ordered by ID
func (d *Database) ListItemsByOwner(ctx context.Context, ownerID string) ([]*MediaItem, error) {
	var items []*MediaItem
	err := d.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ListQueue retrieves an owner's incomplete items in queue order
func (d *Database) ListQueue(ctx context.Context, ownerID string) ([]*MediaItem, error) {
	var items []*MediaItem
	err := d.db.WithContext(ctx).
		Joins("JOIN progress_records ON progress_records.item_id = media_items.id").
		Where("media_items.owner_id = ? AND progress_records.completed = ?", ownerID, false).
		Order("media_items.queue_number ASC, media_items.id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return items, nil
}

// ListItemsMatchingLock retrieves the lock's owner set: every item of the lock's owner that
// satisfies its target predicate
func (d *Database) ListItemsMatchingLock(ctx context.Context, lock *Lock) ([]*MediaItem, error) {
	query := d.db.WithContext(ctx).Where("owner_id = ?", lock.OwnerID)
	switch {
	case lock.KeyParentID != nil:
		query = query.Where("id = ?", *lock.KeyParentID)
	case lock.KeyParentText != nil:
		query = query.Where("(media_type = ? OR category = ?)", *lock.KeyParentText, *lock.KeyParentText)
	default:
		return nil, nil
	}

	var items []*MediaItem
	if err := query.Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list owner set for lock %d: %w", lock.ID, err)
	}
	return items, nil
}

// ListCategories retrieves the distinct non-empty categories of an owner
func (d *Database) ListCategories(ctx context.Context, ownerID string) ([]string, error) {
	var categories []string
	err := d.db.WithContext(ctx).Model(&MediaItem{}).
		Where("owner_id = ? AND category <> ''", ownerID).
		Distinct().Order("category ASC").Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListOwners retrieves every owner that has at least one item
func (d *Database) ListOwners(ctx context.Context) ([]string, error) {
	var owners []string
	err := d.db.WithContext(ctx).Model(&MediaItem{}).Distinct().Order("owner_id ASC").Pluck("owner_id", &owners).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return owners, nil
}

// Progress operations

// CreateProgress inserts the progress record for a new item
func (d *Database) CreateProgress(ctx context.Context, progress *ProgressRecord) error {
	if err := d.db.WithContext(ctx).Create(progress).Error; err != nil {
		return fmt.Errorf("failed to create progress for item %d: %w", progress.ItemID, err)
	}
	return nil
}

// GetProgress retrieves the progress record of an item
func (d *Database) GetProgress(ctx context.Context, itemID uint) (*ProgressRecord, error) {
	var progress ProgressRecord
	err := d.db.WithContext(ctx).Where("item_id = ?", itemID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("progress", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress for item %d: %w", itemID, err)
	}
	return &progress, nil
}

// ListProgress retrieves progress records keyed by item ID
func (d *Database) ListProgress(ctx context.Context, itemIDs []uint) (map[uint]*ProgressRecord, error) {
	records := make(map[uint]*ProgressRecord, len(itemIDs))
	if len(itemIDs) == 0 {
		return records, nil
	}

	var rows []*ProgressRecord
	if err := d.db.WithContext(ctx).Where("item_id IN ?", itemIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	for _, row := range rows {
		records[row.ItemID] = row
	}
	return records, nil
}

// SaveProgress updates a progress record
func (d *Database) SaveProgress(ctx context.Context, progress *ProgressRecord) error {
	if err := d.db.WithContext(ctx).Save(progress).Error; err != nil {
		return fmt.Errorf("failed to save progress for item %d: %w", progress.ItemID, err)
	}
	return nil
}

// Lock operations

// CreateLock inserts a new lock
func (d *Database) CreateLock(ctx context.Context, lock *Lock) error {
	if err := d.db.WithContext(ctx).Create(lock).Error; err != nil {
		return fmt.Errorf("failed to create lock: %w", err)
	}
	return nil
}

// GetLock retrieves a lock by ID within an owner's scope
func (d *Database) GetLock(ctx context.Context, ownerID string, id uint) (*Lock, error) {
	var lock Lock
	err := d.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&lock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("lock", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lock %d: %w", id, err)
	}
	return &lock, nil
}

// ListLocksByOwner retrieves every lock of an owner ordered by ID
func (d *Database) ListLocksByOwner(ctx context.Context, ownerID string) ([]*Lock, error) {
	var locks []*Lock
	if err := d.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&locks).Error; err != nil {
		return nil, fmt.Errorf("failed to list locks: %w", err)
	}
	return locks, nil
}

// ListLocksMatchingTarget retrieves the owner's locks whose key parent is the item itself,
// its media type or its category. Empty arguments are left out of the predicate.
func (d *Database) ListLocksMatchingTarget(ctx context.Context, ownerID string, mediaType MediaType, category string, itemID uint) ([]*Lock, error) {
	var texts []string
	if mediaType != "" {
		texts = append(texts, string(mediaType))
	}
	if category != "" {
		texts = append(texts, category)
	}

	query := d.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	switch {
	case itemID != 0 && len(texts) > 0:
		query = query.Where("(key_parent_id = ? OR key_parent_text IN ?)", itemID, texts)
	case itemID != 0:
		query = query.Where("key_parent_id = ?", itemID)
	case len(texts) > 0:
		query = query.Where("key_parent_text IN ?", texts)
	default:
		return nil, nil
	}

	var locks []*Lock
	if err := query.Order("id ASC").Find(&locks).Error; err != nil {
		return nil, fmt.Errorf("failed to list matching locks: %w", err)
	}
	return locks, nil
}

// CountLocks counts the locks of an owner
func (d *Database) CountLocks(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&Lock{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count locks: %w", err)
	}
	return count, nil
}

// SaveLock writes a lock if nobody else changed it since it was read, and bumps its version
func (d *Database) SaveLock(ctx context.Context, lock *Lock) error {
	result := d.db.WithContext(ctx).Model(&Lock{}).
		Where("id = ? AND version = ?", lock.ID, lock.Version).
		Updates(map[string]interface{}{
			"completed":          lock.Completed,
			"completed_at":       lock.CompletedAt,
			"completed_time":     lock.CompletedTime,
			"completed_pages":    lock.CompletedPages,
			"completed_episodes": lock.CompletedEpisodes,
			"completed_units":    lock.CompletedUnits,
			"version":            lock.Version + 1,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save lock %d: %w", lock.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("lock", "lock %d changed since version %d", lock.ID, lock.Version)
	}
	lock.Version++
	return nil
}

// DeleteLock deletes a lock within an owner's scope
func (d *Database) DeleteLock(ctx context.Context, ownerID string, id uint) error {
	result := d.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&Lock{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete lock %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("lock", id)
	}
	return nil
}

// Queue state operations

// GetQueueVersion returns the owner's queue version, zero before the first change
func (d *Database) GetQueueVersion(ctx context.Context, ownerID string) (int64, error) {
	var state QueueState
	err := d.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get queue version: %w", err)
	}
	return state.Version, nil
}

// BumpQueueVersion advances the owner's queue version from expected to expected+1.
// A version that moved on in the meantime is a ConflictError.
func (d *Database) BumpQueueVersion(ctx context.Context, ownerID string, expected int64) (int64, error) {
	current, err := d.GetQueueVersion(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if current != expected {
		return 0, apperrors.NewConflictError("queue", "queue is at version %d, expected %d", current, expected)
	}

	if current == 0 {
		state := QueueState{OwnerID: ownerID, Version: 1}
		if err := d.db.WithContext(ctx).Create(&state).Error; err != nil {
			return 0, fmt.Errorf("failed to create queue state: %w", err)
		}
		return 1, nil
	}

	result := d.db.WithContext(ctx).Model(&QueueState{}).
		Where("owner_id = ? AND version = ?", ownerID, expected).
		Updates(map[string]interface{}{"version": expected + 1, "updated_at": time.Now()})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bump queue version: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apperrors.NewConflictError("queue", "queue moved past version %d", expected)
	}
	return expected + 1, nil
}

// Settings operations

// GetSettings retrieves an owner's settings, or nil when none were saved
func (d *Database) GetSettings(ctx context.Context, ownerID string) (*UserSettings, error) {
	var settings UserSettings
	err := d.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings creates or updates an owner's settings
func (d *Database) SaveSettings(ctx context.Context, settings *UserSettings) error {
	if err := d.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Stats

// OwnerStats summarizes an owner's items
type OwnerStats struct {
	Total     int64               `json:"total"`
	Completed int64               `json:"completed"`
	Queued    int64               `json:"queued"`
	ByType    map[MediaType]int64 `json:"by_type"`
	Locks     int64               `json:"locks"`
	Unlocked  int64               `json:"unlocked"`
}

// GetOwnerStats counts an owner's items by media type and completion, and their locks
func (d *Database) GetOwnerStats(ctx context.Context, ownerID string) (*OwnerStats, error) {
	stats := &OwnerStats{ByType: make(map[MediaType]int64)}

	var rows []struct {
		MediaType MediaType
		Count     int64
	}
	err := d.db.WithContext(ctx).Model(&MediaItem{}).
		Select("media_type, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("media_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	for _, row := range rows {
		stats.ByType[row.MediaType] = row.Count
		stats.Total += row.Count
	}

	err = d.db.WithContext(ctx).Model(&ProgressRecord{}).
		Joins("JOIN media_items ON media_items.id = progress_records.item_id").
		Where("media_items.owner_id = ? AND progress_records.completed = ?", ownerID, true).
		Count(&stats.Completed).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count completed items: %w", err)
	}
	stats.Queued = stats.Total - stats.Completed

	if stats.Locks, err = d.CountLocks(ctx, ownerID); err != nil {
		return nil, err
	}
	err = d.db.WithContext(ctx).Model(&Lock{}).
		Where("owner_id = ? AND completed = ?", ownerID, true).
		Count(&stats.Unlocked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count unlocked locks: %w", err)
	}

	return stats, nil
}
