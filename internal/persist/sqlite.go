package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// filterRecord is one persisted document.
type filterRecord struct {
	DocumentID string `gorm:"primaryKey;type:text"`
	// Patterns holds the JSON-encoded pattern list in order.
	Patterns  string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name independent of the struct name.
func (filterRecord) TableName() string { return "filter_records" }

// SQLiteConfig holds SQLiteStore settings.
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
}

// SQLiteStore keeps records in a SQLite database through gorm. It uses the
// pure-Go glebarez driver, so no cgo toolchain is needed.
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at cfg.Path and
// migrates the schema.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// SQLite only supports one writer.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&filterRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate filter records: %w", err)
	}

	return &SQLiteStore{db: db, path: cfg.Path}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) ([]string, bool, error) {
	var rec filterRecord
	err := s.db.WithContext(ctx).Where("document_id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load filter record: %w", err)
	}

	var patterns []string
	if err := json.Unmarshal([]byte(rec.Patterns), &patterns); err != nil {
		return nil, false, fmt.Errorf("failed to decode filter record %s: %w", id, err)
	}
	return cloneRecord(patterns), true, nil
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, id string, patterns []string) error {
	if len(patterns) == 0 {
		return s.Remove(ctx, id)
	}

	encoded, err := json.Marshal(patterns)
	if err != nil {
		return fmt.Errorf("failed to encode filter record: %w", err)
	}

	rec := filterRecord{DocumentID: id, Patterns: string(encoded)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"patterns", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save filter record: %w", err)
	}
	return nil
}

// Remove implements Store.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("document_id = ?", id).Delete(&filterRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete filter record: %w", err)
	}
	return nil
}

// Rename implements Store.
func (s *SQLiteStore) Rename(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec filterRecord
		if err := tx.Where("document_id = ?", oldID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load filter record: %w", err)
		}
		if err := tx.Where("document_id IN ?", []string{oldID, newID}).Delete(&filterRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear filter records: %w", err)
		}
		moved := filterRecord{DocumentID: newID, Patterns: rec.Patterns}
		if err := tx.Create(&moved).Error; err != nil {
			return fmt.Errorf("failed to move filter record: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&filterRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count filter records: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
