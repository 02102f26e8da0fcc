package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photo-gallery/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryDSN opens a private in-memory database; used by tests.
const MemoryDSN = "file::memory:"

// InitDB opens the sqlite upload journal at path and migrates its schema.
func InitDB(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path != MemoryDSN {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create journal dir: %w", err)
			}
		}
	}

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open journal %s: %w", path, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("unable to get journal handle: %w", err)
	}
	// sqlite serializes writers; one connection also keeps :memory: a single database.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := conn.AutoMigrate(&models.UploadRecord{}); err != nil {
		return nil, fmt.Errorf("unable to migrate journal: %w", err)
	}

	logger.Info("Upload journal ready", zap.String("path", path))
	return conn, nil
}

// CloseDB closes the journal connection
func CloseDB(conn *gorm.DB) {
	if conn == nil {
		return
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Journal records upload attempts.
type Journal struct {
	conn *gorm.DB
}

func NewJournal(conn *gorm.DB) *Journal {
	return &Journal{conn: conn}
}

func (j *Journal) Record(ctx context.Context, rec *models.UploadRecord) error {
	if err := j.conn.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("record upload %s: %w", rec.RequestID, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	var records []models.UploadRecord
	q := j.conn.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return records, nil
}
