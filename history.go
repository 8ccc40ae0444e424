package main

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SubmissionDTO is one journaled relay submission. Reference is the bundle or
// transaction hash the relay returned, or the one the call targeted.
type SubmissionDTO struct {
	ID           uint      `gorm:"column:id;primaryKey"`
	Method       string    `gorm:"column:method;not null;index"`
	Signer       string    `gorm:"column:signer;not null"`
	Block        string    `gorm:"column:block"`
	Reference    string    `gorm:"column:reference"`
	Outcome      string    `gorm:"column:outcome;not null"`
	ErrorCode    *int64    `gorm:"column:error_code"`
	ErrorMessage string    `gorm:"column:error_message"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
}

func (SubmissionDTO) TableName() string {
	return "relay_submissions"
}

// History is the local journal of relay submissions.
type History struct {
	db *gorm.DB
}

func OpenHistory(conf HistoryConfig) (*History, error) {
	var dial gorm.Dialector
	switch conf.Driver {
	case "sqlite", "":
		dial = sqlite.Open(fmt.Sprintf("file:%s?cache=shared", conf.DSN))
	case "postgres":
		dial = postgres.Open(conf.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", conf.Driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", conf.Driver, err)
	}

	if err := db.AutoMigrate(&SubmissionDTO{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database schema: %w", err)
	}

	return &History{db: db}, nil
}

func (h *History) Record(entry *SubmissionDTO) error {
	if entry.Method == "" {
		return errors.New("method cannot be empty")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := h.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// Recent returns up to limit submissions, newest first.
func (h *History) Recent(limit int) ([]SubmissionDTO, error) {
	if limit <= 0 {
		return []SubmissionDTO{}, nil
	}

	var entries []SubmissionDTO
	if err := h.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return entries, nil
}

func (h *History) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
