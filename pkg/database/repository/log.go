package repository

import (
	"context"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"gorm.io/gorm"
)

// SyncLogRepository persists structured log entries
type SyncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// SaveLog saves a log entry to the database
func (r *SyncLogRepository) SaveLog(log *models.SyncLog) error {
	return r.db.Create(log).Error
}

// Recent returns the newest entries for a component
func (r *SyncLogRepository) Recent(ctx context.Context, component string, limit int) ([]models.SyncLog, error) {
	var logs []models.SyncLog
	query := r.db.WithContext(ctx).Order("timestamp DESC")
	if component != "" {
		query = query.Where("component = ?", component)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&logs).Error
	return logs, err
}
