package repository

import (
	"context"
	"errors"
	"time"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// entityPtr constrains the pointer form of a synchronized model
type entityPtr[T any] interface {
	*T
	models.Entity
}

// resourceStore implements the persistence contract shared by every
// synchronized kind
type resourceStore[T any, P entityPtr[T]] struct {
	db *gorm.DB
}

// FindByIdentifier looks a record up by external id or case-insensitive name.
// A missing record returns (nil, nil).
func (s resourceStore[T, P]) FindByIdentifier(ctx context.Context, ident models.Identifier) (*T, error) {
	query := s.db.WithContext(ctx)
	if ident.IsExternalID() {
		query = query.Where("external_id = ?", ident.ExternalID)
	} else {
		query = query.Where("LOWER(name) = ?", ident.Name)
	}

	var record T
	if err := query.Take(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindByExternalID is FindByIdentifier for a numeric id
func (s resourceStore[T, P]) FindByExternalID(ctx context.Context, externalID int) (*T, error) {
	return s.FindByIdentifier(ctx, models.Identifier{ExternalID: externalID})
}

// FindByID loads a record by its local primary key
func (s resourceStore[T, P]) FindByID(ctx context.Context, id uint) (*T, error) {
	var record T
	if err := s.db.WithContext(ctx).Take(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create inserts the record without touching its associations
func (s resourceStore[T, P]) Create(ctx context.Context, record P) error {
	return createResource(s.db.WithContext(ctx), record)
}

// UpdatePayload overwrites the payload and advances the sync timestamp.
// Identity columns are never written.
func (s resourceStore[T, P]) UpdatePayload(ctx context.Context, record P, data datatypes.JSON, now time.Time) error {
	res := record.GetResource()
	next := res.NextSyncTime(now)

	err := s.db.WithContext(ctx).Model(record).Updates(map[string]interface{}{
		"data": data,
		// concurrent writers may have advanced it further; never move it back
		"last_synced": gorm.Expr("CASE WHEN last_synced < ? THEN ? ELSE last_synced END", next, next),
	}).Error
	if err != nil {
		return err
	}

	res.Data = data
	res.LastSynced = next
	return nil
}

// List returns records ordered by external id
func (s resourceStore[T, P]) List(ctx context.Context, limit, offset int) ([]T, error) {
	var records []T
	query := s.db.WithContext(ctx).Order("external_id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of stored records
func (s resourceStore[T, P]) Count(ctx context.Context) (int64, error) {
	var count int64
	var model T
	err := s.db.WithContext(ctx).Model(&model).Count(&count).Error
	return count, err
}

// Delete removes the record; dependent rows go with it through FK cascades
func (s resourceStore[T, P]) Delete(ctx context.Context, record P) error {
	return s.db.WithContext(ctx).Delete(record).Error
}

func createResource(db *gorm.DB, record models.Entity) error {
	return db.Omit(clause.Associations).Create(record).Error
}

// link inserts a join row, doing nothing when it already exists
func link(db *gorm.DB, table string, row map[string]interface{}) error {
	return db.Table(table).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}
