package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/leadboard/models"
	"gorm.io/gorm"
)

// UserActivityLogRepositoryImpl implements UserActivityLogRepository interface
type UserActivityLogRepositoryImpl struct {
	*BaseRepository[models.UserActivityLog, models.UserActivityLogFilter]
}

// NewUserActivityLogRepository creates a new activity log repository
func NewUserActivityLogRepository(db *gorm.DB) UserActivityLogRepository {
	return &UserActivityLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UserActivityLog, models.UserActivityLogFilter](db),
	}
}

// DeleteOlderThan purges entries created before cutoff
func (r *UserActivityLogRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Where("created_at < ?", cutoff).Delete(&models.UserActivityLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge activity logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// applyFilter applies filter criteria to a GORM query.
// CreatedAfter and CreatedBefore are inclusive bounds.
func (r *UserActivityLogRepositoryImpl) applyFilter(query *gorm.DB, filter models.UserActivityLogFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.ObjectType != nil {
		query = query.Where("object_type = ?", *filter.ObjectType)
	}
	if filter.ObjectID != nil {
		query = query.Where("object_id = ?", *filter.ObjectID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves activity logs based on filter criteria
func (r *UserActivityLogRepositoryImpl) ByFilter(ctx context.Context, filter models.UserActivityLogFilter, orderBy string, limit, offset int) ([]*models.UserActivityLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.UserActivityLog{}), filter)
	query = applyPaging(query, orderBy, "created_at DESC", limit, offset)

	var rows []*models.UserActivityLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return rows, nil
}

// Count returns the number of activity logs matching the filter
func (r *UserActivityLogRepositoryImpl) Count(ctx context.Context, filter models.UserActivityLogFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.UserActivityLog{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count activity logs: %w", err)
	}
	return count, nil
}

// Exists checks if any activity log matching the filter exists
func (r *UserActivityLogRepositoryImpl) Exists(ctx context.Context, filter models.UserActivityLogFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
