package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoRepositoryImpl implements VideoRepository interface
type VideoRepositoryImpl struct {
	*BaseRepository[models.Video, models.VideoFilter]
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &VideoRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Video, models.VideoFilter](db),
	}
}

func (r *VideoRepositoryImpl) ListWithCategory(ctx context.Context) ([]*models.Video, error) {
	db := r.getDB(ctx)
	var rows []*models.Video
	if err := db.Preload("Category").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return rows, nil
}

func (r *VideoRepositoryImpl) ByIDWithCategory(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	db := r.getDB(ctx)
	var row models.Video
	if err := db.Preload("Category").Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load video %s: %w", id, err)
	}
	return &row, nil
}

// UpdateFields stamps updated_at along with the given columns
func (r *VideoRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	fields["updated_at"] = utils.UTCNow()
	return r.BaseRepository.UpdateFields(ctx, id, fields)
}

// MarkStaleAsFailed flips uploads stuck in processing since before olderThan to failed
func (r *VideoRepositoryImpl) MarkStaleAsFailed(ctx context.Context, olderThan time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.Video{}).
		Where("upload_status = ? AND created_at < ?", models.VideoStatusProcessing, olderThan).
		Updates(map[string]any{
			"upload_status": models.VideoStatusFailed,
			"updated_at":    utils.UTCNow(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark stale uploads: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *VideoRepositoryImpl) applyFilter(query *gorm.DB, filter models.VideoFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.UploadStatus != nil {
		query = query.Where("upload_status = ?", *filter.UploadStatus)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

func (r *VideoRepositoryImpl) ByFilter(ctx context.Context, filter models.VideoFilter, orderBy string, limit, offset int) ([]*models.Video, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Video{}), filter)
	query = applyPaging(query, orderBy, "created_at DESC", limit, offset)

	var rows []*models.Video
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *VideoRepositoryImpl) Count(ctx context.Context, filter models.VideoFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Video{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VideoRepositoryImpl) Exists(ctx context.Context, filter models.VideoFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
