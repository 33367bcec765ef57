package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadRepositoryImpl implements LeadRepository interface
type LeadRepositoryImpl struct {
	*BaseRepository[models.Lead, models.LeadFilter]
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &LeadRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Lead, models.LeadFilter](db),
	}
}

// ByIDWithCategory retrieves a lead with its category preloaded
func (r *LeadRepositoryImpl) ByIDWithCategory(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	db := r.getDB(ctx)
	var lead models.Lead
	if err := db.Preload("Category").Where("id = ?", id).First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load lead %s: %w", id, err)
	}
	return &lead, nil
}

// ListPage returns leads newest first with their category preloaded
func (r *LeadRepositoryImpl) ListPage(ctx context.Context, limit, offset int) ([]*models.Lead, error) {
	db := r.getDB(ctx)
	query := applyPaging(db.Model(&models.Lead{}).Preload("Category"), "created_at DESC, id DESC", "", limit, offset)

	var rows []*models.Lead
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return rows, nil
}

// UpdateCategory assigns or clears the category of a lead
func (r *LeadRepositoryImpl) UpdateCategory(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID) (bool, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.Lead{}).Where("id = ?", id).Updates(map[string]any{
		"category_id": categoryID,
		"updated_at":  utils.UTCNow(),
	})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update lead category: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CountByCategory aggregates lead counts per category; uncategorized leads share one nil-keyed row
func (r *LeadRepositoryImpl) CountByCategory(ctx context.Context) ([]models.CategoryLeadCount, error) {
	db := r.getDB(ctx)
	var rows []models.CategoryLeadCount
	err := db.Table("leads AS l").
		Select("l.category_id AS category_id, c.name AS name, c.color AS color, COUNT(*) AS count").
		Joins("LEFT JOIN categories c ON c.id = l.category_id").
		Group("l.category_id, c.name, c.color").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leads by category: %w", err)
	}
	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *LeadRepositoryImpl) applyFilter(query *gorm.DB, filter models.LeadFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.TwitterHandle != nil {
		query = query.Where("twitter_handle = ?", *filter.TwitterHandle)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves leads based on filter criteria
func (r *LeadRepositoryImpl) ByFilter(ctx context.Context, filter models.LeadFilter, orderBy string, limit, offset int) ([]*models.Lead, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Lead{}), filter)
	query = applyPaging(query, orderBy, "created_at DESC", limit, offset)

	var rows []*models.Lead
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of leads matching the filter
func (r *LeadRepositoryImpl) Count(ctx context.Context, filter models.LeadFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Lead{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

// Exists checks if any lead matching the filter exists
func (r *LeadRepositoryImpl) Exists(ctx context.Context, filter models.LeadFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
