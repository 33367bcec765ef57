package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRepositoryImpl implements CategoryRepository interface
type CategoryRepositoryImpl struct {
	*BaseRepository[models.Category, models.CategoryFilter]
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &CategoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Category, models.CategoryFilter](db),
	}
}

// ListByName returns every category ordered by name ascending
func (r *CategoryRepositoryImpl) ListByName(ctx context.Context) ([]*models.Category, error) {
	return r.ByFilter(ctx, models.CategoryFilter{}, "name ASC", 0, 0)
}

// First returns the first category by name, or nil when the table is empty
func (r *CategoryRepositoryImpl) First(ctx context.Context) (*models.Category, error) {
	rows, err := r.ByFilter(ctx, models.CategoryFilter{}, "name ASC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListIDs returns the IDs of every category
func (r *CategoryRepositoryImpl) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	db := r.getDB(ctx)
	var ids []uuid.UUID
	if err := db.Model(&models.Category{}).Order("name ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list category ids: %w", err)
	}
	return ids, nil
}

// DeleteAndDetach clears category references on leads and videos, then deletes the category.
// Runs inside the caller's transaction when one is present.
func (r *CategoryRepositoryImpl) DeleteAndDetach(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted := false
	run := func(txCtx context.Context) error {
		db := r.getDB(txCtx)

		var existing models.Category
		if err := db.Where("id = ?", id).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load category: %w", err)
		}

		if err := db.Model(&models.Lead{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach leads: %w", err)
		}
		if err := db.Model(&models.Video{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach videos: %w", err)
		}

		res := db.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete category: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	}

	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return deleted, run(ctx)
	}
	if err := WithTransaction(ctx, r.DB, run); err != nil {
		return false, err
	}
	return deleted, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CategoryRepositoryImpl) applyFilter(query *gorm.DB, filter models.CategoryFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	return query
}

// ByFilter retrieves categories based on filter criteria
func (r *CategoryRepositoryImpl) ByFilter(ctx context.Context, filter models.CategoryFilter, orderBy string, limit, offset int) ([]*models.Category, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Category{}), filter)
	query = applyPaging(query, orderBy, "created_at DESC", limit, offset)

	var rows []*models.Category
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return rows, nil
}

// Count returns the number of categories matching the filter
func (r *CategoryRepositoryImpl) Count(ctx context.Context, filter models.CategoryFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Category{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any category matching the filter exists
func (r *CategoryRepositoryImpl) Exists(ctx context.Context, filter models.CategoryFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
