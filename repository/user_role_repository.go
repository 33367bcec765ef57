package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRoleRepositoryImpl implements UserRoleRepository interface
type UserRoleRepositoryImpl struct {
	*BaseRepository[models.UserRole, models.UserRoleFilter]
}

// NewUserRoleRepository creates a new user role repository
func NewUserRoleRepository(db *gorm.DB) UserRoleRepository {
	return &UserRoleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UserRole, models.UserRoleFilter](db),
	}
}

// ByUserID returns the stored role row, or nil when the user has none
func (r *UserRoleRepositoryImpl) ByUserID(ctx context.Context, userID uuid.UUID) (*models.UserRole, error) {
	rows, err := r.ByFilter(ctx, models.UserRoleFilter{UserID: &userID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Upsert sets the role of a user, inserting the row on first assignment
func (r *UserRoleRepositoryImpl) Upsert(ctx context.Context, userID uuid.UUID, role string) (*models.UserRole, error) {
	db := r.getDB(ctx)
	row := &models.UserRole{UserID: userID, Role: role}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user role: %w", err)
	}
	return r.ByUserID(ctx, userID)
}

func (r *UserRoleRepositoryImpl) applyFilter(query *gorm.DB, filter models.UserRoleFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	return query
}

// ByFilter retrieves user roles based on filter criteria
func (r *UserRoleRepositoryImpl) ByFilter(ctx context.Context, filter models.UserRoleFilter, orderBy string, limit, offset int) ([]*models.UserRole, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.UserRole{}), filter)
	query = applyPaging(query, orderBy, "created_at DESC", limit, offset)

	var rows []*models.UserRole
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}
	return rows, nil
}

func (r *UserRoleRepositoryImpl) Count(ctx context.Context, filter models.UserRoleFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.UserRole{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRoleRepositoryImpl) Exists(ctx context.Context, filter models.UserRoleFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
