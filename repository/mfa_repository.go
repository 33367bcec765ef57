package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MFAFactorRepositoryImpl implements MFAFactorRepository interface
type MFAFactorRepositoryImpl struct {
	*BaseRepository[models.MFAFactor, models.MFAFactorFilter]
}

// NewMFAFactorRepository creates a new factor repository
func NewMFAFactorRepository(db *gorm.DB) MFAFactorRepository {
	return &MFAFactorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MFAFactor, models.MFAFactorFilter](db),
	}
}

// Update persists status, secret and recovery codes of a factor
func (r *MFAFactorRepositoryImpl) Update(ctx context.Context, factor *models.MFAFactor) error {
	db := r.getDB(ctx)
	err := db.Model(factor).Select("friendly_name", "status", "recovery_code_hashes", "updated_at").Updates(map[string]any{
		"friendly_name":        factor.FriendlyName,
		"status":               factor.Status,
		"recovery_code_hashes": factor.RecoveryCodeHashes,
		"updated_at":           time.Now().UTC(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update factor: %w", err)
	}
	return nil
}

// DeleteUnverifiedByUser drops abandoned enrollments of a user
func (r *MFAFactorRepositoryImpl) DeleteUnverifiedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	db := r.getDB(ctx)
	res := db.Where("user_id = ? AND status = ?", userID, models.FactorStatusUnverified).Delete(&models.MFAFactor{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete unverified factors: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *MFAFactorRepositoryImpl) applyFilter(query *gorm.DB, filter models.MFAFactorFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func (r *MFAFactorRepositoryImpl) ByFilter(ctx context.Context, filter models.MFAFactorFilter, orderBy string, limit, offset int) ([]*models.MFAFactor, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MFAFactor{}), filter)
	query = applyPaging(query, orderBy, "created_at ASC", limit, offset)

	var rows []*models.MFAFactor
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MFAFactorRepositoryImpl) Count(ctx context.Context, filter models.MFAFactorFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.MFAFactor{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MFAFactorRepositoryImpl) Exists(ctx context.Context, filter models.MFAFactorFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// MFAChallengeRepositoryImpl implements MFAChallengeRepository interface
type MFAChallengeRepositoryImpl struct {
	*BaseRepository[models.MFAChallenge, models.MFAChallengeFilter]
}

// NewMFAChallengeRepository creates a new challenge repository
func NewMFAChallengeRepository(db *gorm.DB) MFAChallengeRepository {
	return &MFAChallengeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MFAChallenge, models.MFAChallengeFilter](db),
	}
}

// Consume is a conditional update so two concurrent verifies cannot both succeed
func (r *MFAChallengeRepositoryImpl) Consume(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.MFAChallenge{}).
		Where("id = ? AND verified_at IS NULL AND expires_at > ?", id, at).
		Update("verified_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("failed to consume challenge: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// DeleteExpired removes challenges whose expiry has passed
func (r *MFAChallengeRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Where("expires_at < ?", now).Delete(&models.MFAChallenge{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge challenges: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *MFAChallengeRepositoryImpl) applyFilter(query *gorm.DB, filter models.MFAChallengeFilter) *gorm.DB {
	if filter.FactorID != nil {
		query = query.Where("factor_id = ?", *filter.FactorID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	return query
}

func (r *MFAChallengeRepositoryImpl) ByFilter(ctx context.Context, filter models.MFAChallengeFilter, orderBy string, limit, offset int) ([]*models.MFAChallenge, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MFAChallenge{}), filter)
	query = applyPaging(query, orderBy, "created_at DESC", limit, offset)

	var rows []*models.MFAChallenge
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MFAChallengeRepositoryImpl) Count(ctx context.Context, filter models.MFAChallengeFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.MFAChallenge{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MFAChallengeRepositoryImpl) Exists(ctx context.Context, filter models.MFAChallengeFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
