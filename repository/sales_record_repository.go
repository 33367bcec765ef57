package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesRecordRepositoryImpl implements SalesRecordRepository interface
type SalesRecordRepositoryImpl struct {
	*BaseRepository[models.SalesRecord, models.SalesRecordFilter]
}

// NewSalesRecordRepository creates a new sales record repository
func NewSalesRecordRepository(db *gorm.DB) SalesRecordRepository {
	return &SalesRecordRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SalesRecord, models.SalesRecordFilter](db),
	}
}

func withLookups(db *gorm.DB) *gorm.DB {
	return db.Preload("ChatLocation").Preload("SaleStatus").Preload("LeadSource").Preload("Designer")
}

// ByIDWithLookups retrieves a sales record with every lookup preloaded
func (r *SalesRecordRepositoryImpl) ByIDWithLookups(ctx context.Context, id uuid.UUID) (*models.SalesRecord, error) {
	db := r.getDB(ctx)
	var row models.SalesRecord
	if err := withLookups(db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load sales record %s: %w", id, err)
	}
	return &row, nil
}

// ListWithLookups returns matching records newest first with lookups preloaded
func (r *SalesRecordRepositoryImpl) ListWithLookups(ctx context.Context, filter models.SalesRecordFilter) ([]*models.SalesRecord, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(withLookups(db.Model(&models.SalesRecord{})), filter)

	var rows []*models.SalesRecord
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sales records: %w", err)
	}
	return rows, nil
}

// Update recomputes earnings and persists the record
func (r *SalesRecordRepositoryImpl) Update(ctx context.Context, record *models.SalesRecord) error {
	record.RecomputeEarnings()
	db := r.getDB(ctx)
	err := db.Model(record).Select(
		"client", "chat_location_id", "sale_status_id", "lead_source_id", "designer_id",
		"product", "est_deal_value", "est_payout", "est_earnings", "updated_at",
	).Updates(record).Error
	if err != nil {
		return fmt.Errorf("failed to update sales record: %w", err)
	}
	return nil
}

// DeleteByIDs removes the given records and returns how many existed
func (r *SalesRecordRepositoryImpl) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db := r.getDB(ctx)
	res := db.Where("id IN ?", ids).Delete(&models.SalesRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete sales records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *SalesRecordRepositoryImpl) applyFilter(query *gorm.DB, filter models.SalesRecordFilter) *gorm.DB {
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.SaleStatusID != nil {
		query = query.Where("sale_status_id = ?", *filter.SaleStatusID)
	}
	return query
}

func (r *SalesRecordRepositoryImpl) ByFilter(ctx context.Context, filter models.SalesRecordFilter, orderBy string, limit, offset int) ([]*models.SalesRecord, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SalesRecord{}), filter)
	query = applyPaging(query, orderBy, "created_at DESC", limit, offset)

	var rows []*models.SalesRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SalesRecordRepositoryImpl) Count(ctx context.Context, filter models.SalesRecordFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.SalesRecord{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SalesRecordRepositoryImpl) Exists(ctx context.Context, filter models.SalesRecordFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
