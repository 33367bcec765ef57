package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LookupKind names one of the sales lookup tables
type LookupKind string

const (
	LookupChatLocation LookupKind = "chat_locations"
	LookupSaleStatus   LookupKind = "sale_statuses"
	LookupLeadSource   LookupKind = "lead_sources"
	LookupDesigner     LookupKind = "designers"
)

// SalesLookupRepositoryImpl implements SalesLookupRepository interface
type SalesLookupRepositoryImpl struct {
	DB *gorm.DB
}

// NewSalesLookupRepository creates a new sales lookup repository
func NewSalesLookupRepository(db *gorm.DB) SalesLookupRepository {
	return &SalesLookupRepositoryImpl{DB: db}
}

func (r *SalesLookupRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}

// All loads every lookup table ordered by name
func (r *SalesLookupRepositoryImpl) All(ctx context.Context) (*models.SalesLookups, error) {
	db := r.getDB(ctx)
	out := &models.SalesLookups{}
	if err := db.Order("name ASC").Find(&out.ChatLocations).Error; err != nil {
		return nil, fmt.Errorf("failed to load chat locations: %w", err)
	}
	if err := db.Order("name ASC").Find(&out.SaleStatuses).Error; err != nil {
		return nil, fmt.Errorf("failed to load sale statuses: %w", err)
	}
	if err := db.Order("name ASC").Find(&out.LeadSources).Error; err != nil {
		return nil, fmt.Errorf("failed to load lead sources: %w", err)
	}
	if err := db.Order("name ASC").Find(&out.Designers).Error; err != nil {
		return nil, fmt.Errorf("failed to load designers: %w", err)
	}
	return out, nil
}

// Exists reports whether id is present in the lookup table named by kind
func (r *SalesLookupRepositoryImpl) Exists(ctx context.Context, kind LookupKind, id uuid.UUID) (bool, error) {
	switch kind {
	case LookupChatLocation, LookupSaleStatus, LookupLeadSource, LookupDesigner:
	default:
		return false, fmt.Errorf("unknown lookup kind %q", kind)
	}
	var count int64
	if err := r.getDB(ctx).Table(string(kind)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	return count > 0, nil
}

// EnsureDefaults inserts the default lookup values, skipping names already present
func (r *SalesLookupRepositoryImpl) EnsureDefaults(ctx context.Context) error {
	db := r.getDB(ctx)
	ignore := clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}

	for _, name := range models.DefaultChatLocations {
		if err := db.Clauses(ignore).Create(&models.ChatLocation{Name: name}).Error; err != nil {
			return fmt.Errorf("failed to seed chat location %q: %w", name, err)
		}
	}
	for _, name := range models.DefaultSaleStatuses {
		if err := db.Clauses(ignore).Create(&models.SaleStatus{Name: name}).Error; err != nil {
			return fmt.Errorf("failed to seed sale status %q: %w", name, err)
		}
	}
	for _, name := range models.DefaultLeadSources {
		if err := db.Clauses(ignore).Create(&models.LeadSource{Name: name}).Error; err != nil {
			return fmt.Errorf("failed to seed lead source %q: %w", name, err)
		}
	}
	return nil
}
