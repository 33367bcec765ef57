// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uuid.UUID) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CategoryRepository defines operations for categories
type CategoryRepository interface {
	Repository[models.Category, models.CategoryFilter]
	ListByName(ctx context.Context) ([]*models.Category, error)
	First(ctx context.Context) (*models.Category, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	// DeleteAndDetach nulls every lead and video reference before deleting the category
	DeleteAndDetach(ctx context.Context, id uuid.UUID) (bool, error)
}

// LeadRepository defines operations for leads
type LeadRepository interface {
	Repository[models.Lead, models.LeadFilter]
	ByIDWithCategory(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	ListPage(ctx context.Context, limit, offset int) ([]*models.Lead, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	CountByCategory(ctx context.Context) ([]models.CategoryLeadCount, error)
}

// VideoRepository defines operations for video metadata
type VideoRepository interface {
	Repository[models.Video, models.VideoFilter]
	ListWithCategory(ctx context.Context) ([]*models.Video, error)
	ByIDWithCategory(ctx context.Context, id uuid.UUID) (*models.Video, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	MarkStaleAsFailed(ctx context.Context, olderThan time.Time) (int64, error)
}

// UserActivityLogRepository defines operations for the activity trail
type UserActivityLogRepository interface {
	Repository[models.UserActivityLog, models.UserActivityLogFilter]
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserRoleRepository defines operations for application roles
type UserRoleRepository interface {
	Repository[models.UserRole, models.UserRoleFilter]
	ByUserID(ctx context.Context, userID uuid.UUID) (*models.UserRole, error)
	Upsert(ctx context.Context, userID uuid.UUID, role string) (*models.UserRole, error)
}

// SalesRecordRepository defines operations for the sales grid
type SalesRecordRepository interface {
	Repository[models.SalesRecord, models.SalesRecordFilter]
	ByIDWithLookups(ctx context.Context, id uuid.UUID) (*models.SalesRecord, error)
	ListWithLookups(ctx context.Context, filter models.SalesRecordFilter) ([]*models.SalesRecord, error)
	Update(ctx context.Context, record *models.SalesRecord) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// SalesLookupRepository reads and seeds the sales lookup tables
type SalesLookupRepository interface {
	All(ctx context.Context) (*models.SalesLookups, error)
	Exists(ctx context.Context, kind LookupKind, id uuid.UUID) (bool, error)
	EnsureDefaults(ctx context.Context) error
}

// MFAFactorRepository defines operations for TOTP factors
type MFAFactorRepository interface {
	Repository[models.MFAFactor, models.MFAFactorFilter]
	Update(ctx context.Context, factor *models.MFAFactor) error
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteUnverifiedByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// MFAChallengeRepository defines operations for factor challenges
type MFAChallengeRepository interface {
	Repository[models.MFAChallenge, models.MFAChallengeFilter]
	// Consume marks an unexpired, unused challenge verified. It reports false when another request won.
	Consume(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
