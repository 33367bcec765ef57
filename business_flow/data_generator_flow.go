package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/amirphl/leadboard/utils"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

const (
	defaultGenerateCount = 10
	maxGenerateCount     = 1000
	generateBatchSize    = 100

	verifiedChance     = 0.1
	blueVerifiedChance = 0.2
	generatedLeadSpan  = 90 * 24 * time.Hour
)

// DataGeneratorFlow seeds fake leads for demos and load testing
type DataGeneratorFlow interface {
	GenerateLeads(ctx context.Context, actor Actor, req *dto.GenerateDataRequest, metadata *ClientMetadata) (*dto.GenerateDataResponse, error)
}

// DataGeneratorFlowImpl implements DataGeneratorFlow
type DataGeneratorFlowImpl struct {
	leadRepo     repository.LeadRepository
	categoryRepo repository.CategoryRepository
	activity     ActivityRecorder
	faker        *gofakeit.Faker
}

// NewDataGeneratorFlow uses a time-seeded faker when faker is nil
func NewDataGeneratorFlow(leadRepo repository.LeadRepository, categoryRepo repository.CategoryRepository, activity ActivityRecorder, faker *gofakeit.Faker) DataGeneratorFlow {
	if faker == nil {
		faker = gofakeit.New(0)
	}
	return &DataGeneratorFlowImpl{
		leadRepo:     leadRepo,
		categoryRepo: categoryRepo,
		activity:     activity,
		faker:        faker,
	}
}

func (f *DataGeneratorFlowImpl) GenerateLeads(ctx context.Context, actor Actor, req *dto.GenerateDataRequest, metadata *ClientMetadata) (*dto.GenerateDataResponse, error) {
	count := defaultGenerateCount
	if req != nil && req.Count != nil {
		count = *req.Count
	}
	if count < 1 || count > maxGenerateCount {
		return nil, validationError(fmt.Sprintf("count must be between 1 and %d", maxGenerateCount))
	}

	categoryIDs, err := f.categoryRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	batch := make([]*models.Lead, 0, generateBatchSize)
	for i := 0; i < count; i++ {
		batch = append(batch, f.fakeLead(categoryIDs, now))
		if len(batch) == generateBatchSize {
			if err := f.leadRepo.SaveBatch(ctx, batch); err != nil {
				return nil, err
			}
			batch = make([]*models.Lead, 0, generateBatchSize)
		}
	}
	if len(batch) > 0 {
		if err := f.leadRepo.SaveBatch(ctx, batch); err != nil {
			return nil, err
		}
	}

	requestLogger(ctx, "data_generator").WithField("count", count).Info("generated fake leads")
	f.activity.Record(ctx, actor, models.ActivityGenerateData, models.ObjectTypeLead, "",
		map[string]any{"count": count}, metadata)

	return &dto.GenerateDataResponse{
		Success: true,
		Message: fmt.Sprintf("Generated %d leads", count),
		Count:   count,
	}, nil
}

func (f *DataGeneratorFlowImpl) fakeLead(categoryIDs []uuid.UUID, now time.Time) *models.Lead {
	var categoryID *uuid.UUID
	if len(categoryIDs) > 0 {
		id := categoryIDs[f.faker.Number(0, len(categoryIDs)-1)]
		categoryID = &id
	}

	createdAt := f.faker.DateRange(now.Add(-generatedLeadSpan), now).UTC()
	lastPost := f.faker.DateRange(createdAt, now).UTC()
	handle := strings.ReplaceAll(f.faker.Username(), " ", "_")

	return &models.Lead{
		Name:            f.faker.Name(),
		CategoryID:      categoryID,
		TwitterHandle:   handle,
		ProfileImageURL: utils.ToPtr(utils.DefaultProfileImageURL),
		FollowerCount:   f.faker.Number(0, 1000000),
		LastPostDate:    &lastPost,
		IsVerified:      utils.ToPtr(f.faker.Float64() < verifiedChance),
		IsBlueVerified:  utils.ToPtr(f.faker.Float64() < blueVerifiedChance),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}
