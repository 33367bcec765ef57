package businessflow

import (
	"context"
	"regexp"
	"strings"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryFlow manages the colored tags attached to leads and videos
type CategoryFlow interface {
	ListCategories(ctx context.Context) (*dto.CategoriesResponse, error)
	CreateCategory(ctx context.Context, actor Actor, req *dto.CreateCategoryRequest, metadata *ClientMetadata) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, actor Actor, id string, metadata *ClientMetadata) error
	CategoryChart(ctx context.Context) (*dto.ChartResponse, error)
}

// CategoryFlowImpl implements CategoryFlow
type CategoryFlowImpl struct {
	categoryRepo repository.CategoryRepository
	leadRepo     repository.LeadRepository
	activity     ActivityRecorder
	writes       services.RecentWriteTracker
}

func NewCategoryFlow(categoryRepo repository.CategoryRepository, leadRepo repository.LeadRepository, activity ActivityRecorder, writes services.RecentWriteTracker) CategoryFlow {
	return &CategoryFlowImpl{categoryRepo: categoryRepo, leadRepo: leadRepo, activity: activity, writes: writes}
}

func (f *CategoryFlowImpl) ListCategories(ctx context.Context) (*dto.CategoriesResponse, error) {
	rows, err := f.categoryRepo.ListByName(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*models.Category{}
	}
	return &dto.CategoriesResponse{Categories: rows}, nil
}

func (f *CategoryFlowImpl) CreateCategory(ctx context.Context, actor Actor, req *dto.CreateCategoryRequest, metadata *ClientMetadata) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	color := strings.TrimSpace(req.Color)
	if name == "" || color == "" {
		return nil, validationError("Name and color are required")
	}
	if len([]rune(name)) > 50 {
		return nil, validationError("Name must be at most 50 characters")
	}
	if !hexColorPattern.MatchString(color) {
		return nil, validationError("Color must be a hex value like #RRGGBB")
	}

	category := &models.Category{Name: name, Color: color}
	if err := f.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	markWrite(ctx, f.writes, actor, "categories", category.ID)
	f.activity.Record(ctx, actor, models.ActivityCreateCategory, models.ObjectTypeCategory, category.ID.String(),
		map[string]any{"name": category.Name, "color": category.Color}, metadata)

	return &dto.CategoryResponse{Category: category}, nil
}

func (f *CategoryFlowImpl) DeleteCategory(ctx context.Context, actor Actor, id string, metadata *ClientMetadata) error {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return validationError("Invalid category id")
	}

	existing, err := f.categoryRepo.ByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if existing == nil {
		return NewBusinessError(CodeCategoryNotFound, "Category not found", ErrCategoryNotFound)
	}

	deleted, err := f.categoryRepo.DeleteAndDetach(ctx, categoryID)
	if err != nil {
		return err
	}
	if !deleted {
		return NewBusinessError(CodeCategoryNotFound, "Category not found", ErrCategoryNotFound)
	}

	markWrite(ctx, f.writes, actor, "categories", categoryID)
	f.activity.Record(ctx, actor, models.ActivityDeleteCategory, models.ObjectTypeCategory, categoryID.String(),
		map[string]any{"name": existing.Name}, metadata)
	return nil
}

// CategoryChart counts leads per category, folding null categories into Uncategorized
func (f *CategoryFlowImpl) CategoryChart(ctx context.Context) (*dto.ChartResponse, error) {
	counts, err := f.leadRepo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.ChartEntry, 0, len(counts))
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		entry := dto.ChartEntry{
			Name:  utils.UncategorizedLabel,
			Value: c.Count,
			Color: utils.UncategorizedColor,
		}
		if c.CategoryID != nil && c.Name != nil {
			entry.Name = *c.Name
			entry.Color = utils.Deref(c.Color)
		}
		entries = append(entries, entry)
	}

	return &dto.ChartResponse{ChartData: entries}, nil
}
