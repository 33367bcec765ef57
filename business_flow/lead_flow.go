package businessflow

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/amirphl/leadboard/utils"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

const pendingSyncMarker = "pending"

// LeadFlow handles lead CRUD, the mocked twitter import and offline replays
type LeadFlow interface {
	ListLeads(ctx context.Context, req *dto.ListLeadsRequest) (*dto.ListLeadsResponse, error)
	CreateLead(ctx context.Context, actor Actor, req *dto.CreateLeadRequest, metadata *ClientMetadata) (*dto.LeadResponse, error)
	UpdateLead(ctx context.Context, actor Actor, id string, req *dto.UpdateLeadRequest, metadata *ClientMetadata) (*dto.LeadResponse, error)
	DeleteLead(ctx context.Context, actor Actor, id string, metadata *ClientMetadata) error
	CreateLeadFromTwitter(ctx context.Context, actor Actor, req *dto.CreateLeadFromTwitterRequest, metadata *ClientMetadata) (*dto.LeadResponse, error)
	SyncLeads(ctx context.Context, actor Actor, req *dto.SyncLeadsRequest, metadata *ClientMetadata) (*dto.SyncLeadsResponse, error)
}

// LeadFlowImpl implements LeadFlow
type LeadFlowImpl struct {
	leadRepo     repository.LeadRepository
	categoryRepo repository.CategoryRepository
	activity     ActivityRecorder
	writes       services.RecentWriteTracker
	receipts     services.KeyValueStore
}

func NewLeadFlow(
	leadRepo repository.LeadRepository,
	categoryRepo repository.CategoryRepository,
	activity ActivityRecorder,
	writes services.RecentWriteTracker,
	receipts services.KeyValueStore,
) LeadFlow {
	return &LeadFlowImpl{
		leadRepo:     leadRepo,
		categoryRepo: categoryRepo,
		activity:     activity,
		writes:       writes,
		receipts:     receipts,
	}
}

func (f *LeadFlowImpl) ListLeads(ctx context.Context, req *dto.ListLeadsRequest) (*dto.ListLeadsResponse, error) {
	page := req.Page
	if page < 0 {
		page = 0
	}
	limit := utils.ClampLimit(req.Limit, utils.DefaultLeadPageSize, utils.MaxPageSize)
	offset, ok := utils.PageOffset(page, limit)
	if !ok {
		return nil, validationError("page is out of range")
	}

	total, err := f.leadRepo.Count(ctx, models.LeadFilter{})
	if err != nil {
		return nil, err
	}

	leads, err := f.leadRepo.ListPage(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []*models.Lead{}
	}

	return &dto.ListLeadsResponse{
		Leads:      leads,
		Pagination: buildPagination(page, offset, len(leads), total),
	}, nil
}

func buildPagination(page, offset, returned int, total int64) dto.Pagination {
	p := dto.Pagination{
		Page:       page,
		TotalCount: total,
		HasMore:    int64(offset+returned) < total,
	}
	if returned > 0 {
		p.CurrentRange = dto.Range{Start: offset + 1, End: offset + returned}
	}
	return p
}

// resolveCategory parses and checks an optional category id
func (f *LeadFlowImpl) resolveCategory(ctx context.Context, raw *string) (*uuid.UUID, error) {
	id, err := parseOptionalUUID(raw)
	if err != nil {
		return nil, NewBusinessError(CodeInvalidCategory, "Category not found", ErrCategoryNotFound)
	}
	if id == nil {
		return nil, nil
	}
	category, err := f.categoryRepo.ByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, NewBusinessError(CodeInvalidCategory, "Category not found", ErrCategoryNotFound)
	}
	return id, nil
}

func (f *LeadFlowImpl) CreateLead(ctx context.Context, actor Actor, req *dto.CreateLeadRequest, metadata *ClientMetadata) (*dto.LeadResponse, error) {
	name := strings.TrimSpace(req.Name)
	handle := strings.TrimPrefix(strings.TrimSpace(req.TwitterHandle), "@")
	if name == "" || handle == "" {
		return nil, validationError("Name and twitter handle are required")
	}

	categoryID, err := f.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	imageURL := utils.DefaultProfileImageURL
	if req.ProfileImageURL != nil && strings.TrimSpace(*req.ProfileImageURL) != "" {
		imageURL = strings.TrimSpace(*req.ProfileImageURL)
	}

	lead := &models.Lead{
		Name:            name,
		CategoryID:      categoryID,
		TwitterHandle:   handle,
		ProfileImageURL: &imageURL,
		FollowerCount:   utils.Deref(req.FollowerCount),
		LastPostDate:    utils.TimeToUTCPtr(req.LastPostDate),
		IsVerified:      utils.ToPtr(utils.IsTrue(req.IsVerified)),
		IsBlueVerified:  utils.ToPtr(utils.IsTrue(req.IsBlueVerified)),
	}

	return f.insert(ctx, actor, lead, metadata)
}

func (f *LeadFlowImpl) insert(ctx context.Context, actor Actor, lead *models.Lead, metadata *ClientMetadata) (*dto.LeadResponse, error) {
	if err := f.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}

	created, err := f.leadRepo.ByIDWithCategory(ctx, lead.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = lead
	}

	markWrite(ctx, f.writes, actor, "leads", lead.ID)
	f.activity.Record(ctx, actor, models.ActivityCreateLead, models.ObjectTypeLead, lead.ID.String(),
		map[string]any{"name": lead.Name, "twitter_handle": lead.TwitterHandle}, metadata)

	return &dto.LeadResponse{Lead: created}, nil
}

func (f *LeadFlowImpl) UpdateLead(ctx context.Context, actor Actor, id string, req *dto.UpdateLeadRequest, metadata *ClientMetadata) (*dto.LeadResponse, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return nil, validationError("Invalid lead id")
	}
	if !req.CategoryID.Set {
		return nil, NewBusinessError(CodeNoValidFields, "No valid fields to update", nil)
	}

	categoryID, err := f.resolveCategory(ctx, req.CategoryID.Value)
	if err != nil {
		return nil, err
	}

	ok, err := f.leadRepo.UpdateCategory(ctx, leadID, categoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewBusinessError(CodeLeadNotFound, "Lead not found", ErrLeadNotFound)
	}

	lead, err := f.leadRepo.ByIDWithCategory(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, NewBusinessError(CodeLeadNotFound, "Lead not found", ErrLeadNotFound)
	}

	var newCategory any
	if categoryID != nil {
		newCategory = categoryID.String()
	}
	markWrite(ctx, f.writes, actor, "leads", leadID)
	f.activity.Record(ctx, actor, models.ActivityUpdateLead, models.ObjectTypeLead, leadID.String(),
		map[string]any{"updates": map[string]any{"category_id": newCategory}}, metadata)

	return &dto.LeadResponse{Lead: lead}, nil
}

func (f *LeadFlowImpl) DeleteLead(ctx context.Context, actor Actor, id string, metadata *ClientMetadata) error {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return validationError("Invalid lead id")
	}

	lead, err := f.leadRepo.ByID(ctx, leadID)
	if err != nil {
		return err
	}
	if lead == nil {
		return NewBusinessError(CodeLeadNotFound, "Lead not found", ErrLeadNotFound)
	}

	deleted, err := f.leadRepo.DeleteByID(ctx, leadID)
	if err != nil {
		return err
	}
	if !deleted {
		return NewBusinessError(CodeLeadNotFound, "Lead not found", ErrLeadNotFound)
	}

	markWrite(ctx, f.writes, actor, "leads", leadID)
	f.activity.Record(ctx, actor, models.ActivityDeleteLead, models.ObjectTypeLead, leadID.String(),
		map[string]any{"name": lead.Name}, metadata)
	return nil
}

// CreateLeadFromTwitter builds a mock lead from a profile URL; nothing is fetched from twitter
func (f *LeadFlowImpl) CreateLeadFromTwitter(ctx context.Context, actor Actor, req *dto.CreateLeadFromTwitterRequest, metadata *ClientMetadata) (*dto.LeadResponse, error) {
	if strings.TrimSpace(req.TwitterURL) == "" {
		return nil, validationError("Twitter URL is required")
	}

	username, err := ParseTwitterUsername(req.TwitterURL)
	if err != nil {
		return nil, NewBusinessError(CodeInvalidTwitterURL, "Invalid Twitter URL", err)
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && strings.TrimSpace(*req.CategoryID) != "" {
		categoryID, err = f.resolveCategory(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
	} else {
		first, err := f.categoryRepo.First(ctx)
		if err != nil {
			return nil, err
		}
		if first == nil {
			return nil, NewBusinessError(CodeNoCategories, "No categories found", ErrNoCategories)
		}
		categoryID = &first.ID
	}

	lead := &models.Lead{
		Name:            fmt.Sprintf("Mock User (%s)", username),
		CategoryID:      categoryID,
		TwitterHandle:   username,
		ProfileImageURL: utils.ToPtr(utils.DefaultProfileImageURL),
		FollowerCount:   gofakeit.Number(0, utils.MockFollowerCeiling-1),
		LastPostDate:    utils.UTCNowPtr(),
		IsVerified:      utils.ToPtr(false),
		IsBlueVerified:  utils.ToPtr(false),
	}

	return f.insert(ctx, actor, lead, metadata)
}

// ParseTwitterUsername extracts a handle from an x.com/twitter.com URL or a bare @handle
func ParseTwitterUsername(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}

	if !strings.Contains(raw, "/") && !strings.Contains(raw, ".") {
		handle := strings.TrimPrefix(raw, "@")
		if handle == "" {
			return "", fmt.Errorf("empty handle")
		}
		return handle, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "mobile.")
	if host != "x.com" && host != "twitter.com" {
		return "", fmt.Errorf("unsupported host %q", u.Hostname())
	}

	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimPrefix(strings.TrimSpace(segments[i]), "@")
		if seg != "" {
			return seg, nil
		}
	}
	return "", fmt.Errorf("no username in %q", raw)
}

// SyncLeads replays queued offline creations in order. A temp id is applied at most once per user.
func (f *LeadFlowImpl) SyncLeads(ctx context.Context, actor Actor, req *dto.SyncLeadsRequest, metadata *ClientMetadata) (*dto.SyncLeadsResponse, error) {
	results := make([]dto.SyncLeadResult, 0, len(req.Items))
	log := requestLogger(ctx, "lead_sync")

	for _, item := range req.Items {
		result := dto.SyncLeadResult{TempID: item.TempID}
		if strings.TrimSpace(item.TempID) == "" {
			result.Status = dto.SyncStatusFailed
			result.Error = "temp_id is required"
			results = append(results, result)
			continue
		}

		key := fmt.Sprintf("offline:lead:%s:%s", actor.UserID, item.TempID)
		claimed, err := f.receipts.SetNX(ctx, key, pendingSyncMarker, utils.OfflineSyncTTL)
		if err != nil {
			log.WithError(err).Warn("offline receipt store unavailable, replaying without dedup")
			claimed = true
		}

		if !claimed {
			result.Status = dto.SyncStatusDuplicate
			if prior, found, _ := f.receipts.Get(ctx, key); found && prior != pendingSyncMarker {
				result.LeadID = utils.ToPtr(prior)
			}
			results = append(results, result)
			continue
		}

		resp, err := f.CreateLeadFromTwitter(ctx, actor, &dto.CreateLeadFromTwitterRequest{
			TwitterURL: item.TwitterURL,
			CategoryID: item.CategoryID,
		}, metadata)
		if err != nil {
			_ = f.receipts.Del(ctx, key)
			result.Status = dto.SyncStatusFailed
			if be, ok := AsBusinessError(err); ok {
				result.Error = be.Message
			} else {
				result.Error = "Internal server error"
				log.WithError(err).WithField("temp_id", item.TempID).Error("offline lead replay failed")
			}
			results = append(results, result)
			continue
		}

		leadID := resp.Lead.ID.String()
		if err := f.receipts.Set(ctx, key, leadID, utils.OfflineSyncTTL); err != nil {
			log.WithError(err).Warn("failed to store offline receipt")
		}
		markWrite(ctx, f.writes, actor, "leads", resp.Lead.ID)
		f.activity.Record(ctx, actor, models.ActivitySyncLead, models.ObjectTypeLead, leadID,
			map[string]any{"temp_id": item.TempID}, metadata)

		result.Status = dto.SyncStatusCreated
		result.LeadID = &leadID
		results = append(results, result)
	}

	return &dto.SyncLeadsResponse{Results: results}, nil
}
