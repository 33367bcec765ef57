package businessflow

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/amirphl/leadboard/utils"
)

// ActivityRecorder writes server-side activity entries. Failures are logged, never returned.
type ActivityRecorder interface {
	Record(ctx context.Context, actor Actor, action, objectType, objectID string, details map[string]any, metadata *ClientMetadata)
}

// UserActivityLogFlow handles the activity trail endpoints
type UserActivityLogFlow interface {
	ActivityRecorder
	ListLogs(ctx context.Context, actor Actor, req *dto.ListUserLogsRequest) (*dto.ListUserLogsResponse, error)
	CreateLog(ctx context.Context, actor Actor, req *dto.CreateUserLogRequest, metadata *ClientMetadata) error
}

// UserActivityLogFlowImpl implements UserActivityLogFlow
type UserActivityLogFlowImpl struct {
	logRepo repository.UserActivityLogRepository
}

func NewUserActivityLogFlow(logRepo repository.UserActivityLogRepository) UserActivityLogFlow {
	return &UserActivityLogFlowImpl{logRepo: logRepo}
}

func (f *UserActivityLogFlowImpl) ListLogs(ctx context.Context, actor Actor, req *dto.ListUserLogsRequest) (*dto.ListUserLogsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := utils.ClampLimit(req.Limit, utils.DefaultLeadPageSize, utils.MaxPageSize)
	offset, ok := utils.PageOffset(page-1, limit)
	if !ok {
		return nil, validationError("page is out of range")
	}

	filter := models.UserActivityLogFilter{UserID: &actor.UserID}
	if req.UserID != "" && actor.IsAdmin() {
		target, err := utils.ParseUUIDPtr(req.UserID)
		if err != nil {
			return nil, validationError("Invalid userId")
		}
		filter.UserID = target
	}
	if a := strings.TrimSpace(req.Action); a != "" {
		filter.Action = &a
	}
	if ot := strings.TrimSpace(req.ObjectType); ot != "" {
		filter.ObjectType = &ot
	}

	from, err := utils.ParseFilterTime(req.FromDate, false)
	if err != nil {
		return nil, validationError("Invalid fromDate")
	}
	to, err := utils.ParseFilterTime(req.ToDate, true)
	if err != nil {
		return nil, validationError("Invalid toDate")
	}
	filter.CreatedAfter = from
	filter.CreatedBefore = to

	total, err := f.logRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	logs, err := f.logRepo.ByFilter(ctx, filter, "created_at DESC", limit, offset)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*models.UserActivityLog{}
	}

	return &dto.ListUserLogsResponse{
		Logs:        logs,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (f *UserActivityLogFlowImpl) CreateLog(ctx context.Context, actor Actor, req *dto.CreateUserLogRequest, metadata *ClientMetadata) error {
	if strings.TrimSpace(req.Action) == "" {
		return validationError("Action is required")
	}
	if len(req.Metadata) > 0 && !json.Valid(req.Metadata) {
		return validationError("metadata must be valid JSON")
	}

	entry := &models.UserActivityLog{
		UserID:     actor.UserID,
		Action:     strings.TrimSpace(req.Action),
		ObjectType: req.ObjectType,
		ObjectID:   req.ObjectID,
		Metadata:   req.Metadata,
	}
	applyClient(entry, metadata)

	return f.logRepo.Save(ctx, entry)
}

// Record is best-effort; the caller's operation has already succeeded
func (f *UserActivityLogFlowImpl) Record(ctx context.Context, actor Actor, action, objectType, objectID string, details map[string]any, metadata *ClientMetadata) {
	entry := &models.UserActivityLog{
		UserID: actor.UserID,
		Action: action,
	}
	if objectType != "" {
		entry.ObjectType = &objectType
	}
	if objectID != "" {
		entry.ObjectID = &objectID
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err == nil {
			entry.Metadata = raw
		}
	}
	applyClient(entry, metadata)

	if err := f.logRepo.Save(ctx, entry); err != nil {
		requestLogger(ctx, "activity").WithError(err).WithField("action", action).Warn("failed to record activity")
	}
}

func applyClient(entry *models.UserActivityLog, metadata *ClientMetadata) {
	if metadata == nil {
		return
	}
	if metadata.IPAddress != "" {
		entry.IPAddress = &metadata.IPAddress
	}
	if metadata.UserAgent != "" {
		entry.UserAgent = &metadata.UserAgent
	}
}
