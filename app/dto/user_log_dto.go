package dto

import (
	"encoding/json"

	"github.com/amirphl/leadboard/models"
)

// ListUserLogsRequest pages are 1-based; dates accept RFC3339 or YYYY-MM-DD
type ListUserLogsRequest struct {
	Page       int
	Limit      int
	Action     string
	ObjectType string
	FromDate   string
	ToDate     string
	UserID     string
}

type ListUserLogsResponse struct {
	Logs        []*models.UserActivityLog `json:"logs"`
	TotalCount  int64                     `json:"totalCount"`
	CurrentPage int                       `json:"currentPage"`
	TotalPages  int                       `json:"totalPages"`
}

type CreateUserLogRequest struct {
	Action     string          `json:"action"`
	ObjectType *string         `json:"objectType" validate:"omitempty,max=50"`
	ObjectID   *string         `json:"objectId" validate:"omitempty,max=255"`
	Metadata   json.RawMessage `json:"metadata"`
}
