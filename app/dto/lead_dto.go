package dto

import (
	"time"

	"github.com/amirphl/leadboard/models"
)

// ListLeadsRequest pages are 0-based
type ListLeadsRequest struct {
	Page  int
	Limit int
}

type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type Pagination struct {
	Page         int   `json:"page"`
	TotalCount   int64 `json:"totalCount"`
	HasMore      bool  `json:"hasMore"`
	CurrentRange Range `json:"currentRange"`
}

type ListLeadsResponse struct {
	Leads      []*models.Lead `json:"leads"`
	Pagination Pagination     `json:"pagination"`
}

type CreateLeadRequest struct {
	Name            string     `json:"name"`
	TwitterHandle   string     `json:"twitter_handle"`
	ProfileImageURL *string    `json:"profile_image_url"`
	FollowerCount   *int       `json:"follower_count" validate:"omitempty,gte=0"`
	LastPostDate    *time.Time `json:"last_post_date"`
	IsVerified      *bool      `json:"is_verified"`
	IsBlueVerified  *bool      `json:"is_blue_verified"`
	CategoryID      *string    `json:"category_id"`
}

// UpdateLeadRequest only moves a lead between categories; an explicit null uncategorizes it
type UpdateLeadRequest struct {
	CategoryID Optional[string] `json:"category_id"`
}

type LeadResponse struct {
	Lead *models.Lead `json:"lead"`
}

type CreateLeadFromTwitterRequest struct {
	TwitterURL string  `json:"twitter_url"`
	CategoryID *string `json:"category_id"`
}

// Offline sync statuses
const (
	SyncStatusCreated   = "created"
	SyncStatusDuplicate = "duplicate"
	SyncStatusFailed    = "failed"
)

type SyncLeadItem struct {
	TempID     string  `json:"temp_id"`
	TwitterURL string  `json:"twitter_url"`
	CategoryID *string `json:"category_id"`
}

type SyncLeadsRequest struct {
	Items []SyncLeadItem `json:"items" validate:"required,max=100,dive"`
}

type SyncLeadResult struct {
	TempID string  `json:"temp_id"`
	Status string  `json:"status"`
	LeadID *string `json:"lead_id,omitempty"`
	Error  string  `json:"error,omitempty"`
}

type SyncLeadsResponse struct {
	Results []SyncLeadResult `json:"results"`
}

type GenerateDataRequest struct {
	Count *int `json:"count"`
}

type GenerateDataResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}
