package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserActivityLog is an append-only audit trail entry
type UserActivityLog struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_activity_user_created,priority:1" json:"user_id"`
	Action     string          `gorm:"size:100;not null;index:idx_activity_action" json:"action"`
	ObjectType *string         `gorm:"size:50;index:idx_activity_object_type" json:"object_type"`
	ObjectID   *string         `gorm:"size:255" json:"object_id"`
	Metadata   json.RawMessage `gorm:"type:jsonb" json:"metadata"`
	IPAddress  *string         `gorm:"size:64" json:"ip_address"`
	UserAgent  *string         `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_activity_user_created,priority:2;index:idx_activity_created_at" json:"created_at"`
}

func (UserActivityLog) TableName() string { return "user_activity_logs" }

func (l *UserActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if len(l.Metadata) == 0 {
		l.Metadata = json.RawMessage(`{}`)
	}
	return nil
}

// Activity action constants written by the server
const (
	ActivityCreateLead     = "create_lead"
	ActivityUpdateLead     = "update_lead"
	ActivityDeleteLead     = "delete_lead"
	ActivitySyncLead       = "sync_lead"
	ActivityCreateCategory = "create_category"
	ActivityDeleteCategory = "delete_category"
	ActivityUploadVideo    = "upload_video"
	ActivityUpdateVideo    = "update_video"
	ActivityDeleteVideo    = "delete_video"
	ActivityGenerateData   = "generate_data"
	ActivityMFAEnrolled    = "mfa_enrolled"
	ActivityMFAVerified    = "mfa_verified"
	ActivityMFAUnenrolled  = "mfa_unenrolled"
	ActivityRoleChanged    = "role_changed"
)

// Activity object types
const (
	ObjectTypeLead     = "lead"
	ObjectTypeCategory = "category"
	ObjectTypeVideo    = "video"
	ObjectTypeFactor   = "mfa_factor"
	ObjectTypeUserRole = "user_role"
)

// UserActivityLogFilter represents filter criteria for activity log queries
type UserActivityLogFilter struct {
	UserID        *uuid.UUID
	Action        *string
	ObjectType    *string
	ObjectID      *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
