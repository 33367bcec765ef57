package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video upload status values
const (
	VideoStatusProcessing = "processing"
	VideoStatusCompleted  = "completed"
	VideoStatusFailed     = "failed"
)

// Video is the metadata row paired with an object in the videos bucket.
// Filepath is the object key.
type Video struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"type:text;not null" json:"title"`
	Description  *string    `gorm:"type:text" json:"description"`
	Filename     string     `gorm:"type:text;not null" json:"filename"`
	Filepath     string     `gorm:"type:text;not null;uniqueIndex:uk_videos_filepath" json:"filepath"`
	Filesize     int64      `gorm:"not null" json:"filesize"`
	MimeType     string     `gorm:"type:text;not null" json:"mime_type"`
	ThumbnailURL *string    `gorm:"type:text" json:"thumbnail_url"`
	UploadStatus string     `gorm:"type:text;default:'processing';index:idx_videos_upload_status" json:"upload_status"`
	CategoryID   *uuid.UUID `gorm:"type:uuid;index:idx_videos_category_id" json:"category_id"`
	Category     *Category  `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	CreatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_videos_created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Video) TableName() string { return "videos" }

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.UploadStatus == "" {
		v.UploadStatus = VideoStatusProcessing
	}
	return nil
}

// VideoFilter represents filter criteria for video queries
type VideoFilter struct {
	ID            *uuid.UUID
	CategoryID    *uuid.UUID
	UploadStatus  *string
	CreatedBefore *time.Time
}
