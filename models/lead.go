package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is a tracked social-media account
type Lead struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	CategoryID      *uuid.UUID `gorm:"type:uuid;index:idx_leads_category_id" json:"category_id"`
	Category        *Category  `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	TwitterHandle   string     `gorm:"size:255;not null;index:idx_leads_twitter_handle" json:"twitter_handle"`
	ProfileImageURL *string    `gorm:"type:text" json:"profile_image_url"`
	FollowerCount   int        `gorm:"default:0" json:"follower_count"`
	LastPostDate    *time.Time `json:"last_post_date"`
	IsVerified      *bool      `gorm:"default:false" json:"is_verified"`
	IsBlueVerified  *bool      `gorm:"default:false" json:"is_blue_verified"`
	CreatedAt       time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_leads_created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LeadFilter represents filter criteria for lead queries
type LeadFilter struct {
	ID            *uuid.UUID
	CategoryID    *uuid.UUID
	TwitterHandle *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
