// Package models contains domain entities persisted by gorm
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a colored tag attachable to leads and videos
// Table: categories
// Color is a #RRGGBB hex string
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null;index:idx_categories_name" json:"name"`
	Color     string    `gorm:"size:7;not null" json:"color"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CategoryFilter represents filter criteria for category queries
type CategoryFilter struct {
	ID   *uuid.UUID
	Name *string
}

// CategoryLeadCount is a per-category aggregate. A nil CategoryID groups uncategorized leads.
type CategoryLeadCount struct {
	CategoryID *uuid.UUID
	Name       *string
	Color      *string
	Count      int64
}
