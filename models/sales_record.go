package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesRecord is a row of the sales grid
// EstEarnings is derived; see RecomputeEarnings
type SalesRecord struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Client         string        `gorm:"size:255;not null;default:''" json:"client"`
	ChatLocationID *uuid.UUID    `gorm:"type:uuid" json:"chat_location_id"`
	ChatLocation   *ChatLocation `gorm:"foreignKey:ChatLocationID;references:ID;constraint:OnDelete:SET NULL" json:"chat_location,omitempty"`
	SaleStatusID   *uuid.UUID    `gorm:"type:uuid;index:idx_sales_records_sale_status_id" json:"sale_status_id"`
	SaleStatus     *SaleStatus   `gorm:"foreignKey:SaleStatusID;references:ID;constraint:OnDelete:SET NULL" json:"sale_status,omitempty"`
	LeadSourceID   *uuid.UUID    `gorm:"type:uuid" json:"lead_source_id"`
	LeadSource     *LeadSource   `gorm:"foreignKey:LeadSourceID;references:ID;constraint:OnDelete:SET NULL" json:"lead_source,omitempty"`
	DesignerID     *uuid.UUID    `gorm:"type:uuid" json:"designer_id"`
	Designer       *Designer     `gorm:"foreignKey:DesignerID;references:ID;constraint:OnDelete:SET NULL" json:"designer,omitempty"`
	Product        string        `gorm:"size:255;not null;default:''" json:"product"`
	EstDealValue   *float64      `gorm:"type:numeric(14,2)" json:"est_deal_value"`
	EstPayout      *float64      `gorm:"type:numeric(14,2)" json:"est_payout"`
	EstEarnings    *float64      `gorm:"type:numeric(14,2)" json:"est_earnings"`
	CreatedAt      time.Time     `gorm:"default:CURRENT_TIMESTAMP;index:idx_sales_records_created_at" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SalesRecord) TableName() string { return "sales_records" }

func (s *SalesRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// RecomputeEarnings sets EstEarnings to deal value minus payout, or nil when either is unknown
func (s *SalesRecord) RecomputeEarnings() {
	if s.EstDealValue == nil || s.EstPayout == nil {
		s.EstEarnings = nil
		return
	}
	earnings := *s.EstDealValue - *s.EstPayout
	s.EstEarnings = &earnings
}

// SalesRecordFilter represents filter criteria for sales record queries
type SalesRecordFilter struct {
	IDs          []uuid.UUID
	SaleStatusID *uuid.UUID
}
