package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatLocation is where a sale conversation happened
type ChatLocation struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"size:100;not null;uniqueIndex:uk_chat_locations_name" json:"name"`
}

func (ChatLocation) TableName() string { return "chat_locations" }

func (l *ChatLocation) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// SaleStatus is the pipeline stage of a sale
type SaleStatus struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"size:100;not null;uniqueIndex:uk_sale_statuses_name" json:"name"`
}

func (SaleStatus) TableName() string { return "sale_statuses" }

func (l *SaleStatus) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LeadSource is the channel a sale originated from
type LeadSource struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"size:100;not null;uniqueIndex:uk_lead_sources_name" json:"name"`
}

func (LeadSource) TableName() string { return "lead_sources" }

func (l *LeadSource) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Designer is the person assigned to a sale
type Designer struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"size:100;not null;uniqueIndex:uk_designers_name" json:"name"`
}

func (Designer) TableName() string { return "designers" }

func (l *Designer) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// SalesLookups bundles every lookup table for the sales grid
type SalesLookups struct {
	ChatLocations []*ChatLocation `json:"chat_locations"`
	SaleStatuses  []*SaleStatus   `json:"sale_statuses"`
	LeadSources   []*LeadSource   `json:"lead_sources"`
	Designers     []*Designer     `json:"designers"`
}

// Default lookup seeds applied by the migrate command
var (
	DefaultChatLocations = []string{"Twitter DM", "Telegram", "Discord", "Email"}
	DefaultSaleStatuses  = []string{"Lead", "Negotiating", "Closed Won", "Closed Lost"}
	DefaultLeadSources   = []string{"Outbound", "Inbound", "Referral"}
)
