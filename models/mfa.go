package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	FactorTypeTOTP = "totp"

	FactorStatusUnverified = "unverified"
	FactorStatusVerified   = "verified"
)

// Authenticator assurance levels carried in the aal token claim
const (
	AAL1 = "aal1"
	AAL2 = "aal2"
)

// MFAFactor is a TOTP authenticator enrolled by a user
type MFAFactor struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_mfa_factors_user_id" json:"user_id"`
	FriendlyName       string         `gorm:"size:100;not null;default:''" json:"friendly_name"`
	FactorType         string         `gorm:"size:20;not null;default:'totp'" json:"factor_type"`
	Secret             string         `gorm:"size:128;not null" json:"-"`
	Status             string         `gorm:"size:20;not null;default:'unverified';index:idx_mfa_factors_status" json:"status"`
	RecoveryCodeHashes pq.StringArray `gorm:"type:text[]" json:"-"`
	CreatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MFAFactor) TableName() string { return "mfa_factors" }

func (f *MFAFactor) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (f *MFAFactor) IsVerified() bool {
	return f.Status == FactorStatusVerified
}

// MFAFactorFilter represents filter criteria for factor queries
type MFAFactorFilter struct {
	ID     *uuid.UUID
	UserID *uuid.UUID
	Status *string
}

// MFAChallenge is a short-lived verification attempt against a factor
type MFAChallenge struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FactorID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_mfa_challenges_factor_id" json:"factor_id"`
	Factor     *MFAFactor `gorm:"foreignKey:FactorID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	ExpiresAt  time.Time  `gorm:"not null;index:idx_mfa_challenges_expires_at" json:"expires_at"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (MFAChallenge) TableName() string { return "mfa_challenges" }

func (c *MFAChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsUsable reports whether the challenge is unexpired and not yet consumed
func (c *MFAChallenge) IsUsable(now time.Time) bool {
	return c.VerifiedAt == nil && now.Before(c.ExpiresAt)
}

// MFAChallengeFilter represents filter criteria for challenge queries
type MFAChallengeFilter struct {
	FactorID *uuid.UUID
	UserID   *uuid.UUID
}
