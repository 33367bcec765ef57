package dto

import (
	"time"

	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
)

// RoleDTO is a user's role; ID and CreatedAt are null for the implicit default
type RoleDTO struct {
	ID        *uuid.UUID `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"created_at"`
}

type UserRoleResponse struct {
	Role RoleDTO `json:"role"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenPairResponse struct {
	AccessToken   string   `json:"access_token"`
	RefreshToken  string   `json:"refresh_token"`
	ExpiresIn     int64    `json:"expires_in"`
	TokenType     string   `json:"token_type"`
	RecoveryCodes []string `json:"recovery_codes,omitempty"`
}

type EnrollFactorRequest struct {
	FriendlyName string `json:"friendly_name" validate:"omitempty,max=100"`
}

type TOTPDetails struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

type EnrollFactorResponse struct {
	FactorID uuid.UUID   `json:"factor_id"`
	Type     string      `json:"type"`
	TOTP     TOTPDetails `json:"totp"`
}

type ChallengeFactorRequest struct {
	FactorID string `json:"factor_id" validate:"required,uuid"`
}

type ChallengeFactorResponse struct {
	ChallengeID uuid.UUID `json:"challenge_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type VerifyFactorRequest struct {
	FactorID    string `json:"factor_id" validate:"required,uuid"`
	ChallengeID string `json:"challenge_id" validate:"required,uuid"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
}

type RecoverRequest struct {
	Code string `json:"code" validate:"required"`
}

type FactorsResponse struct {
	Factors []*models.MFAFactor `json:"factors"`
}

type AALResponse struct {
	CurrentLevel string `json:"currentLevel"`
	NextLevel    string `json:"nextLevel"`
}
