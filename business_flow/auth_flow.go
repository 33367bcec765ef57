package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
)

// AuthFlow rotates and revokes provider-issued tokens
type AuthFlow interface {
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenPairResponse, error)
	Logout(ctx context.Context, accessToken string) error
	// IssueToken mints a pair for local development; it is only reachable from the CLI
	IssueToken(ctx context.Context, userID uuid.UUID, role, aal string) (*dto.TokenPairResponse, error)
}

// AuthFlowImpl implements AuthFlow
type AuthFlowImpl struct {
	tokens services.TokenService
}

func NewAuthFlow(tokens services.TokenService) AuthFlow {
	return &AuthFlowImpl{tokens: tokens}
}

func toTokenPairResponse(pair *services.TokenPair) *dto.TokenPairResponse {
	return &dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		TokenType:    pair.TokenType,
	}
}

func (f *AuthFlowImpl) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenPairResponse, error) {
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		return nil, validationError("Refresh token is required")
	}

	pair, err := f.tokens.RefreshToken(ctx, token)
	if err != nil {
		return nil, NewBusinessError(CodeInvalidRefreshToken, "Invalid or expired refresh token", err)
	}
	return toTokenPairResponse(pair), nil
}

func (f *AuthFlowImpl) Logout(ctx context.Context, accessToken string) error {
	if err := f.tokens.RevokeToken(ctx, accessToken); err != nil {
		return NewBusinessError(CodeInvalidRefreshToken, "Invalid token", err)
	}
	return nil
}

func (f *AuthFlowImpl) IssueToken(ctx context.Context, userID uuid.UUID, role, aal string) (*dto.TokenPairResponse, error) {
	if userID == uuid.Nil {
		return nil, validationError("User id is required")
	}
	if !models.IsValidRole(role) {
		return nil, validationError("Role must be admin or user")
	}
	if aal != models.AAL1 && aal != models.AAL2 {
		return nil, validationError("AAL must be aal1 or aal2")
	}

	pair, err := f.tokens.GenerateTokens(ctx, userID, role, aal)
	if err != nil {
		return nil, err
	}
	return toTokenPairResponse(pair), nil
}
