package handlers

import (
	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/middleware"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for session handlers
type AuthHandlerInterface interface {
	Refresh(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
}

// AuthHandler rotates and revokes tokens; sign-in itself happens at the identity provider
type AuthHandler struct {
	baseHandler
	flow businessflow.AuthFlow
}

func NewAuthHandler(flow businessflow.AuthFlow) *AuthHandler {
	return &AuthHandler{baseHandler: newBaseHandler(), flow: flow}
}

// Refresh exchanges a refresh token for a new pair
// @Summary Refresh tokens
// @Description The old refresh token is revoked; the assurance level is preserved
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/refresh")
	defer cancel()

	result, err := h.flow.Refresh(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to refresh token")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Logout revokes the presented access token
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	token, ok := middleware.GetAccessTokenFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/logout")
	defer cancel()

	if err := h.flow.Logout(ctx, token); err != nil {
		return h.flowError(c, err, "Failed to logout")
	}
	return h.SuccessResponse(c, fiber.StatusOK, dto.SuccessResponse{Success: true, Message: "Logged out"})
}
