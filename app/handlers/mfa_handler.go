package handlers

import (
	"github.com/amirphl/leadboard/app/dto"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/gofiber/fiber/v3"
)

// MFAHandlerInterface defines the contract for second factor handlers
type MFAHandlerInterface interface {
	Enroll(c fiber.Ctx) error
	Challenge(c fiber.Ctx) error
	Verify(c fiber.Ctx) error
	Recover(c fiber.Ctx) error
	Factors(c fiber.Ctx) error
	Unenroll(c fiber.Ctx) error
	AAL(c fiber.Ctx) error
}

// MFAHandler serves TOTP enrollment and step-up to aal2
type MFAHandler struct {
	baseHandler
	flow businessflow.MFAFlow
}

func NewMFAHandler(flow businessflow.MFAFlow) *MFAHandler {
	return &MFAHandler{baseHandler: newBaseHandler(), flow: flow}
}

// Enroll creates an unverified TOTP factor
// @Summary Enroll TOTP factor
// @Tags MFA
// @Accept json
// @Produce json
// @Param request body dto.EnrollFactorRequest false "Factor name"
// @Success 200 {object} dto.EnrollFactorResponse
// @Router /api/v1/mfa/enroll [post]
func (h *MFAHandler) Enroll(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.EnrollFactorRequest
	if len(c.Body()) > 0 {
		if ok, err := h.bindJSON(c, &req); !ok {
			return err
		}
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/mfa/enroll")
	defer cancel()

	result, err := h.flow.Enroll(ctx, actor, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to enroll factor")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Challenge opens a five minute verification window for a factor
// @Summary Challenge factor
// @Tags MFA
// @Accept json
// @Produce json
// @Param request body dto.ChallengeFactorRequest true "Factor"
// @Success 200 {object} dto.ChallengeFactorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/mfa/challenge [post]
func (h *MFAHandler) Challenge(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.ChallengeFactorRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/mfa/challenge")
	defer cancel()

	result, err := h.flow.Challenge(ctx, actor, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to create challenge")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Verify checks a TOTP code and issues an aal2 token pair
// @Summary Verify factor
// @Description Recovery codes are returned on the first verification only
// @Tags MFA
// @Accept json
// @Produce json
// @Param request body dto.VerifyFactorRequest true "Code"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/mfa/verify [post]
func (h *MFAHandler) Verify(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.VerifyFactorRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/mfa/verify")
	defer cancel()

	result, err := h.flow.Verify(ctx, actor, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to verify factor")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Recover consumes a recovery code in place of a TOTP code
// @Summary Recover with backup code
// @Tags MFA
// @Accept json
// @Produce json
// @Param request body dto.RecoverRequest true "Recovery code"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/mfa/recover [post]
func (h *MFAHandler) Recover(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.RecoverRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/mfa/recover")
	defer cancel()

	result, err := h.flow.Recover(ctx, actor, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to recover")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Factors lists the caller's factors
// @Summary List factors
// @Tags MFA
// @Produce json
// @Success 200 {object} dto.FactorsResponse
// @Router /api/v1/mfa/factors [get]
func (h *MFAHandler) Factors(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/mfa/factors")
	defer cancel()

	result, err := h.flow.ListFactors(ctx, actor)
	if err != nil {
		return h.flowError(c, err, "Failed to fetch factors")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Unenroll removes a factor
// @Summary Remove factor
// @Description Requires an aal2 session
// @Tags MFA
// @Produce json
// @Param id path string true "Factor ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/mfa/factors/{id} [delete]
func (h *MFAHandler) Unenroll(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/mfa/factors/{id}")
	defer cancel()

	if err := h.flow.Unenroll(ctx, actor, c.Params("id"), clientMetadata(c)); err != nil {
		return h.flowError(c, err, "Failed to remove factor")
	}
	return h.SuccessResponse(c, fiber.StatusOK, dto.SuccessResponse{Success: true})
}

// AAL reports the session's assurance level and the next reachable one
// @Summary Assurance level
// @Tags MFA
// @Produce json
// @Success 200 {object} dto.AALResponse
// @Router /api/v1/mfa/aal [get]
func (h *MFAHandler) AAL(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/mfa/aal")
	defer cancel()

	result, err := h.flow.AAL(ctx, actor)
	if err != nil {
		return h.flowError(c, err, "Failed to fetch assurance level")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}
