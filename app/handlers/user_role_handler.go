package handlers

import (
	"github.com/amirphl/leadboard/app/dto"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/gofiber/fiber/v3"
)

type UserRoleHandlerInterface interface {
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
}

type UserRoleHandler struct {
	baseHandler
	flow businessflow.UserRoleFlow
}

func NewUserRoleHandler(flow businessflow.UserRoleFlow) *UserRoleHandler {
	return &UserRoleHandler{baseHandler: newBaseHandler(), flow: flow}
}

// Get returns a user's role; users without a row are reported as "user"
// @Summary Get user role
// @Tags UserRoles
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserRoleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/user_roles/{id} [get]
func (h *UserRoleHandler) Get(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/user_roles/{id}")
	defer cancel()

	result, err := h.flow.GetRole(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to fetch user role")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Update sets a user's role
// @Summary Set user role
// @Description Admin with a verified second factor only
// @Tags UserRoles
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserRoleRequest true "Role"
// @Success 200 {object} dto.UserRoleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/user_roles/{id} [put]
func (h *UserRoleHandler) Update(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.UpdateUserRoleRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/user_roles/{id}")
	defer cancel()

	result, err := h.flow.SetRole(ctx, actor, c.Params("id"), &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to update user role")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}
