package handlers

import (
	"strconv"

	"github.com/amirphl/leadboard/app/dto"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/gofiber/fiber/v3"
)

// UserLogHandlerInterface defines the contract for activity log handlers
type UserLogHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
}

type UserLogHandler struct {
	baseHandler
	flow businessflow.UserActivityLogFlow
}

func NewUserLogHandler(flow businessflow.UserActivityLogFlow) *UserLogHandler {
	return &UserLogHandler{baseHandler: newBaseHandler(), flow: flow}
}

// List returns the caller's activity log
// @Summary List activity logs
// @Description Scoped to the caller; admins may pass userId. Pages are 1-based.
// @Tags UserLogs
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size (max 100)" default(20)
// @Param action query string false "Action"
// @Param objectType query string false "Object type"
// @Param fromDate query string false "RFC3339 or YYYY-MM-DD"
// @Param toDate query string false "RFC3339 or YYYY-MM-DD (inclusive)"
// @Param userId query string false "Target user (admin only)"
// @Success 200 {object} dto.ListUserLogsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/user-logs [get]
func (h *UserLogHandler) List(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	req := dto.ListUserLogsRequest{
		Page:       1,
		Action:     c.Query("action"),
		ObjectType: c.Query("objectType"),
		FromDate:   c.Query("fromDate"),
		ToDate:     c.Query("toDate"),
		UserID:     c.Query("userId"),
	}
	if v, err := strconv.Atoi(c.Query("page", "1")); err == nil && v > 0 {
		req.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit", "20")); err == nil && v > 0 {
		req.Limit = v
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/user-logs")
	defer cancel()

	result, err := h.flow.ListLogs(ctx, actor, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to fetch activity logs")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Create records a client-side activity
// @Summary Create activity log
// @Tags UserLogs
// @Accept json
// @Produce json
// @Param request body dto.CreateUserLogRequest true "Entry"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/user-logs [post]
func (h *UserLogHandler) Create(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.CreateUserLogRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/user-logs")
	defer cancel()

	if err := h.flow.CreateLog(ctx, actor, &req, clientMetadata(c)); err != nil {
		return h.flowError(c, err, "Failed to create activity log")
	}
	return h.SuccessResponse(c, fiber.StatusOK, dto.SuccessResponse{Success: true})
}
