package handlers

import (
	"strconv"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/gofiber/fiber/v3"
)

const generateDataTimeout = 2 * time.Minute

// LeadHandlerInterface defines the contract for lead handlers
type LeadHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	CreateFromTwitter(c fiber.Ctx) error
	Sync(c fiber.Ctx) error
	GenerateData(c fiber.Ctx) error
}

// LeadHandler serves leads, the offline sync endpoint and fake data generation
type LeadHandler struct {
	baseHandler
	flow      businessflow.LeadFlow
	generator businessflow.DataGeneratorFlow
}

func NewLeadHandler(flow businessflow.LeadFlow, generator businessflow.DataGeneratorFlow) *LeadHandler {
	return &LeadHandler{baseHandler: newBaseHandler(), flow: flow, generator: generator}
}

// List returns a page of leads
// @Summary List leads
// @Description Pages are 0-based
// @Tags Leads
// @Produce json
// @Param page query int false "Page (0-based)" default(0)
// @Param limit query int false "Page size (max 100)" default(20)
// @Success 200 {object} dto.ListLeadsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/leads [get]
func (h *LeadHandler) List(c fiber.Ctx) error {
	req := dto.ListLeadsRequest{}
	if v, err := strconv.Atoi(c.Query("page", "0")); err == nil && v > 0 {
		req.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit", "20")); err == nil && v > 0 {
		req.Limit = v
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/leads")
	defer cancel()

	result, err := h.flow.ListLeads(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to fetch leads")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Create adds a lead
// @Summary Create lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body dto.CreateLeadRequest true "Lead"
// @Success 201 {object} dto.LeadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/leads [post]
func (h *LeadHandler) Create(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.CreateLeadRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/leads")
	defer cancel()

	result, err := h.flow.CreateLead(ctx, actor, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to create lead")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, result)
}

// Update moves a lead to another category
// @Summary Update lead
// @Description Only category_id is accepted; null removes the category
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body dto.UpdateLeadRequest true "Update"
// @Success 200 {object} dto.LeadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/leads/{id} [patch]
func (h *LeadHandler) Update(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.UpdateLeadRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/leads/{id}")
	defer cancel()

	result, err := h.flow.UpdateLead(ctx, actor, c.Params("id"), &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to update lead")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Delete removes a lead
// @Summary Delete lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/leads/{id} [delete]
func (h *LeadHandler) Delete(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/leads/{id}")
	defer cancel()

	if err := h.flow.DeleteLead(ctx, actor, c.Params("id"), clientMetadata(c)); err != nil {
		return h.flowError(c, err, "Failed to delete lead")
	}
	return h.SuccessResponse(c, fiber.StatusOK, dto.SuccessResponse{Success: true})
}

// CreateFromTwitter creates a mock lead from a profile URL
// @Summary Create lead from Twitter URL
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body dto.CreateLeadFromTwitterRequest true "Twitter URL"
// @Success 201 {object} dto.LeadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/leads/create-with-twitter [post]
func (h *LeadHandler) CreateFromTwitter(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.CreateLeadFromTwitterRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/leads/create-with-twitter")
	defer cancel()

	result, err := h.flow.CreateLeadFromTwitter(ctx, actor, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to create lead")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, result)
}

// Sync replays queued offline lead creations
// @Summary Sync offline leads
// @Description Items are replayed in order; a replayed temp_id reports the lead created the first time
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body dto.SyncLeadsRequest true "Queued items"
// @Success 200 {object} dto.SyncLeadsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/leads/sync [post]
func (h *LeadHandler) Sync(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.SyncLeadsRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContextWithTimeout(c, "/api/v1/leads/sync", generateDataTimeout)
	defer cancel()

	result, err := h.flow.SyncLeads(ctx, actor, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to sync leads")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// GenerateData inserts fake leads
// @Summary Generate test leads
// @Description Admin only. count defaults to 10, max 1000
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body dto.GenerateDataRequest false "Count"
// @Success 200 {object} dto.GenerateDataResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/generate-data [post]
func (h *LeadHandler) GenerateData(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.GenerateDataRequest
	if len(c.Body()) > 0 {
		if ok, err := h.bindJSON(c, &req); !ok {
			return err
		}
	}

	ctx, cancel := h.createRequestContextWithTimeout(c, "/api/v1/generate-data", generateDataTimeout)
	defer cancel()

	result, err := h.generator.GenerateLeads(ctx, actor, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to generate data")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}
