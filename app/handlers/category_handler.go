package handlers

import (
	"github.com/amirphl/leadboard/app/dto"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CategoryHandlerInterface defines the contract for category handlers
type CategoryHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Chart(c fiber.Ctx) error
}

// CategoryHandler serves categories and the category chart
type CategoryHandler struct {
	baseHandler
	flow businessflow.CategoryFlow
}

func NewCategoryHandler(flow businessflow.CategoryFlow) *CategoryHandler {
	return &CategoryHandler{baseHandler: newBaseHandler(), flow: flow}
}

// List returns every category
// @Summary List categories
// @Tags Categories
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/categories")
	defer cancel()

	result, err := h.flow.ListCategories(ctx)
	if err != nil {
		return h.flowError(c, err, "Failed to fetch categories")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Create adds a category
// @Summary Create category
// @Description Name and a #RRGGBB color are required
// @Tags Categories
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.CreateCategoryRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/categories")
	defer cancel()

	result, err := h.flow.CreateCategory(ctx, actor, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to create category")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, result)
}

// Delete removes a category and detaches its leads and videos
// @Summary Delete category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/categories/{id}")
	defer cancel()

	if err := h.flow.DeleteCategory(ctx, actor, c.Params("id"), clientMetadata(c)); err != nil {
		return h.flowError(c, err, "Failed to delete category")
	}
	return h.SuccessResponse(c, fiber.StatusOK, dto.SuccessResponse{Success: true})
}

// Chart returns lead counts per category
// @Summary Category chart
// @Tags Chart
// @Produce json
// @Success 200 {object} dto.ChartResponse
// @Router /api/v1/chart/categories [get]
func (h *CategoryHandler) Chart(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/chart/categories")
	defer cancel()

	result, err := h.flow.CategoryChart(ctx)
	if err != nil {
		return h.flowError(c, err, "Failed to fetch chart data")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}
