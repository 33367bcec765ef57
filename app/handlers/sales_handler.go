package handlers

import (
	"github.com/amirphl/leadboard/app/dto"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/gofiber/fiber/v3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SalesHandlerInterface defines the contract for the sales grid handlers
type SalesHandlerInterface interface {
	List(c fiber.Ctx) error
	Lookups(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	BulkDelete(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

type SalesHandler struct {
	baseHandler
	flow businessflow.SalesFlow
}

func NewSalesHandler(flow businessflow.SalesFlow) *SalesHandler {
	return &SalesHandler{baseHandler: newBaseHandler(), flow: flow}
}

// List returns sales records, newest first
// @Summary List sales records
// @Tags Sales
// @Produce json
// @Param status_id query string false "Filter by sale status"
// @Success 200 {object} dto.SalesRecordsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/sales-records [get]
func (h *SalesHandler) List(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/sales-records")
	defer cancel()

	result, err := h.flow.ListRecords(ctx, &dto.ListSalesRecordsRequest{StatusID: c.Query("status_id")})
	if err != nil {
		return h.flowError(c, err, "Failed to fetch sales records")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Lookups returns the option lists of the sales grid
// @Summary Sales lookups
// @Tags Sales
// @Produce json
// @Success 200 {object} models.SalesLookups
// @Router /api/v1/sales-records/lookups [get]
func (h *SalesHandler) Lookups(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/sales-records/lookups")
	defer cancel()

	result, err := h.flow.Lookups(ctx)
	if err != nil {
		return h.flowError(c, err, "Failed to fetch lookups")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Create adds a sales record
// @Summary Create sales record
// @Tags Sales
// @Accept json
// @Produce json
// @Param request body dto.SalesRecordRequest true "Record"
// @Success 201 {object} dto.SalesRecordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/sales-records [post]
func (h *SalesHandler) Create(c fiber.Ctx) error {
	var req dto.SalesRecordRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/sales-records")
	defer cancel()

	result, err := h.flow.CreateRecord(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to create sales record")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, result)
}

// Update edits the fields present in the body
// @Summary Update sales record
// @Tags Sales
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param request body dto.SalesRecordRequest true "Fields"
// @Success 200 {object} dto.SalesRecordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/sales-records/{id} [patch]
func (h *SalesHandler) Update(c fiber.Ctx) error {
	var req dto.SalesRecordRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/sales-records/{id}")
	defer cancel()

	result, err := h.flow.UpdateRecord(ctx, c.Params("id"), &req)
	if err != nil {
		return h.flowError(c, err, "Failed to update sales record")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Delete removes one sales record
// @Summary Delete sales record
// @Tags Sales
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/sales-records/{id} [delete]
func (h *SalesHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/sales-records/{id}")
	defer cancel()

	if err := h.flow.DeleteRecord(ctx, c.Params("id")); err != nil {
		return h.flowError(c, err, "Failed to delete sales record")
	}
	return h.SuccessResponse(c, fiber.StatusOK, dto.SuccessResponse{Success: true})
}

// BulkDelete removes several sales records at once
// @Summary Bulk delete sales records
// @Tags Sales
// @Accept json
// @Produce json
// @Param request body dto.BulkDeleteRequest true "IDs"
// @Success 200 {object} dto.BulkDeleteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/sales-records/bulk-delete [post]
func (h *SalesHandler) BulkDelete(c fiber.Ctx) error {
	var req dto.BulkDeleteRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/sales-records/bulk-delete")
	defer cancel()

	result, err := h.flow.BulkDelete(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to delete sales records")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Export downloads the (optionally filtered) grid as a workbook
// @Summary Export sales records
// @Tags Sales
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status_id query string false "Filter by sale status"
// @Success 200 {file} file "XLSX workbook"
// @Router /api/v1/sales-records/export [get]
func (h *SalesHandler) Export(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/sales-records/export")
	defer cancel()

	result, err := h.flow.Export(ctx, &dto.ListSalesRecordsRequest{StatusID: c.Query("status_id")})
	if err != nil {
		return h.flowError(c, err, "Failed to export sales records")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)
	return c.Send(result.Content)
}
