package handlers

import (
	"context"
	"io"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/gofiber/fiber/v3"
)

const videoTransferTimeout = 10 * time.Minute

// VideoHandlerInterface defines the contract for video handlers
type VideoHandlerInterface interface {
	List(c fiber.Ctx) error
	Upload(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Setup(c fiber.Ctx) error
	Download(c fiber.Ctx) error
}

// VideoHandler serves the video library backed by object storage
type VideoHandler struct {
	baseHandler
	flow businessflow.VideoFlow
}

func NewVideoHandler(flow businessflow.VideoFlow) *VideoHandler {
	return &VideoHandler{baseHandler: newBaseHandler(), flow: flow}
}

// List returns all videos with their public URLs
// @Summary List videos
// @Tags Videos
// @Produce json
// @Success 200 {object} dto.ListVideosResponse
// @Failure 404 {object} dto.MissingBucketResponse "Bucket missing"
// @Router /api/v1/videos [get]
func (h *VideoHandler) List(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/videos")
	defer cancel()

	result, err := h.flow.ListVideos(ctx)
	if err != nil {
		if businessflow.IsBucketNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(dto.MissingBucketResponse{
				Error:  "Storage bucket not found",
				Code:   businessflow.CodeBucketNotFound,
				Videos: []dto.VideoWithURL{},
			})
		}
		return h.flowError(c, err, "Failed to fetch videos")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Upload stores a video file and creates its row
// @Summary Upload video
// @Description Video files only, at most 100MB
// @Tags Videos
// @Accept mpfd
// @Produce json
// @Param file formData file true "Video file"
// @Param title formData string false "Title (defaults to the file name)"
// @Param description formData string false "Description"
// @Param category_id formData string false "Category ID"
// @Success 201 {object} dto.VideoResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Bucket missing"
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/videos [post]
func (h *VideoHandler) Upload(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "No file provided", businessflow.CodeValidation, nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid file", businessflow.CodeValidation, nil)
	}
	defer file.Close()

	req := dto.UploadVideoRequest{
		Content:     file,
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		CategoryID:  c.FormValue("category_id"),
	}

	ctx, cancel := h.createRequestContextWithTimeout(c, "/api/v1/videos", videoTransferTimeout)
	defer cancel()

	result, err := h.flow.UploadVideo(ctx, actor, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to upload video")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, result)
}

// Update edits a video's title, description or category
// @Summary Update video
// @Tags Videos
// @Accept json
// @Produce json
// @Param id path string true "Video ID"
// @Param request body dto.UpdateVideoRequest true "Fields"
// @Success 200 {object} dto.VideoResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/videos/{id} [patch]
func (h *VideoHandler) Update(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	var req dto.UpdateVideoRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/videos/{id}")
	defer cancel()

	result, err := h.flow.UpdateVideo(ctx, actor, c.Params("id"), &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to update video")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Delete removes a video, its object and its thumbnail
// @Summary Delete video
// @Tags Videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/videos/{id} [delete]
func (h *VideoHandler) Delete(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/videos/{id}")
	defer cancel()

	if err := h.flow.DeleteVideo(ctx, actor, c.Params("id"), clientMetadata(c)); err != nil {
		return h.flowError(c, err, "Failed to delete video")
	}
	return h.SuccessResponse(c, fiber.StatusOK, dto.SuccessResponse{Success: true})
}

// Setup creates the videos bucket with a public read policy
// @Summary Set up video bucket
// @Description Admin only
// @Tags Videos
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/videos/setup [get]
func (h *VideoHandler) Setup(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/videos/setup")
	defer cancel()

	result, err := h.flow.SetupBucket(ctx)
	if err != nil {
		return h.flowError(c, err, "Failed to set up storage bucket")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result)
}

// Download streams a stored object as an attachment
// @Summary Download video
// @Tags Videos
// @Produce application/octet-stream
// @Param path query string true "Object path"
// @Param filename query string false "Attachment name" default(video.mp4)
// @Success 200 {string} string "Binary file"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/videos/download [get]
func (h *VideoHandler) Download(c fiber.Ctx) error {
	req := dto.DownloadVideoRequest{
		Path:     c.Query("path"),
		Filename: c.Query("filename"),
	}

	// the body is read after the handler returns, so cancel only once it is closed
	ctx, cancel := h.createRequestContextWithTimeout(c, "/api/v1/videos/download", videoTransferTimeout)

	result, err := h.flow.DownloadVideo(ctx, &req)
	if err != nil {
		cancel()
		return h.flowError(c, err, "Failed to download file")
	}

	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)

	size := -1
	if result.Size > 0 {
		size = int(result.Size)
	}
	return c.SendStream(&cancelOnClose{ReadCloser: result.Body, cancel: cancel}, size)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelOnClose) Close() error {
	defer r.cancel()
	return r.ReadCloser.Close()
}
