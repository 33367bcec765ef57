package handlers

import (
	"context"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/utils"
	"github.com/gofiber/fiber/v3"
)

const healthCheckTimeout = 3 * time.Second

// PingFunc reports whether a dependency is reachable
type PingFunc func(ctx context.Context) error

// HealthHandler reports liveness together with the state of the database and cache
type HealthHandler struct {
	database PingFunc
	cache    PingFunc
	version  string
	service  string
}

// NewHealthHandler accepts a nil cache, reported as "disabled"
func NewHealthHandler(database, cache PingFunc, version, service string) *HealthHandler {
	return &HealthHandler{database: database, cache: cache, version: version, service: service}
}

// Health check endpoint
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /api/v1/health [get]
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	database := probe(ctx, h.database)
	cache := probe(ctx, h.cache)

	status, code, message := "ok", fiber.StatusOK, "Service is healthy"
	if database == "down" {
		status, code, message = "degraded", fiber.StatusServiceUnavailable, "Database is unreachable"
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: code == fiber.StatusOK,
		Message: message,
		Data: fiber.Map{
			"status":    status,
			"timestamp": utils.UTCNow().Unix(),
			"version":   h.version,
			"service":   h.service,
			"database":  database,
			"cache":     cache,
		},
	})
}

func probe(ctx context.Context, ping PingFunc) string {
	if ping == nil {
		return "disabled"
	}
	if err := ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
