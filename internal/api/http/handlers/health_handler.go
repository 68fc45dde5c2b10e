package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-gateway/internal/api/dto"
)

// HealthHandler responds to liveness probes. The gateway has no hard local
// dependencies: the upstream is only reachable per-request, so health is
// process liveness.
type HealthHandler struct {
	serviceName string
	version     string
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version}
}

// Status GET /health.
func (h *HealthHandler) Status(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:  "ok",
		Message: "helpdesk gateway running",
		Service: h.serviceName,
		Version: h.version,
	})
}
