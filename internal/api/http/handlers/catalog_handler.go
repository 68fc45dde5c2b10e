package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-gateway/internal/config"
	"github.com/spec-kit/helpdesk-gateway/internal/service"
)

// CatalogHandler exposes the upstream reference listings.
type CatalogHandler struct {
	catalog  *service.CatalogService
	features config.FeatureConfig
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService, features config.FeatureConfig) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, features: features}
}

// ListProjects GET /api/projects. Returns the shaped hierarchy when the
// deployment enables shaping; ?shaped=true|false overrides per request.
func (h *CatalogHandler) ListProjects(c *fiber.Ctx) error {
	includeDescendants := c.Query("include") == "descendants"

	shaped := h.features.ShapeProjectHierarchy
	if val := c.Query("shaped"); val != "" {
		shaped = val == "true"
	}

	if shaped {
		hierarchy, err := h.catalog.ShapedProjects(c.UserContext(), includeDescendants)
		if err != nil {
			return err
		}
		return c.JSON(hierarchy)
	}

	raw, err := h.catalog.ListProjects(c.UserContext(), includeDescendants)
	if err != nil {
		return err
	}
	return rawJSON(c, raw)
}

// ListTrackers GET /api/trackers.
func (h *CatalogHandler) ListTrackers(c *fiber.Ctx) error {
	raw, err := h.catalog.ListTrackers(c.UserContext())
	if err != nil {
		return err
	}
	return rawJSON(c, raw)
}

// ListPriorities GET /api/priorities.
func (h *CatalogHandler) ListPriorities(c *fiber.Ctx) error {
	raw, err := h.catalog.ListPriorities(c.UserContext())
	if err != nil {
		return err
	}
	return rawJSON(c, raw)
}

// rawJSON re-emits an upstream body verbatim without re-encoding it.
func rawJSON(c *fiber.Ctx, raw []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}
