package catalog

import (
	"errors"
	"strconv"

	"asset-catalog/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the asset catalogs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog/:kind")
	group.Post("/assets", h.HandleLoad)
	group.Get("/assets/:id", h.HandleGet)
	group.Delete("/assets/:id", h.HandleFree)
	group.Delete("/tags/:tag", h.HandleFreeTag)
	group.Get("/stats", h.HandleStats)
}

// HandleLoad registers an asset path and returns its id.
func (h *Handler) HandleLoad(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req LoadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "path is required"})
	}

	id, err := h.service.Load(c.UserContext(), c.Params("kind"), req)
	if err != nil {
		l.Error("Load failed", zap.String("path", req.Path), zap.Error(err))
		return h.fail(c, err)
	}

	l.Debug("Asset registered", zap.String("path", req.Path), zap.Uint64("id", id))
	return c.JSON(fiber.Map{"id": id})
}

// HandleGet returns the decoded payload of an asset.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	asset, err := h.service.Get(c.UserContext(), c.Params("kind"), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(asset)
}

// HandleFree releases one asset.
func (h *Handler) HandleFree(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	freed, err := h.service.Free(c.UserContext(), c.Params("kind"), id)
	if err != nil {
		return h.fail(c, err)
	}
	if !freed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"freed": false})
	}
	return c.JSON(fiber.Map{"freed": true})
}

// HandleFreeTag releases every asset carrying a tag.
func (h *Handler) HandleFreeTag(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	tag := c.Params("tag")

	n, err := h.service.FreeTag(c.UserContext(), c.Params("kind"), tag)
	if err != nil {
		return h.fail(c, err)
	}

	l.Info("Freed tagged assets", zap.String("tag", tag), zap.Int("freed", n))
	return c.JSON(fiber.Map{"freed": n})
}

// HandleStats reports catalog occupancy.
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	st, err := h.service.Stats(c.UserContext(), c.Params("kind"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(st)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrNotLoadable):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrStopped):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func parseID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid asset id")
	}
	return id, nil
}
