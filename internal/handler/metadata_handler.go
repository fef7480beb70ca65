package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/resultboard-api/internal/service"
	"github.com/noah-isme/resultboard-api/internal/utils"
)

// MetadataHandler serves the university, batch and degree documents.
type MetadataHandler struct {
	service service.MetadataService
	logger  zerolog.Logger
}

// NewMetadataHandler constructs a metadata handler.
func NewMetadataHandler(service service.MetadataService, logger zerolog.Logger) *MetadataHandler {
	return &MetadataHandler{
		service: service,
		logger:  logger.With().Str("component", "metadata_handler").Logger(),
	}
}

// Register wires metadata routes.
func (h *MetadataHandler) Register(router fiber.Router) {
	router.Get("/universities", h.getUniversity)
	router.Get("/universities/all", h.listUniversities)
	router.Get("/batches/:id/degrees", h.listBatchDegrees)
	router.Get("/degrees/:id", h.getDegree)
}

func (h *MetadataHandler) getUniversity(c *fiber.Ctx) error {
	university, err := h.service.GetUniversity(c.UserContext(), c.Query("id"), c.Query("name"))
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.SendSuccess(c, "university retrieved", university)
}

func (h *MetadataHandler) listUniversities(c *fiber.Ctx) error {
	universities, err := h.service.ListUniversities(c.UserContext())
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.SendSuccess(c, "universities retrieved", universities)
}

func (h *MetadataHandler) listBatchDegrees(c *fiber.Ctx) error {
	groups, err := h.service.ListBatchDegrees(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.SendSuccess(c, "degrees retrieved", groups)
}

func (h *MetadataHandler) getDegree(c *fiber.Ctx) error {
	degree, err := h.service.GetDegree(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.SendSuccess(c, "degree retrieved", degree)
}

func (h *MetadataHandler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidUniversityQuery):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUniversityNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "University not found")
	case errors.Is(err, service.ErrBatchNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Batch not found")
	case errors.Is(err, service.ErrDegreeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Degree not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("metadata lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load metadata")
	}
}
