package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/service"
	"github.com/noah-isme/resultboard-api/internal/utils"
)

// ContactHandler handles contact submissions.
type ContactHandler struct {
	service service.ContactService
	logger  zerolog.Logger
}

// NewContactHandler constructs a contact handler.
func NewContactHandler(service service.ContactService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		logger:  logger.With().Str("component", "contact_handler").Logger(),
	}
}

// Register wires contact routes.
func (h *ContactHandler) Register(router fiber.Router, middlewares ...fiber.Handler) {
	router.Post("/contact", withMiddlewares(middlewares, h.submit)...)
}

func (h *ContactHandler) submit(c *fiber.Ctx) error {
	var payload dto.ContactRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if payload.Honeypot != "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	payload.IPAddress = c.IP()

	response, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			details := validationDetails(err)
			return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, contactRejection(details), details)
		case errors.Is(err, service.ErrContactIncomplete):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to process contact submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit contact form")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, response.Message, response)
}

// contactRejection picks the message shown next to the form for the first
// rule a submission broke.
func contactRejection(details map[string]string) string {
	for _, rule := range details {
		if rule == "required" {
			return service.ErrContactIncomplete.Error()
		}
	}
	if details["email"] == "email" {
		return "please provide a valid email address"
	}
	return "invalid payload"
}
