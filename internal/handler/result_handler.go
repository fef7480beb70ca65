package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/result"
	"github.com/noah-isme/resultboard-api/internal/service"
	"github.com/noah-isme/resultboard-api/internal/utils"
)

// ResultHandler exposes ranked rosters and student histories.
type ResultHandler struct {
	service service.ResultService
	logger  zerolog.Logger
}

// NewResultHandler constructs a result handler.
func NewResultHandler(service service.ResultService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("component", "result_handler").Logger(),
	}
}

// Register wires result routes. Middlewares, such as a rate limiter, run
// before each result route only.
func (h *ResultHandler) Register(router fiber.Router, middlewares ...fiber.Handler) {
	router.Post("/results", withMiddlewares(middlewares, h.fetchResult)...)
	router.Get("/students/:roll/results", withMiddlewares(middlewares, h.studentHistory)...)
}

func (h *ResultHandler) fetchResult(c *fiber.Ctx) error {
	var payload dto.ResultRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.FetchResult(c.UserContext(), payload)
	if err != nil {
		return h.writeError(c, err)
	}

	return utils.SendSuccess(c, "result ranked", response)
}

func (h *ResultHandler) studentHistory(c *fiber.Ctx) error {
	response, err := h.service.FetchStudentHistory(c.UserContext(), c.Params("roll"))
	if err != nil {
		return h.writeError(c, err)
	}

	return utils.SendSuccess(c, "student results retrieved", response)
}

func (h *ResultHandler) writeError(c *fiber.Ctx, err error) error {
	status, message := resultErrorStatus(err)
	if status == fiber.StatusBadRequest && isValidationError(err) {
		return utils.SendErrorWithDetails(c, status, message, validationDetails(err))
	}

	logger := requestLogger(h.logger, c)
	if status >= fiber.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("result request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("result request rejected")
	}

	return utils.SendError(c, status, message)
}

// resultErrorStatus maps result engine failures onto HTTP statuses. External
// fetch failures keep the collaborator's message.
func resultErrorStatus(err error) (int, string) {
	var fetchErr *service.FetchError
	switch {
	case isValidationError(err):
		return fiber.StatusBadRequest, "invalid payload"
	case errors.Is(err, result.ErrInvalidRollNumber):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDegreeNotFound):
		return fiber.StatusNotFound, "degree not found"
	case errors.Is(err, result.ErrStudentNotFound):
		return fiber.StatusNotFound, "student not found"
	case errors.Is(err, service.ErrNoSemesterResults):
		return fiber.StatusNotFound, "semester results not found"
	case errors.Is(err, service.ErrSemesterResultNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, result.ErrEmptyDataset):
		return fiber.StatusUnprocessableEntity, "No Data Found"
	case errors.Is(err, result.ErrMissingColumn),
		errors.Is(err, result.ErrMalformedResultFile),
		errors.Is(err, service.ErrResultFileFormat):
		return fiber.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &fetchErr):
		return fiber.StatusBadGateway, fetchErr.Error()
	default:
		return fiber.StatusInternalServerError, "failed to fetch result"
	}
}
