package handler

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/service"
	"github.com/noah-isme/resultboard-api/internal/utils"
)

// HeaderSeedToken carries the shared secret for seeding endpoints.
const HeaderSeedToken = "X-Seed-Token"

// SeedHandler exposes tooling endpoints for loading metadata.
type SeedHandler struct {
	service service.SeedService
	token   string
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler. An empty token disables seeding.
func NewSeedHandler(service service.SeedService, token string, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		token:   token,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/metadata", h.metadata)
}

func (h *SeedHandler) metadata(c *fiber.Ctx) error {
	if h.token == "" {
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	}
	if subtle.ConstantTimeCompare([]byte(c.Get(HeaderSeedToken)), []byte(h.token)) != 1 {
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	}

	var payload dto.MetadataBundle
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	summary, err := h.service.SeedMetadata(c.UserContext(), payload)
	if err != nil {
		if errors.Is(err, service.ErrSeedInvalid) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("seed operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
	}

	return utils.SendSuccess(c, "metadata seeded", summary)
}
