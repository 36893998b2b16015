package integrity

import (
	"content-porter/core/logger"
	"content-porter/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/identifiers", h.HandleIdentifierCheck)
	group.Get("/store", h.HandleStoreCheck)
	group.Get("/bucket", h.HandleBucketCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all available integrity checks (identifier configuration, store tables, media bucket).
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]interface{})

	problems := h.service.CheckIdentifiers()
	report["identifiers"] = map[string]interface{}{"status": statusOf(len(problems) == 0), "problems": problems}

	if h.service.db == nil {
		report["store"] = map[string]interface{}{"status": "unavailable"}
	} else if missing, err := h.service.CheckStore(); err != nil {
		report["store"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["store"] = map[string]interface{}{"status": statusOf(len(missing) == 0), "missing": missing}
	}

	if h.service.client == nil {
		report["bucket"] = map[string]interface{}{"status": "unavailable"}
	} else if exists, err := h.service.CheckBucket(ctx); err != nil {
		report["bucket"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["bucket"] = map[string]interface{}{"status": statusOf(exists), "exists": exists}
	}

	return c.JSON(report)
}

// HandleIdentifierCheck validates identifier configuration.
// @Summary Check Identifier Configuration
// @Description Lists content types whose configured identifier field is missing, not required, or not unique.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Identifier Report"
// @Router /integrity/identifiers [get]
func (h *Handler) HandleIdentifierCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	problems := h.service.CheckIdentifiers()
	if len(problems) > 0 {
		l.Warn("Identifier misconfigurations detected", zap.Int("count", len(problems)))
	}
	return c.JSON(fiber.Map{
		"status":   statusOf(len(problems) == 0),
		"problems": problems,
	})
}

// HandleStoreCheck verifies the store tables.
// @Summary Check Store Tables
// @Description Verifies that the porter store tables exist and carry the expected columns.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Store Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/store [get]
func (h *Handler) HandleStoreCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	missing, err := h.service.CheckStore()
	if err != nil {
		l.Error("Store check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if len(missing) > 0 {
		l.Warn("Store tables incomplete", zap.Any("missing", missing))
	}
	return c.JSON(fiber.Map{
		"status":  statusOf(len(missing) == 0),
		"missing": missing,
	})
}

// HandleBucketCheck checks and optionally creates the media bucket.
// @Summary Check Media Bucket
// @Description Checks if the media bucket exists. Optionally creates it.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create the bucket when missing"
// @Success 200 {object} map[string]interface{} "Bucket Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/bucket [get]
func (h *Handler) HandleBucketCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := utils.ToBool(c.Query("fix"))

	exists, err := h.service.CheckBucket(c.Context())
	if err != nil {
		l.Error("Bucket check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !exists {
		l.Warn("Media bucket missing", zap.String("bucket", h.service.bucket))

		if fix {
			l.Info("Attempting to create media bucket")
			if err := h.service.FixBucket(c.Context()); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to create bucket",
					"details": err.Error(),
				})
			}
			return c.JSON(fiber.Map{"status": "fixed", "bucket": h.service.bucket})
		}
	}

	return c.JSON(fiber.Map{
		"status": statusOf(exists),
		"exists": exists,
	})
}

func statusOf(ok bool) string {
	if ok {
		return "ok"
	}
	return "problems"
}
