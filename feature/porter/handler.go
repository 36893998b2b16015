package porter

import (
	"errors"
	"strings"

	"content-porter/core/export"
	"content-porter/core/importer"
	"content-porter/core/logger"
	"content-porter/core/schema"
	"content-porter/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for content export and import.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the porter routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/export", h.HandleExport)
	app.Post("/import", h.HandleImport)
	app.Get("/import/progress", h.HandleImportProgress)
	app.Post("/import/plan", h.HandleImportPlan)
}

// exportRequest is the body of an export call. A missing body falls back to
// query parameters.
type exportRequest struct {
	ContentType                    string   `json:"contentType"`
	DocumentIDs                    []string `json:"documentIds"`
	FilterField                    string   `json:"filterField"`
	FilterValue                    any      `json:"filterValue"`
	Sort                           string   `json:"sort"`
	Depth                          int      `json:"depth"`
	ExportAllLocales               bool     `json:"exportAllLocales"`
	ExportRelations                bool     `json:"exportRelations"`
	DeepPopulateRelations          bool     `json:"deepPopulateRelations"`
	DeepPopulateComponentRelations bool     `json:"deepPopulateComponentRelations"`
}

// HandleExport produces an interchange document.
// @Summary Export Content
// @Description Export content records (and optionally their relation graph) as a portable interchange document.
// @Tags porter
// @Accept json
// @Produce json
// @Param request body exportRequest false "Export options"
// @Success 200 {object} document.Document "Interchange document"
// @Failure 400 {object} map[string]string "Invalid options"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /export [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req exportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	} else {
		req.ContentType = c.Query("contentType")
		if ids := c.Query("documentIds"); ids != "" {
			req.DocumentIDs = strings.Split(ids, ",")
		}
		req.FilterField = c.Query("filterField")
		if v := c.Query("filterValue"); v != "" {
			req.FilterValue = v
		}
		req.Sort = c.Query("sort")
		req.Depth = utils.ToInt(c.Query("depth"))
		req.ExportAllLocales = utils.ToBool(c.Query("exportAllLocales"))
		req.ExportRelations = utils.ToBool(c.Query("exportRelations"))
		req.DeepPopulateRelations = utils.ToBool(c.Query("deepPopulateRelations"))
		req.DeepPopulateComponentRelations = utils.ToBool(c.Query("deepPopulateComponentRelations"))
	}

	doc, err := h.service.Export(c.Context(), export.Options{
		ContentType:                    req.ContentType,
		DocumentIDs:                    req.DocumentIDs,
		FilterField:                    req.FilterField,
		FilterValue:                    req.FilterValue,
		Sort:                           req.Sort,
		Depth:                          req.Depth,
		ExportAllLocales:               req.ExportAllLocales,
		ExportRelations:                req.ExportRelations,
		DeepPopulateRelations:          req.DeepPopulateRelations,
		DeepPopulateComponentRelations: req.DeepPopulateComponentRelations,
	})
	if err != nil {
		if schema.IsConfigurationError(err) {
			l.Warn("Export rejected", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(doc)
}

// importOptions reads import options from query parameters; the request
// body is the interchange document itself.
func importOptions(c *fiber.Ctx) importer.Options {
	return importer.Options{
		ContentType:            c.Query("contentType"),
		Format:                 c.Query("format"),
		ExistingAction:         importer.ExistingAction(c.Query("existingAction")),
		IgnoreMissingRelations: utils.ToBool(c.Query("ignoreMissingRelations")),
		AllowLocaleUpdates:     utils.ToBool(c.Query("allowLocaleUpdates")),
		DisallowNewRelations:   utils.ToBool(c.Query("disallowNewRelations")),
	}
}

// HandleImport imports the posted document. By default the run is
// synchronous and the response is the full result; with ?background=true the
// run is handed to the background runner and progress is polled separately.
// @Summary Import Content
// @Description Import an interchange document. With background=true the run happens asynchronously; only one background import runs at a time.
// @Tags porter
// @Accept json
// @Produce json
// @Param existingAction query string false "Policy for existing records (warn, update, skip)"
// @Param ignoreMissingRelations query boolean false "Null unresolvable relations instead of failing the record"
// @Param background query boolean false "Run the import in the background"
// @Success 200 {object} importer.Result "Import result"
// @Success 202 {object} map[string]string "Background import accepted"
// @Failure 400 {object} map[string]string "Invalid payload"
// @Failure 409 {object} map[string]string "An import is already running"
// @Router /import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if !utils.ToBool(c.Query("background")) {
		result, err := h.service.Import(c.Context(), c.Body(), importOptions(c))
		if err != nil {
			l.Error("Import failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if len(result.Errors) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(result)
		}
		return c.JSON(result)
	}

	raw := make([]byte, len(c.Body()))
	copy(raw, c.Body())

	_, err := h.service.StartImport(raw, importOptions(c))
	if err != nil {
		if errors.Is(err, importer.ErrImportInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Import start failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Import started", zap.Int("bytes", len(raw)))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "started"})
}

// HandleImportProgress reports the state of the active or last import.
// @Summary Import Progress
// @Description Poll the phase, percentage and final result of the current or most recent import run.
// @Tags porter
// @Produce json
// @Success 200 {object} importer.Update "Latest progress update"
// @Failure 404 {object} map[string]string "No import has run yet"
// @Router /import/progress [get]
func (h *Handler) HandleImportProgress(c *fiber.Ctx) error {
	update, ok := h.service.Progress()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no import has run yet"})
	}
	return c.JSON(update)
}

// HandleImportPlan reconciles a document against the store without writing.
// @Summary Plan Import
// @Description Dry-run an interchange document against the store and report the creates, updates and skips it would perform.
// @Tags porter
// @Accept json
// @Produce json
// @Param existingAction query string false "Policy for existing records (warn, update, skip)"
// @Success 200 {object} importer.Result "Reconciliation plan"
// @Failure 400 {object} map[string]string "Invalid payload"
// @Router /import/plan [post]
func (h *Handler) HandleImportPlan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	result, err := h.service.Plan(c.Context(), c.Body(), importOptions(c))
	if err != nil {
		l.Error("Plan failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if len(result.Errors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}
	return c.JSON(result)
}
