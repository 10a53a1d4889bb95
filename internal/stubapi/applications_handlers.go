package stubapi

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerListApps  = "applications handler: list"
	LogHandlerCreateApp = "applications handler: create"
	LogHandlerGetApp    = "applications handler: get"
	LogHandlerMoveApp   = "applications handler: update stage"
	LogHandlerDeleteApp = "applications handler: delete"
	LogHandlerAddNote   = "applications handler: add note"
)

// Стадия воронки по умолчанию для нового отклика.
const defaultStage = "wishlist"

// createApplicationRequest - тело запроса создания отклика.
type createApplicationRequest struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Stage   string `json:"stage"`
	URL     string `json:"url"`
}

// updateStageRequest - тело запроса перемещения отклика.
type updateStageRequest struct {
	Stage string `json:"stage"`
}

// noteRequest - тело запроса создания заметки.
type noteRequest struct {
	Text string `json:"text"`
}

// ApplicationsHandler содержит HTTP обработчики доски откликов.
type ApplicationsHandler struct {
	store *Store
}

// NewApplicationsHandler создает новый обработчик доски откликов.
func NewApplicationsHandler(store *Store) *ApplicationsHandler {
	return &ApplicationsHandler{store: store}
}

// List возвращает отклики текущего пользователя.
func (h *ApplicationsHandler) List(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Info(requestCtx, LogHandlerListApps)

	userID, _ := ctx.Locals(localsUserID).(string)
	apps := h.store.ListApplications(userID)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"applications": apps,
		"total":        len(apps),
	})
}

// Create добавляет отклик. Требует подтвержденного email.
func (h *ApplicationsHandler) Create(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerCreateApp)

	userID, _ := ctx.Locals(localsUserID).(string)
	user, err := h.store.FindUserByID(userID)
	if err != nil {
		return sendError(ctx, fiber.StatusUnauthorized, codeInvalidToken, "user no longer exists")
	}
	if !user.Verified {
		return sendError(ctx, fiber.StatusForbidden, codeEmailNotVerified, "email address is not verified")
	}

	var req createApplicationRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, ErrorInvalidRequest)
	}
	if req.Company == "" || req.Role == "" {
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, "company and role are required")
	}
	if req.Stage == "" {
		req.Stage = defaultStage
	}

	app := h.store.CreateApplication(userID, Application{
		Company: req.Company,
		Role:    req.Role,
		Stage:   req.Stage,
		URL:     req.URL,
	})

	return ctx.Status(fiber.StatusCreated).JSON(app)
}

// Get возвращает отклик по идентификатору.
func (h *ApplicationsHandler) Get(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Info(requestCtx, LogHandlerGetApp)

	userID, _ := ctx.Locals(localsUserID).(string)
	app, err := h.store.GetApplication(userID, ctx.Params("application_id"))
	if err != nil {
		return sendError(ctx, fiber.StatusNotFound, codeNotFound, "application not found")
	}

	return ctx.Status(fiber.StatusOK).JSON(app)
}

// UpdateStage перемещает отклик на другую стадию воронки.
func (h *ApplicationsHandler) UpdateStage(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerMoveApp)

	var req updateStageRequest
	if err := ctx.Bind().JSON(&req); err != nil || req.Stage == "" {
		log.Debug(requestCtx, ErrorInvalidRequest)
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, "stage is required")
	}

	userID, _ := ctx.Locals(localsUserID).(string)
	app, err := h.store.UpdateStage(userID, ctx.Params("application_id"), req.Stage)
	if err != nil {
		return sendError(ctx, fiber.StatusNotFound, codeNotFound, "application not found")
	}

	return ctx.Status(fiber.StatusOK).JSON(app)
}

// Delete удаляет отклик с доски.
func (h *ApplicationsHandler) Delete(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Info(requestCtx, LogHandlerDeleteApp)

	userID, _ := ctx.Locals(localsUserID).(string)
	if err := h.store.DeleteApplication(userID, ctx.Params("application_id")); err != nil {
		return sendError(ctx, fiber.StatusNotFound, codeNotFound, "application not found")
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// AddNote добавляет заметку к отклику.
func (h *ApplicationsHandler) AddNote(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerAddNote)

	var req noteRequest
	if err := ctx.Bind().JSON(&req); err != nil || req.Text == "" {
		log.Debug(requestCtx, ErrorInvalidRequest)
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, "text is required")
	}

	userID, _ := ctx.Locals(localsUserID).(string)
	note, err := h.store.AddNote(userID, ctx.Params("application_id"), req.Text)
	if err != nil {
		return sendError(ctx, fiber.StatusNotFound, codeNotFound, "application not found")
	}

	return ctx.Status(fiber.StatusCreated).JSON(note)
}
