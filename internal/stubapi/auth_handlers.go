package stubapi

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister = "auth handler: register"
	LogHandlerLogin    = "auth handler: login"
	LogHandlerRefresh  = "auth handler: refresh tokens" // #nosec G101 - not a credential
	LogHandlerLogout   = "auth handler: logout"
	LogHandlerVerify   = "auth handler: verify email"
	LogHandlerProfile  = "auth handler: get profile"

	ErrorInvalidRequest = "invalid request"
)

// registerRequest - тело запроса регистрации.
type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginRequest - тело запроса входа.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshTokenRequest - тело запроса обновления токенов.
type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// verifyRequest - тело запроса подтверждения email.
type verifyRequest struct {
	Email string `json:"email"`
}

// AuthHandler содержит HTTP обработчики авторизации.
type AuthHandler struct {
	store  *Store
	tokens *TokenService
}

// NewAuthHandler создает новый обработчик авторизации.
func NewAuthHandler(store *Store, tokens *TokenService) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens}
}

// grant отправляет клиенту пару токенов.
func (h *AuthHandler) grant(ctx fiber.Ctx, status int, user *User, refreshToken string) error {
	accessToken, err := h.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return sendError(ctx, fiber.StatusInternalServerError, codeInternal, "failed to issue access token")
	}

	return ctx.Status(status).JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "Bearer",
		"expires_in":    h.tokens.AccessTTLSeconds(),
	})
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRegister)

	var req registerRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, ErrorInvalidRequest)
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, "email, username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return sendError(ctx, fiber.StatusInternalServerError, codeInternal, "failed to hash password")
	}

	user, err := h.store.CreateUser(req.Email, req.Username, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return sendError(ctx, fiber.StatusConflict, codeEmailTaken, "user with this email already exists")
		}
		return sendError(ctx, fiber.StatusInternalServerError, codeInternal, "failed to create user")
	}

	return h.grant(ctx, fiber.StatusCreated, user, h.store.IssueRefresh(user.ID))
}

// Login обрабатывает запрос на вход пользователя.
func (h *AuthHandler) Login(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogin)

	var req loginRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, ErrorInvalidRequest)
	}

	user, err := h.store.FindUserByEmail(req.Email)
	if err != nil {
		return sendError(ctx, fiber.StatusUnauthorized, codeInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		return sendError(ctx, fiber.StatusUnauthorized, codeInvalidCredentials, "invalid email or password")
	}

	return h.grant(ctx, fiber.StatusOK, user, h.store.IssueRefresh(user.ID))
}

// RefreshTokens обрабатывает запрос на обновление токенов с ротацией
// refresh token.
func (h *AuthHandler) RefreshTokens(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRefresh)

	var req refreshTokenRequest
	if err := ctx.Bind().JSON(&req); err != nil || req.RefreshToken == "" {
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, ErrorInvalidRequest)
	}

	userID, rotated, err := h.store.RotateRefresh(req.RefreshToken)
	if err != nil {
		return sendError(ctx, fiber.StatusUnauthorized, codeInvalidRefreshToken, "refresh token is invalid or revoked")
	}

	user, err := h.store.FindUserByID(userID)
	if err != nil {
		return sendError(ctx, fiber.StatusUnauthorized, codeInvalidRefreshToken, "user no longer exists")
	}

	return h.grant(ctx, fiber.StatusOK, user, rotated)
}

// Logout обрабатывает запрос на выход: отзывает refresh token.
func (h *AuthHandler) Logout(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogout)

	var req refreshTokenRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, ErrorInvalidRequest)
	}

	h.store.RevokeRefresh(req.RefreshToken)
	return ctx.SendStatus(fiber.StatusNoContent)
}

// Verify помечает email пользователя подтвержденным.
func (h *AuthHandler) Verify(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerVerify)

	var req verifyRequest
	if err := ctx.Bind().JSON(&req); err != nil || req.Email == "" {
		return sendError(ctx, fiber.StatusBadRequest, codeInvalidRequest, ErrorInvalidRequest)
	}

	if err := h.store.MarkVerified(req.Email); err != nil {
		return sendError(ctx, fiber.StatusNotFound, codeNotFound, "user not found")
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// GetProfile возвращает профиль текущего пользователя.
func (h *AuthHandler) GetProfile(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerProfile)

	userID, _ := ctx.Locals(localsUserID).(string)
	user, err := h.store.FindUserByID(userID)
	if err != nil {
		return sendError(ctx, fiber.StatusUnauthorized, codeInvalidToken, "user no longer exists")
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"user_id":    user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"verified":   user.Verified,
		"created_at": user.CreatedAt,
	})
}
