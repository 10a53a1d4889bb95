package stubapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorPanicRecovered     = "panic recovered in handler"
)

// Ключ Locals с идентификатором пользователя.
const localsUserID = "user_id"

// Коды структурированных ошибок, которые понимает клиент.
const (
	codeInvalidCredentials  = "invalid_credentials"
	codeInvalidToken        = "invalid_token"
	codeInvalidRefreshToken = "invalid_refresh_token"
	codeEmailTaken          = "email_taken"
	codeEmailNotVerified    = "email_not_verified"
	codeInvalidRequest      = "invalid_request"
	codeNotFound            = "not_found"
	codeInternal            = "internal_error"
)

// sendError отправляет структурированный конверт ошибки.
func sendError(ctx fiber.Ctx, status int, code, message string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"error": fiber.Map{"code": code, "message": message},
	})
}

// NewAuthMiddleware создает промежуточное ПО проверки access token.
func NewAuthMiddleware(tokens *TokenService) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := ctx.Get("Authorization")
		if authHeader == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return sendError(ctx, fiber.StatusUnauthorized, codeInvalidToken, ErrorNoAuthHeader)
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return sendError(ctx, fiber.StatusUnauthorized, codeInvalidToken, ErrorInvalidTokenFormat)
		}

		userID, err := tokens.ParseAccessToken(token)
		if err != nil {
			log.Debug(requestCtx, ErrorInvalidTokenFormat, zap.Error(err))
			return sendError(ctx, fiber.StatusUnauthorized, codeInvalidToken, "access token is invalid or expired")
		}

		ctx.Locals(localsUserID, userID)
		return ctx.Next()
	}
}

// NewLoggerMiddleware создает промежуточное ПО логирования запросов.
func NewLoggerMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		start := time.Now()

		log := logger.Log(requestCtx).With(
			zap.String("path", ctx.Path()),
			zap.String("method", ctx.Method()),
		)

		err := ctx.Next()

		log.Info(requestCtx, "request completed",
			zap.Int("status", ctx.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)))
		return err
	}
}

// NewRecoveryMiddleware создает промежуточное ПО восстановления после паник.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				requestCtx := ctx.Context()
				logger.Log(requestCtx).Error(requestCtx, ErrorPanicRecovered, zap.Any("panic", r))
				err = sendError(ctx, fiber.StatusInternalServerError, codeInternal, "internal server error")
			}
		}()
		return ctx.Next()
	}
}
