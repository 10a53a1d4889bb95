package stubapi

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRouter настраивает маршрутизацию заглушки backend.
func SetupRouter(app *fiber.App, store *Store, tokens *TokenService) {
	authHandler := NewAuthHandler(store, tokens)
	appsHandler := NewApplicationsHandler(store)

	// Middleware для всех запросов.
	app.Use(NewLoggerMiddleware())
	app.Use(NewRecoveryMiddleware())

	apiV1 := app.Group("/api/v1")

	// Auth routes (публичные).
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshTokens)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Post("/verify", authHandler.Verify)

	// Защищенные маршруты.
	userRoutes := apiV1.Group("/user")
	userRoutes.Use(NewAuthMiddleware(tokens))
	userRoutes.Get("/profile", authHandler.GetProfile)

	appsRoutes := apiV1.Group("/applications")
	appsRoutes.Use(NewAuthMiddleware(tokens))
	appsRoutes.Get("/", appsHandler.List)
	appsRoutes.Post("/", appsHandler.Create)
	appsRoutes.Get("/:application_id", appsHandler.Get)
	appsRoutes.Patch("/:application_id", appsHandler.UpdateStage)
	appsRoutes.Delete("/:application_id", appsHandler.Delete)
	appsRoutes.Post("/:application_id/notes", appsHandler.AddNote)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return sendError(c, fiber.StatusNotFound, codeNotFound, "route not found")
	})
}
