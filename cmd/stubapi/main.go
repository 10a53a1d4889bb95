package main

import (
	"context"
	"os"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"jobtrack/internal/stubapi"
	"jobtrack/pkg/logger"
	"jobtrack/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "STUBAPI_LOGGER_MODE"
	EnvLoggerLevel = "STUBAPI_LOGGER_LEVEL"
)

// Константы для сообщений.
const (
	ErrInitLogger      = "failed to initialize logger"
	ErrLoadConfig      = "failed to load configuration"
	ErrStartHTTPServer = "failed to start HTTP server"

	LogServiceStarted      = "stub API started"
	LogServiceShutdownDone = "stub API shutdown complete"
	LogStoppingHTTP        = "stopping HTTP server"
)

func main() {
	// Файл .env не обязателен.
	_ = godotenv.Load()

	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}
	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() { _ = log.Sync() }()

		cfg, err := stubapi.LoadConfig(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		// Переинициализация логгера согласно загруженной конфигурации.
		configured, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLogger, zap.Error(err))
			exitCode = 1
			return
		}
		log = configured
		logger.SetGlobalLogger(log)

		figure.NewFigure("jobtrack stub", "", true).Print()

		store := stubapi.NewStore(cfg.Auth.RefreshTTL)
		tokens := stubapi.NewTokenService(&cfg.Auth)

		app := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		})
		stubapi.SetupRouter(app, store, tokens)

		log.Info(ctx, LogServiceStarted, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := app.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			// Остановка HTTP сервера.
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return app.Shutdown()
			},
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
