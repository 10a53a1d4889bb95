package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"jobtrack/internal/client/adapters/broadcast"
	"jobtrack/internal/client/adapters/storage"
	"jobtrack/internal/client/api"
	"jobtrack/internal/client/app/dto"
	"jobtrack/internal/client/app/services"
	"jobtrack/internal/client/config"
	"jobtrack/internal/client/events"
	"jobtrack/internal/client/session"
	"jobtrack/pkg/logger"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "CLIENT_LOGGER_MODE"
	EnvLoggerLevel = "CLIENT_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger          = "failed to initialize logger"
	ErrLoadConfig          = "failed to load configuration"
	ErrCreateStorage       = "failed to open profile storage"
	ErrCreateBroadcast     = "failed to connect to broadcast channel"
	ErrCreateSessions      = "failed to initialize session manager"
	ErrCommandFailed       = "command failed"
	MsgSessionExpired      = "session expired, please login again"
	MsgForbiddenWithReason = "action forbidden"
)

const usage = `usage: jobtrack <command> [args]

commands:
  register <email> <username> <password>
  login <email> <password>
  logout
  whoami
  board
  add <company> <role>
  move <application_id> <stage>
  note <application_id> <text...>
  verify <email>`

func main() {
	// Файл .env не обязателен.
	_ = godotenv.Load()

	env := logger.Production
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "development" {
		env = logger.Development
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}
	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	if err := run(ctx, log); err != nil {
		log.Error(ctx, ErrCommandFailed, zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrLoadConfig, err)
	}

	// Переинициализация логгера согласно загруженной конфигурации.
	log, err = logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrInitLogger, err)
	}
	logger.SetGlobalLogger(log)

	fileStorage := storage.NewFileStorage(cfg.Session.GetStoragePath())

	var sessionBroadcast *broadcast.RedisBroadcast
	if cfg.Broadcast.Enabled {
		sessionBroadcast, err = broadcast.NewRedisBroadcast(ctx, &cfg.Broadcast)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrCreateBroadcast, err)
		}
		defer func() { _ = sessionBroadcast.Close() }()
	}

	var sessions *session.Manager
	if sessionBroadcast != nil {
		sessions, err = session.NewManager(ctx, fileStorage, sessionBroadcast, &cfg.Session)
	} else {
		sessions, err = session.NewManager(ctx, fileStorage, nil, &cfg.Session)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ErrCreateSessions, err)
	}
	defer sessions.Close()

	refresher := session.NewRefresher(sessions, cfg.API.GetBaseURL()+"/auth/refresh", cfg.API.RefreshTimeout)

	unauthorized := events.NewHub()
	forbidden := events.NewHub()

	unsubscribe := unauthorized.Subscribe(func(events.Reason) {
		fmt.Fprintln(os.Stderr, MsgSessionExpired)
	})
	defer unsubscribe()
	unsubscribeForbidden := forbidden.Subscribe(func(reason events.Reason) {
		fmt.Fprintf(os.Stderr, "%s: %s (%s)\n", MsgForbiddenWithReason, reason.Message, reason.Code)
	})
	defer unsubscribeForbidden()

	apiClient := api.NewClient(&cfg.API, sessions, refresher, unauthorized, forbidden, cfg.Session.ExpirySkew)
	authService := services.NewAuthService(apiClient, sessions)
	appsService := services.NewApplicationsService(apiClient)

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Println(usage)
		return nil
	}

	switch args[0] {
	case "register":
		if len(args) != 4 {
			return fmt.Errorf("register expects <email> <username> <password>")
		}
		if err := authService.Register(ctx, args[1], args[2], args[3]); err != nil {
			return err
		}
		fmt.Println("registered and logged in as", args[1])
		return nil

	case "login":
		if len(args) != 3 {
			return fmt.Errorf("login expects <email> <password>")
		}
		if err := authService.Login(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Println("logged in as", args[1])
		return nil

	case "logout":
		if err := authService.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "whoami":
		profile, err := authService.Profile(ctx)
		if err != nil {
			return err
		}
		return printJSON(profile)

	case "board":
		list, err := appsService.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(list)

	case "add":
		if len(args) != 3 {
			return fmt.Errorf("add expects <company> <role>")
		}
		app, err := appsService.Create(ctx, &dto.CreateApplicationRequest{Company: args[1], Role: args[2]})
		if err != nil {
			return err
		}
		return printJSON(app)

	case "move":
		if len(args) != 3 {
			return fmt.Errorf("move expects <application_id> <stage>")
		}
		app, err := appsService.UpdateStage(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		return printJSON(app)

	case "note":
		if len(args) < 3 {
			return fmt.Errorf("note expects <application_id> <text>")
		}
		note, err := appsService.AddNote(ctx, args[1], strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		return printJSON(note)

	case "verify":
		if len(args) != 2 {
			return fmt.Errorf("verify expects <email>")
		}
		if err := apiClient.Post(ctx, "/auth/verify", map[string]string{"email": args[1]}, nil); err != nil {
			return err
		}
		fmt.Println("email verified")
		return nil

	default:
		log.Warn(ctx, "unknown command", zap.String("command", args[0]))
		fmt.Println(usage)
		return nil
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
