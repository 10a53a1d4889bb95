// Package services содержит сервисы клиента, работающие через диспетчер
// запросов: авторизация и доска откликов.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobtrack/internal/client/api"
	"jobtrack/internal/client/app/dto"
	"jobtrack/internal/client/session"
	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	LogServiceLogin    = "auth service: login"
	LogServiceRegister = "auth service: register"
	LogServiceLogout   = "auth service: logout"
	LogServiceProfile  = "auth service: get profile"

	ErrorLoginFailed    = "failed to login"
	ErrorRegisterFailed = "failed to register"
	ErrorLogoutCall     = "logout request failed, local session cleared anyway"
	ErrorProfileFailed  = "failed to get user profile"
	ErrorStoreSession   = "failed to store session"
)

// Маршруты авторизации.
const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathLogout   = "/auth/logout"
	pathProfile  = "/user/profile"
)

// AuthService выполняет операции авторизации через диспетчер
// и управляет сессией через её менеджер.
type AuthService struct {
	api      *api.Client
	sessions *session.Manager
}

// NewAuthService создает новый сервис авторизации.
func NewAuthService(apiClient *api.Client, sessions *session.Manager) *AuthService {
	return &AuthService{api: apiClient, sessions: sessions}
}

// Login выполняет вход и сохраняет полученную сессию.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceLogin, zap.String("email", email))

	var grant dto.TokenGrantResponse
	req := dto.LoginRequest{Email: email, Password: password}
	if err := s.api.Post(ctx, pathLogin, req, &grant); err != nil {
		log.Error(ctx, ErrorLoginFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorLoginFailed, err)
	}

	if err := s.sessions.SetSession(ctx, tokenGrant(grant)); err != nil {
		log.Error(ctx, ErrorStoreSession, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorStoreSession, err)
	}

	return nil
}

// Register регистрирует пользователя и сохраняет полученную сессию.
func (s *AuthService) Register(ctx context.Context, email, username, password string) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceRegister, zap.String("email", email))

	var grant dto.TokenGrantResponse
	req := dto.RegisterRequest{Email: email, Username: username, Password: password}
	if err := s.api.Post(ctx, pathRegister, req, &grant); err != nil {
		log.Error(ctx, ErrorRegisterFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorRegisterFailed, err)
	}

	if err := s.sessions.SetSession(ctx, tokenGrant(grant)); err != nil {
		log.Error(ctx, ErrorStoreSession, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorStoreSession, err)
	}

	return nil
}

// Logout отправляет запрос на выход и разрушает локальную сессию.
// Сбой серверного вызова никогда не блокирует локальный выход.
func (s *AuthService) Logout(ctx context.Context) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceLogout)

	current := s.sessions.Session()
	if current != nil && current.RefreshToken != "" {
		req := dto.LogoutRequest{RefreshToken: current.RefreshToken}
		if err := s.api.Post(ctx, pathLogout, req, nil); err != nil {
			log.Warn(ctx, ErrorLogoutCall, zap.Error(err))
		}
	}

	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Profile возвращает профиль текущего пользователя.
func (s *AuthService) Profile(ctx context.Context) (*dto.UserProfileResponse, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceProfile)

	var profile dto.UserProfileResponse
	if err := s.api.Get(ctx, pathProfile, &profile); err != nil {
		log.Error(ctx, ErrorProfileFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorProfileFailed, err)
	}
	return &profile, nil
}

func tokenGrant(grant dto.TokenGrantResponse) session.TokenGrant {
	return session.TokenGrant{
		AccessToken:   grant.AccessToken,
		IdentityToken: grant.IdentityToken,
		RefreshToken:  grant.RefreshToken,
		TokenType:     grant.TokenType,
		ExpiresIn:     grant.ExpiresIn,
	}
}
