package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobtrack/internal/client/api"
	"jobtrack/internal/client/app/dto"
	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	LogServiceListApps   = "applications service: list"
	LogServiceCreateApp  = "applications service: create"
	LogServiceGetApp     = "applications service: get"
	LogServiceMoveApp    = "applications service: update stage"
	LogServiceDeleteApp  = "applications service: delete"
	LogServiceCreateNote = "applications service: add note"

	ErrorListAppsFailed   = "failed to list applications"
	ErrorCreateAppFailed  = "failed to create application"
	ErrorGetAppFailed     = "failed to get application"
	ErrorMoveAppFailed    = "failed to update application stage"
	ErrorDeleteAppFailed  = "failed to delete application"
	ErrorCreateNoteFailed = "failed to add note"
)

const pathApplications = "/applications"

// ApplicationsService выполняет операции с доской откликов.
type ApplicationsService struct {
	api *api.Client
}

// NewApplicationsService создает новый сервис доски откликов.
func NewApplicationsService(apiClient *api.Client) *ApplicationsService {
	return &ApplicationsService{api: apiClient}
}

// List возвращает все отклики пользователя.
func (s *ApplicationsService) List(ctx context.Context) (*dto.ApplicationListResponse, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceListApps)

	var list dto.ApplicationListResponse
	if err := s.api.Get(ctx, pathApplications, &list); err != nil {
		log.Error(ctx, ErrorListAppsFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorListAppsFailed, err)
	}
	return &list, nil
}

// Create добавляет отклик на доску.
func (s *ApplicationsService) Create(ctx context.Context, req *dto.CreateApplicationRequest) (*dto.Application, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceCreateApp, zap.String("company", req.Company))

	var app dto.Application
	if err := s.api.Post(ctx, pathApplications, req, &app); err != nil {
		log.Error(ctx, ErrorCreateAppFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorCreateAppFailed, err)
	}
	return &app, nil
}

// Get возвращает отклик по идентификатору.
func (s *ApplicationsService) Get(ctx context.Context, id string) (*dto.Application, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceGetApp, zap.String("application_id", id))

	var app dto.Application
	if err := s.api.Get(ctx, pathApplications+"/"+id, &app); err != nil {
		log.Error(ctx, ErrorGetAppFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorGetAppFailed, err)
	}
	return &app, nil
}

// UpdateStage перемещает отклик на другую стадию воронки.
func (s *ApplicationsService) UpdateStage(ctx context.Context, id, stage string) (*dto.Application, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceMoveApp, zap.String("application_id", id), zap.String("stage", stage))

	var app dto.Application
	req := dto.UpdateStageRequest{Stage: stage}
	if err := s.api.Patch(ctx, pathApplications+"/"+id, req, &app); err != nil {
		log.Error(ctx, ErrorMoveAppFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorMoveAppFailed, err)
	}
	return &app, nil
}

// Delete удаляет отклик с доски.
func (s *ApplicationsService) Delete(ctx context.Context, id string) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceDeleteApp, zap.String("application_id", id))

	if err := s.api.Delete(ctx, pathApplications+"/"+id); err != nil {
		log.Error(ctx, ErrorDeleteAppFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorDeleteAppFailed, err)
	}
	return nil
}

// AddNote добавляет заметку к отклику.
func (s *ApplicationsService) AddNote(ctx context.Context, id, text string) (*dto.Note, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceCreateNote, zap.String("application_id", id))

	var note dto.Note
	req := dto.CreateNoteRequest{Text: text}
	if err := s.api.Post(ctx, pathApplications+"/"+id+"/notes", req, &note); err != nil {
		log.Error(ctx, ErrorCreateNoteFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorCreateNoteFailed, err)
	}
	return &note, nil
}
