// Package storage содержит файловую реализацию хранилища сессии профиля.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"jobtrack/internal/client/ports/storage"
	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	LogRecordSaved   = "session record saved"
	LogRecordCleared = "session record cleared"

	ErrorFailedToRead  = "failed to read session record"
	ErrorFailedToWrite = "failed to write session record"
	ErrorFailedToClear = "failed to clear session record"
)

// Права доступа к файлу и каталогу профиля.
const (
	dirMode  = 0o700
	fileMode = 0o600
)

// FileStorage хранит запись сессии в JSON файле профиля.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage создает файловое хранилище по указанному пути.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load читает запись сессии. Возвращает (nil, nil), если записи нет.
func (s *FileStorage) Load(ctx context.Context) (*storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		logger.Log(ctx).Error(ctx, ErrorFailedToRead, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToRead, err)
	}

	var record storage.Record
	if err := json.Unmarshal(data, &record); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToRead, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToRead, err)
	}

	return &record, nil
}

// Save атомарно записывает запись сессии через временный файл.
func (s *FileStorage) Save(ctx context.Context, record *storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToWrite, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToWrite, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}

	logger.Log(ctx).Debug(ctx, LogRecordSaved, zap.String("path", s.path))
	return nil
}

// Clear удаляет запись сессии. Отсутствие файла не является ошибкой.
func (s *FileStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log(ctx).Error(ctx, ErrorFailedToClear, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToClear, err)
	}

	logger.Log(ctx).Debug(ctx, LogRecordCleared, zap.String("path", s.path))
	return nil
}
