package stubapi

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ошибки хранилища.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrApplicationNotFound = errors.New("application not found")
)

// User представляет пользователя заглушки.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash []byte
	Verified     bool
	CreatedAt    time.Time
}

// Application представляет отклик на вакансию.
type Application struct {
	ID        string    `json:"id"`
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	Stage     string    `json:"stage"`
	URL       string    `json:"url,omitempty"`
	AppliedAt time.Time `json:"applied_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note представляет заметку, привязанную к отклику.
type Note struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

// refreshRecord - выданный refresh token.
type refreshRecord struct {
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
}

// Store - хранилище заглушки в памяти.
type Store struct {
	mu           sync.RWMutex
	usersByEmail map[string]*User
	usersByID    map[string]*User
	refresh      map[string]*refreshRecord
	refreshTTL   time.Duration
	apps         map[string]map[string]*Application
	notes        map[string][]Note
}

// NewStore создает пустое хранилище.
func NewStore(refreshTTL time.Duration) *Store {
	return &Store{
		usersByEmail: make(map[string]*User),
		usersByID:    make(map[string]*User),
		refresh:      make(map[string]*refreshRecord),
		refreshTTL:   refreshTTL,
		apps:         make(map[string]map[string]*Application),
		notes:        make(map[string][]Note),
	}
}

// CreateUser регистрирует нового пользователя.
func (s *Store) CreateUser(email, username string, passwordHash []byte) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return nil, ErrEmailTaken
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.usersByEmail[email] = user
	s.usersByID[user.ID] = user
	return user, nil
}

// FindUserByEmail возвращает пользователя по email.
func (s *Store) FindUserByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// FindUserByID возвращает пользователя по идентификатору.
func (s *Store) FindUserByID(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// MarkVerified помечает email пользователя подтвержденным.
func (s *Store) MarkVerified(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByEmail[email]
	if !ok {
		return ErrUserNotFound
	}
	user.Verified = true
	return nil
}

// IssueRefresh выпускает новый refresh token для пользователя.
func (s *Store) IssueRefresh(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueRefreshLocked(userID)
}

func (s *Store) issueRefreshLocked(userID string) string {
	token := uuid.New().String()
	s.refresh[token] = &refreshRecord{
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	return token
}

// RotateRefresh отзывает переданный refresh token и выпускает новый.
func (s *Store) RotateRefresh(token string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.refresh[token]
	if !ok || record.Revoked || time.Now().After(record.ExpiresAt) {
		return "", "", ErrInvalidRefreshToken
	}

	record.Revoked = true
	next := s.issueRefreshLocked(record.UserID)
	return record.UserID, next, nil
}

// RevokeRefresh отзывает refresh token. Неизвестный токен не ошибка.
func (s *Store) RevokeRefresh(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.refresh[token]; ok {
		record.Revoked = true
	}
}

// ListApplications возвращает отклики пользователя.
func (s *Store) ListApplications(userID string) []Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Application, 0, len(s.apps[userID]))
	for _, app := range s.apps[userID] {
		result = append(result, *app)
	}
	return result
}

// CreateApplication добавляет отклик на доску пользователя.
func (s *Store) CreateApplication(userID string, app Application) Application {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	app.ID = uuid.New().String()
	app.CreatedAt = now
	app.UpdatedAt = now

	if s.apps[userID] == nil {
		s.apps[userID] = make(map[string]*Application)
	}
	s.apps[userID][app.ID] = &app
	return app
}

// GetApplication возвращает отклик пользователя по идентификатору.
func (s *Store) GetApplication(userID, id string) (*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[userID][id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	copied := *app
	return &copied, nil
}

// UpdateStage перемещает отклик на другую стадию воронки.
func (s *Store) UpdateStage(userID, id, stage string) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[userID][id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	app.Stage = stage
	app.UpdatedAt = time.Now()
	copied := *app
	return &copied, nil
}

// DeleteApplication удаляет отклик с доски.
func (s *Store) DeleteApplication(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[userID][id]; !ok {
		return ErrApplicationNotFound
	}
	delete(s.apps[userID], id)
	delete(s.notes, id)
	return nil
}

// AddNote добавляет заметку к отклику пользователя.
func (s *Store) AddNote(userID, appID, text string) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[userID][appID]; !ok {
		return nil, ErrApplicationNotFound
	}

	note := Note{
		ID:            uuid.New().String(),
		ApplicationID: appID,
		Text:          text,
		CreatedAt:     time.Now(),
	}
	s.notes[appID] = append(s.notes[appID], note)
	return &note, nil
}
