package dto

import "time"

// Стадии воронки откликов.
const (
	StageWishlist  = "wishlist"
	StageApplied   = "applied"
	StageInterview = "interview"
	StageOffer     = "offer"
	StageRejected  = "rejected"
)

// Application представляет отклик на вакансию на доске.
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

// CreateApplicationRequest содержит данные для создания отклика.
type CreateApplicationRequest struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Stage   string `json:"stage,omitempty"`
	URL     string `json:"url,omitempty"`
}

// UpdateStageRequest содержит данные для перемещения отклика по воронке.
type UpdateStageRequest struct {
	Stage string `json:"stage"`
}

// ApplicationListResponse содержит страницу откликов.
type ApplicationListResponse struct {
	Applications []Application `json:"applications"`
	Total        int           `json:"total"`
}

// Note представляет заметку, привязанную к отклику.
type Note struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateNoteRequest содержит данные для создания заметки.
type CreateNoteRequest struct {
	Text string `json:"text"`
}
