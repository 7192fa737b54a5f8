package dto

import (
	"time"

	"github.com/google/uuid"
)

type ReviewRunDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"` // e.g. "processing", "completed", "failed"
	Report        string    `json:"report,omitempty"`
	Verdicts      string    `json:"verdicts,omitempty"`
	ModelStatuses string    `json:"model_statuses,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SimilarRunDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Distance  float64   `json:"distance"`
	CreatedAt time.Time `json:"created_at"`
}
