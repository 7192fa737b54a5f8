package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ReviewRun struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title         string          `gorm:"type:varchar(255)" json:"title"`
	Outline       string          `gorm:"type:text" json:"outline"`
	Status        string          `gorm:"type:varchar(50)" json:"status"` // "processing", "completed", "failed"
	Report        string          `gorm:"type:text" json:"report"`        // assembled markdown document
	Verdicts      string          `gorm:"type:jsonb" json:"verdicts"`     // per-section agreement verdicts
	ModelStatuses string          `gorm:"type:jsonb" json:"model_statuses"`
	FailureReason string          `gorm:"type:text" json:"failure_reason"`
	Embedding     pgvector.Vector `gorm:"type:vector(3072)" json:"-"` // outline embedding for similar-run lookup
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (r *ReviewRun) TableName() string {
	return "review_runs"
}
