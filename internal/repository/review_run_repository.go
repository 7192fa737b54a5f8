package repository

import (
	"github.com/inkforge/outline-council/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ReviewRunRepository struct {
	db *gorm.DB
}

func NewReviewRunRepository(db *gorm.DB) *ReviewRunRepository {
	return &ReviewRunRepository{db}
}

func (r *ReviewRunRepository) CreateRun(run *model.ReviewRun) error {
	return r.db.Create(run).Error
}

func (r *ReviewRunRepository) UpdateRun(run *model.ReviewRun) error {
	return r.db.Save(run).Error
}

func (r *ReviewRunRepository) FindRunByID(id string) (*model.ReviewRun, error) {
	var run model.ReviewRun
	err := r.db.First(&run, "id = ?", id).Error
	return &run, err
}

// SimilarRun pairs a completed run with its embedding distance to the
// query outline.
type SimilarRun struct {
	model.ReviewRun
	Distance float64 `json:"distance"`
}

// SearchSimilarRuns returns the completed runs whose outline embeddings
// sit closest to the given vector, excluding the run itself.
func (r *ReviewRunRepository) SearchSimilarRuns(embedding pgvector.Vector, excludeID string, topK int) ([]SimilarRun, error) {
	var runs []SimilarRun

	err := r.db.Raw(`
        SELECT *, embedding <-> ? AS distance
        FROM review_runs
        WHERE status = 'completed' AND id <> ? AND embedding IS NOT NULL
        ORDER BY embedding <-> ?
        LIMIT ?
    `, embedding, excludeID, embedding, topK).Scan(&runs).Error

	return runs, err
}
