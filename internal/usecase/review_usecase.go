package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/inkforge/outline-council/internal/config"
	"github.com/inkforge/outline-council/internal/model"
	"github.com/inkforge/outline-council/internal/repository"
	"github.com/inkforge/outline-council/internal/review"
	"github.com/inkforge/outline-council/internal/service"
	"github.com/pgvector/pgvector-go"
)

type ReviewUsecase struct {
	runRepo    *repository.ReviewRunRepository
	openRouter service.OpenRouterServiceInterface
	gemini     service.GeminiServiceInterface
	backends   review.Backends
}

func NewReviewUsecase(runRepo *repository.ReviewRunRepository, openRouter service.OpenRouterServiceInterface, gemini service.GeminiServiceInterface) *ReviewUsecase {
	return &ReviewUsecase{
		runRepo:    runRepo,
		openRouter: openRouter,
		gemini:     gemini,
		backends: review.Backends{
			openRouter.Name(): openRouter,
			gemini.Name():     gemini,
		},
	}
}

// Submit stores the run as processing and kicks off the review pipeline
// in the background. The returned ID can be polled for the result.
func (uc *ReviewUsecase) Submit(title, outline string) (string, error) {
	run := model.ReviewRun{
		Title:     title,
		Outline:   outline,
		Status:    "processing",
		Verdicts:  "{}",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := uc.runRepo.CreateRun(&run); err != nil {
		return "", err
	}

	go uc.ExecuteRun(&run)

	return run.ID.String(), nil
}

// ExecuteRun drives one review end to end: dispatch the panel, collate
// the report, persist the outcome and (best-effort) index the outline
// embedding for similar-run lookup. All models failing marks the run
// failed; a partial panel still completes.
func (uc *ReviewUsecase) ExecuteRun(run *model.ReviewRun) error {
	reviewCfg := config.LoadReviewConfig()
	ctx, cancel := context.WithTimeout(context.Background(), reviewCfg.RunTimeout)
	defer cancel()

	cfg := uc.buildRunConfiguration(run.Title, reviewCfg)

	report, err := review.Run(ctx, cfg, run.Outline, uc.backends)
	if err != nil {
		log.Printf("run %s failed: %v", run.ID, err)
		run.Status = "failed"
		run.FailureReason = err.Error()
		run.UpdatedAt = time.Now()
		_ = uc.runRepo.UpdateRun(run)
		return err
	}

	run.Report = review.Assemble(report)
	run.Verdicts = marshalVerdicts(report)
	run.ModelStatuses = marshalStatuses(report)
	run.Status = "completed"
	run.UpdatedAt = time.Now()
	if err := uc.runRepo.UpdateRun(run); err != nil {
		return err
	}

	// Embedding failures never fail a completed review.
	if emb, err := uc.gemini.GenerateEmbedding(ctx, run.Outline); err != nil {
		log.Printf("run %s: outline embedding skipped: %v", run.ID, err)
	} else {
		run.Embedding = pgvector.NewVector(emb)
		if err := uc.runRepo.UpdateRun(run); err != nil {
			log.Printf("run %s: could not store embedding: %v", run.ID, err)
		}
	}

	return nil
}

// buildRunConfiguration translates the env-backed service config into
// the explicit per-run configuration the pipeline is threaded with.
func (uc *ReviewUsecase) buildRunConfiguration(title string, rc *config.ReviewConfig) review.RunConfiguration {
	collator := review.DefaultCollatorConfig()
	if rc.RatingTolerance > 0 {
		collator.RatingTolerance = rc.RatingTolerance
	}
	if len(rc.PositiveTerms) > 0 {
		collator.PositiveTerms = rc.PositiveTerms
	}
	if len(rc.NegativeTerms) > 0 {
		collator.NegativeTerms = rc.NegativeTerms
	}

	var models []review.ModelConfig
	for _, m := range rc.Models {
		models = append(models, review.ModelConfig{
			Identity: review.ModelIdentity{
				ID:       m.Provider + "/" + m.Model,
				Label:    m.Label,
				Provider: m.Provider,
				Model:    m.Model,
			},
			Timeout:    rc.ModelTimeout,
			MaxRetries: rc.ModelRetries,
		})
	}

	return review.RunConfiguration{
		Title:       title,
		Rubric:      review.DefaultRubric(),
		Models:      models,
		MaxParallel: rc.MaxParallel,
		Collator:    collator,
	}
}

func (uc *ReviewUsecase) GetRun(id string) (*model.ReviewRun, error) {
	return uc.runRepo.FindRunByID(id)
}

// FindSimilarRuns embeds nothing itself; it reuses the embedding stored
// with the run, so a run without one yields no neighbours.
func (uc *ReviewUsecase) FindSimilarRuns(id string, topK int) ([]repository.SimilarRun, error) {
	run, err := uc.runRepo.FindRunByID(id)
	if err != nil {
		return nil, err
	}
	if len(run.Embedding.Slice()) == 0 {
		return nil, nil
	}
	return uc.runRepo.SearchSimilarRuns(run.Embedding, id, topK)
}

func marshalVerdicts(report *review.AggregateReport) string {
	verdicts := make(map[string]review.AgreementVerdict, len(report.Sections))
	for _, sr := range report.Sections {
		verdicts[sr.Section.ID] = sr.Verdict
	}
	raw, err := json.Marshal(verdicts)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func marshalStatuses(report *review.AggregateReport) string {
	statuses := make(map[string]string, len(report.Responses))
	for _, resp := range report.Responses {
		statuses[resp.Model.ID] = string(resp.Status)
	}
	raw, err := json.Marshal(statuses)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
