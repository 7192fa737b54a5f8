package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ReviewConfig holds the tunables of the review pipeline: the model
// panel, dispatch limits and the agreement-heuristic thresholds. All
// values have defaults and can be overridden via environment variables.
type ReviewConfig struct {
	// Models is parsed from REVIEW_MODELS as comma-separated
	// "provider:model:label" entries.
	Models []ReviewModel

	MaxParallel     int
	ModelTimeout    time.Duration
	ModelRetries    int
	RunTimeout      time.Duration
	RatingTolerance float64

	// Keyword lists feeding the sentiment fallback of the collator,
	// overridable via REVIEW_POSITIVE_TERMS / REVIEW_NEGATIVE_TERMS.
	PositiveTerms []string
	NegativeTerms []string
}

// ReviewModel is one configured panel member.
type ReviewModel struct {
	Provider string
	Model    string
	Label    string
}

var (
	reviewConfig *ReviewConfig
	reviewOnce   sync.Once
)

func LoadReviewConfig() *ReviewConfig {
	reviewOnce.Do(func() {
		reviewConfig = &ReviewConfig{
			Models:          parseModels(os.Getenv("REVIEW_MODELS")),
			MaxParallel:     envInt("REVIEW_MAX_PARALLEL", 4),
			ModelTimeout:    envDuration("REVIEW_MODEL_TIMEOUT", 120*time.Second),
			ModelRetries:    envInt("REVIEW_MODEL_RETRIES", 2),
			RunTimeout:      envDuration("REVIEW_RUN_TIMEOUT", 10*time.Minute),
			RatingTolerance: envFloat("REVIEW_RATING_TOLERANCE", 2.0),
			PositiveTerms:   envList("REVIEW_POSITIVE_TERMS"),
			NegativeTerms:   envList("REVIEW_NEGATIVE_TERMS"),
		}
	})
	return reviewConfig
}

func parseModels(raw string) []ReviewModel {
	if strings.TrimSpace(raw) == "" {
		return []ReviewModel{
			{Provider: "gemini", Model: "gemini-2.5-flash", Label: "Gemini 2.5 Flash"},
			{Provider: "openrouter", Model: "openai/gpt-4o-mini", Label: "GPT-4o Mini"},
			{Provider: "openrouter", Model: "anthropic/claude-3.5-haiku", Label: "Claude 3.5 Haiku"},
		}
	}

	var models []ReviewModel
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) < 2 {
			log.Printf("Warning: skipping malformed REVIEW_MODELS entry %q", entry)
			continue
		}
		m := ReviewModel{Provider: parts[0], Model: parts[1], Label: parts[1]}
		if len(parts) == 3 && parts[2] != "" {
			m.Label = parts[2]
		}
		models = append(models, m)
	}
	return models
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, fallback)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
		log.Printf("Warning: invalid %s=%q, using %g", key, raw, fallback)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
		log.Printf("Warning: invalid %s=%q, using %v", key, raw, fallback)
	}
	return fallback
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var terms []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
