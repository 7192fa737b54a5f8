package review

import (
	"time"
)

// ResponseStatus is the terminal state of one model query.
type ResponseStatus string

const (
	StatusSuccess        ResponseStatus = "success"
	StatusTimeout        ResponseStatus = "timeout"
	StatusTransportError ResponseStatus = "transport-error"
	StatusEmpty          ResponseStatus = "empty"
)

// Failed reports whether the status is anything other than success.
func (s ResponseStatus) Failed() bool {
	return s != StatusSuccess
}

// ModelIdentity names one configured backend model.
type ModelIdentity struct {
	ID       string `json:"id"`       // stable key within a run, e.g. "gemini-flash"
	Label    string `json:"label"`    // display label, e.g. "Gemini 2.5 Flash"
	Provider string `json:"provider"` // backend provider key, e.g. "gemini", "openrouter"
	Model    string `json:"model"`    // provider-specific model slug
}

// ModelConfig is one model plus its per-model dispatch limits.
type ModelConfig struct {
	Identity   ModelIdentity
	Timeout    time.Duration
	MaxRetries int
}

// ModelResponse is the write-once outcome of querying one model.
type ModelResponse struct {
	Model  ModelIdentity  `json:"model"`
	Raw    string         `json:"raw"`
	Status ResponseStatus `json:"status"`
	Err    string         `json:"error,omitempty"`
}

// SectionExtract is the portion of one model's response attributed to one
// rubric section. Recomputing it from the same ModelResponse always yields
// the same extract.
type SectionExtract struct {
	Model     ModelIdentity `json:"model"`
	SectionID string        `json:"section_id"`
	Text      string        `json:"text"`
}

// AgreementLevel classifies how consistent the models' judgments were for
// one section. The signal is heuristic, derived from free text; it is a
// best-effort classification, not a statistical guarantee.
type AgreementLevel string

const (
	StrongAgreement   AgreementLevel = "strong-agreement"
	ModerateAgreement AgreementLevel = "moderate-agreement"
	MixedReviews      AgreementLevel = "mixed-reviews"
	SingleModelOnly   AgreementLevel = "single-model-only"
	NoFeedback        AgreementLevel = "no-feedback"
)

// Sentence renders the level in the fixed report vocabulary.
func (l AgreementLevel) Sentence() string {
	switch l {
	case StrongAgreement:
		return "Strong Agreement"
	case ModerateAgreement:
		return "Moderate Agreement"
	case MixedReviews:
		return "Mixed Reviews"
	case SingleModelOnly:
		return "Only one model provided feedback for this section."
	case NoFeedback:
		return "No feedback received for this section."
	default:
		return string(l)
	}
}

// AgreementVerdict is the per-section classification plus the rationale
// that produced it.
type AgreementVerdict struct {
	SectionID string         `json:"section_id"`
	Level     AgreementLevel `json:"level"`
	Rationale string         `json:"rationale"`
}

// SectionResult groups everything known about one rubric section: the
// section itself, the extracts from every responding model (in the
// run-fixed model order) and the agreement verdict.
type SectionResult struct {
	Section  RubricSection    `json:"section"`
	Extracts []SectionExtract `json:"extracts"`
	Verdict  AgreementVerdict `json:"verdict"`
}

// AggregateReport is the fully collated run outcome. Every rubric section
// appears exactly once, in rubric order, even when no model responded
// for it.
type AggregateReport struct {
	Title        string           `json:"title"`
	Sections     []SectionResult  `json:"sections"`
	Responses    []ModelResponse  `json:"responses"`
	Unstructured []SectionExtract `json:"unstructured,omitempty"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
}

// FailedModels returns the identities of every model whose query did not
// succeed.
func (r *AggregateReport) FailedModels() []ModelIdentity {
	var failed []ModelIdentity
	for _, resp := range r.Responses {
		if resp.Status.Failed() {
			failed = append(failed, resp.Model)
		}
	}
	return failed
}

// RunConfiguration carries everything one review run needs, threaded
// explicitly through dispatch, parsing, collation and assembly so that
// independent runs with different rubrics can share a process.
type RunConfiguration struct {
	Title       string
	Rubric      Rubric
	Models      []ModelConfig
	MaxParallel int

	// RetainPartial keeps already-settled model responses and continues
	// the pipeline when the caller cancels mid-dispatch. When false a
	// cancelled run returns the context error instead.
	RetainPartial bool

	Collator CollatorConfig
	Matchers []HeadingMatcher
}

// matchers returns the configured heading matchers, falling back to the
// defaults.
func (c RunConfiguration) matchers() []HeadingMatcher {
	if len(c.Matchers) > 0 {
		return c.Matchers
	}
	return DefaultHeadingMatchers()
}
