package review

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panelResponse renders a well-formed answer covering every rubric
// section, with the given rating in the overall section.
func panelResponse(rubric Rubric, rating string) string {
	var b strings.Builder
	for _, s := range rubric {
		fmt.Fprintf(&b, "## %s\n\nThe outline is strong and compelling here. %s\n\n", s.Title, rating)
	}
	return b.String()
}

func TestRunEndToEndWithOneTimeout(t *testing.T) {
	rubric := DefaultRubric()
	require.Len(t, rubric, 10)

	backend := &fakeBackend{name: "fake", fn: func(ctx context.Context, model, prompt string) (string, error) {
		if model == "laggard" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return panelResponse(rubric, "7/10"), nil
	}}

	cfg := RunConfiguration{
		Title:  "Test Outline",
		Rubric: rubric,
		Models: []ModelConfig{
			modelConfig("alpha", time.Second, 0),
			modelConfig("beta", time.Second, 0),
			modelConfig("laggard", 30*time.Millisecond, 0),
		},
		MaxParallel: 3,
	}

	report, err := Run(context.Background(), cfg, "An outline about a lighthouse keeper.", Backends{"fake": backend})
	require.NoError(t, err)

	// All ten sections present, each with the two responding models'
	// extracts and a verdict.
	require.Len(t, report.Sections, 10)
	for _, sr := range report.Sections {
		assert.Len(t, sr.Extracts, 2, "section %s", sr.Section.ID)
		assert.Equal(t, StrongAgreement, sr.Verdict.Level, "section %s", sr.Section.ID)
	}

	require.Len(t, report.FailedModels(), 1)
	assert.Equal(t, "laggard", report.FailedModels()[0].ID)

	doc := Assemble(report)
	assert.Contains(t, doc, "## 1. Premise and Hook")
	assert.Contains(t, doc, "## 10. Overall Assessment")
	assert.Contains(t, doc, "**laggard:** _no response (timed out)_")
	assert.Contains(t, doc, "| laggard | timeout |")
	assert.Contains(t, doc, "**Agreement Analysis:** Strong Agreement")
}

func TestRunAllModelsFailed(t *testing.T) {
	backend := &fakeBackend{name: "fake", fn: func(ctx context.Context, model, prompt string) (string, error) {
		return "", fmt.Errorf("invalid API key")
	}}

	cfg := RunConfiguration{
		Rubric: testRubric(),
		Models: []ModelConfig{
			modelConfig("a", time.Second, 0),
			modelConfig("b", time.Second, 0),
		},
	}

	report, err := Run(context.Background(), cfg, "outline", Backends{"fake": backend})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllModelsFailed)
	assert.Nil(t, report)
}

func TestRunSingleResponderVerdicts(t *testing.T) {
	rubric := testRubric()
	backend := &fakeBackend{name: "fake", fn: func(ctx context.Context, model, prompt string) (string, error) {
		if model == "dead" {
			return "", fmt.Errorf("invalid API key")
		}
		return panelResponse(rubric, "8/10"), nil
	}}

	cfg := RunConfiguration{
		Rubric: rubric,
		Models: []ModelConfig{
			modelConfig("alive", time.Second, 0),
			modelConfig("dead", time.Second, 0),
		},
	}

	report, err := Run(context.Background(), cfg, "outline", Backends{"fake": backend})
	require.NoError(t, err)

	for _, sr := range report.Sections {
		assert.Equal(t, SingleModelOnly, sr.Verdict.Level)
	}

	doc := Assemble(report)
	assert.Contains(t, doc, "Only one model provided feedback for this section.")
}

func TestRunUnstructuredResponseFlagged(t *testing.T) {
	backend := &fakeBackend{name: "fake", fn: func(ctx context.Context, model, prompt string) (string, error) {
		if model == "rambler" {
			return "I loved it. No headings though.", nil
		}
		return panelResponse(testRubric(), "6/10"), nil
	}}

	cfg := RunConfiguration{
		Rubric: testRubric(),
		Models: []ModelConfig{
			modelConfig("structured", time.Second, 0),
			modelConfig("rambler", time.Second, 0),
		},
	}

	report, err := Run(context.Background(), cfg, "outline", Backends{"fake": backend})
	require.NoError(t, err)

	require.Len(t, report.Unstructured, 1)
	assert.Equal(t, "rambler", report.Unstructured[0].Model.ID)

	doc := Assemble(report)
	assert.Contains(t, doc, "MANUAL REVIEW REQUIRED")
	assert.Contains(t, doc, "I loved it. No headings though.")
}

func TestRunInvalidRubric(t *testing.T) {
	cfg := RunConfiguration{
		Rubric: Rubric{{ID: "dup", Title: "A"}, {ID: "dup", Title: "B"}},
		Models: []ModelConfig{modelConfig("a", time.Second, 0)},
	}

	_, err := Run(context.Background(), cfg, "outline", Backends{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestRunCancelledWithoutRetainPartial(t *testing.T) {
	backend := &fakeBackend{name: "fake", fn: func(ctx context.Context, model, prompt string) (string, error) {
		return panelResponse(testRubric(), "7/10"), nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := RunConfiguration{
		Rubric: testRubric(),
		Models: []ModelConfig{modelConfig("a", time.Second, 0)},
	}

	_, err := Run(ctx, cfg, "outline", Backends{"fake": backend})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
