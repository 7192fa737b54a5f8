package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRubric() Rubric {
	return Rubric{
		{ID: "plot-structure", Title: "Plot Structure"},
		{ID: "character-development", Title: "Character Development"},
		{ID: "pacing", Title: "Pacing"},
	}
}

func testModel(id string) ModelIdentity {
	return ModelIdentity{ID: id, Label: id, Provider: "test", Model: id}
}

func successResponse(id, raw string) ModelResponse {
	return ModelResponse{Model: testModel(id), Raw: raw, Status: StatusSuccess}
}

func TestParseMarkdownHeadings(t *testing.T) {
	raw := `## Plot Structure

The three-act structure holds together well.

## Character Development

The protagonist's arc is believable.

## Pacing

The middle drags.`

	result := Parse(successResponse("m1", raw), testRubric(), nil)

	require.Len(t, result.Extracts, 3)
	assert.Nil(t, result.Unstructured)
	assert.False(t, result.NoHeadings)

	assert.Equal(t, "plot-structure", result.Extracts[0].SectionID)
	assert.Equal(t, "The three-act structure holds together well.", result.Extracts[0].Text)
	assert.Equal(t, "character-development", result.Extracts[1].SectionID)
	assert.Equal(t, "pacing", result.Extracts[2].SectionID)
	assert.Equal(t, "The middle drags.", result.Extracts[2].Text)
}

func TestParseNumberedAndBoldHeadings(t *testing.T) {
	raw := `1. Plot Structure
Solid structure overall.

**Character Development**
Flat secondary characters.

Section 3: Pacing
Well-paced throughout.`

	result := Parse(successResponse("m1", raw), testRubric(), nil)

	require.Len(t, result.Extracts, 3)
	assert.Equal(t, "Solid structure overall.", result.Extracts[0].Text)
	assert.Equal(t, "Flat secondary characters.", result.Extracts[1].Text)
	assert.Equal(t, "Well-paced throughout.", result.Extracts[2].Text)
}

func TestParseOutOfOrderHeadings(t *testing.T) {
	raw := `## Pacing
Fast but controlled.

## Plot Structure
The midpoint reversal lands well.`

	result := Parse(successResponse("m1", raw), testRubric(), nil)

	// Extracts come back in rubric order regardless of response order.
	require.Len(t, result.Extracts, 2)
	assert.Equal(t, "plot-structure", result.Extracts[0].SectionID)
	assert.Equal(t, "pacing", result.Extracts[1].SectionID)
}

func TestParseRepeatedHeadingConcatenates(t *testing.T) {
	raw := `## Pacing
First pass: too slow.

## Plot Structure
Fine.

## Pacing
On reflection, the slowness serves the mood.`

	result := Parse(successResponse("m1", raw), testRubric(), nil)

	require.Len(t, result.Extracts, 2)
	pacing := result.Extracts[1]
	assert.Equal(t, "pacing", pacing.SectionID)
	assert.Contains(t, pacing.Text, "First pass: too slow.")
	assert.Contains(t, pacing.Text, sectionBreak)
	assert.Contains(t, pacing.Text, "the slowness serves the mood")
}

func TestParseNoHeadingsGoesUnstructured(t *testing.T) {
	raw := "A rambling response with no structure at all.\nStill quite long."

	result := Parse(successResponse("m1", raw), testRubric(), nil)

	assert.Empty(t, result.Extracts)
	assert.True(t, result.NoHeadings)
	require.NotNil(t, result.Unstructured)
	assert.Equal(t, UnstructuredSectionID, result.Unstructured.SectionID)
	assert.Equal(t, strings.TrimSpace(raw), result.Unstructured.Text)
}

func TestParsePreambleGoesUnstructured(t *testing.T) {
	raw := `Thanks for sharing this outline! Here are my thoughts.

## Plot Structure
Works well.`

	result := Parse(successResponse("m1", raw), testRubric(), nil)

	require.Len(t, result.Extracts, 1)
	assert.False(t, result.NoHeadings)
	require.NotNil(t, result.Unstructured)
	assert.Contains(t, result.Unstructured.Text, "Thanks for sharing")
}

func TestParseNonRubricHeadingIsOrdinaryText(t *testing.T) {
	raw := `## Plot Structure
### Strengths
Tight causality.
### Weaknesses
Predictable ending.`

	result := Parse(successResponse("m1", raw), testRubric(), nil)

	require.Len(t, result.Extracts, 1)
	assert.Contains(t, result.Extracts[0].Text, "### Strengths")
	assert.Contains(t, result.Extracts[0].Text, "Predictable ending.")
}

func TestParseReconstructsResponse(t *testing.T) {
	raw := `## Plot Structure
Line one.
Line two.

## Character Development
Line three.

## Pacing
Line four.
Line five.`

	rubric := testRubric()
	result := Parse(successResponse("m1", raw), rubric, nil)
	require.Len(t, result.Extracts, 3)

	// Every non-blank line of the raw response must appear in exactly
	// one extract (headings excluded), and nothing extra may appear.
	var got []string
	for _, e := range result.Extracts {
		for _, line := range strings.Split(e.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				got = append(got, line)
			}
		}
	}

	var want []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "## ") {
			continue
		}
		want = append(want, line)
	}

	assert.Equal(t, want, got)
}

func TestParseIdempotent(t *testing.T) {
	raw := `Intro text.

## Plot Structure
Good bones.

## Pacing
7/10 overall.`

	resp := successResponse("m1", raw)
	first := Parse(resp, testRubric(), nil)
	second := Parse(resp, testRubric(), nil)

	assert.Equal(t, first, second)
}

func TestParseFailedResponseYieldsNothing(t *testing.T) {
	resp := ModelResponse{Model: testModel("m1"), Status: StatusTimeout}

	result := Parse(resp, testRubric(), nil)

	assert.Empty(t, result.Extracts)
	assert.Nil(t, result.Unstructured)
	assert.False(t, result.NoHeadings)
}

func TestNormalizeHeading(t *testing.T) {
	cases := map[string]string{
		"## Plot Structure":         "plot structure",
		"3) Plot Structure:":        "plot structure",
		"**Character Development**": "character development",
		"Section 2: PACING":         "pacing",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeHeading(strings.TrimPrefix(in, "## ")), "input %q", in)
	}
}
