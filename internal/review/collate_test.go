package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func extract(id, text string) SectionExtract {
	return SectionExtract{Model: testModel(id), SectionID: "pacing", Text: text}
}

func TestExtractRating(t *testing.T) {
	cases := []struct {
		text string
		want float64
		ok   bool
	}{
		{"I'd give this 7/10 overall.", 7, true},
		{"Rating: 7.5 / 10", 7.5, true},
		{"This is an 8 out of 10 outline.", 8, true},
		{"Chapter 3/10 is the weakest.", 3, true}, // known false positive of the rating pattern
		{"No rating here.", 0, false},
		{"A 15/10 is not a rating.", 0, false},
	}
	for _, c := range cases {
		got, ok := ExtractRating(c.text)
		assert.Equal(t, c.ok, ok, "text %q", c.text)
		if c.ok {
			assert.Equal(t, c.want, got, "text %q", c.text)
		}
	}
}

func TestCollateNoFeedback(t *testing.T) {
	v := Collate("pacing", nil, DefaultCollatorConfig())

	assert.Equal(t, NoFeedback, v.Level)
	assert.Equal(t, "No feedback received for this section.", v.Level.Sentence())
}

func TestCollateSingleModelOnly(t *testing.T) {
	v := Collate("pacing", []SectionExtract{extract("m1", "Excellent pacing, 9/10.")}, DefaultCollatorConfig())

	assert.Equal(t, SingleModelOnly, v.Level)
	assert.Contains(t, v.Rationale, "m1")
}

func TestCollateMatchingRatingsStrongAgreement(t *testing.T) {
	extracts := []SectionExtract{
		extract("m1", "Strong momentum throughout. 7/10."),
		extract("m2", "The pacing works well. 7/10."),
	}

	v := Collate("pacing", extracts, DefaultCollatorConfig())

	assert.Equal(t, StrongAgreement, v.Level)
}

func TestCollateDivergingRatingsMixedReviews(t *testing.T) {
	extracts := []SectionExtract{
		extract("m1", "Excellent flow, 8/10."),
		extract("m2", "Drags badly in the middle, 3/10."),
	}

	v := Collate("pacing", extracts, DefaultCollatorConfig())

	assert.Equal(t, MixedReviews, v.Level)
	assert.Contains(t, v.Rationale, "spread 5.0")
}

func TestCollateRatingTolerance(t *testing.T) {
	extracts := []SectionExtract{
		extract("m1", "Solid, 8/10."),
		extract("m2", "Good, 6/10."),
	}

	// Spread of 2 sits inside the default tolerance.
	v := Collate("pacing", extracts, DefaultCollatorConfig())
	assert.Equal(t, StrongAgreement, v.Level)

	tight := DefaultCollatorConfig()
	tight.RatingTolerance = 1.0
	v = Collate("pacing", extracts, tight)
	assert.Equal(t, MixedReviews, v.Level)
}

func TestCollateKeywordSentiment(t *testing.T) {
	positive := []SectionExtract{
		extract("m1", "A strong, compelling through-line with vivid scenes."),
		extract("m2", "Excellent momentum; the conflict feels believable."),
	}
	v := Collate("pacing", positive, DefaultCollatorConfig())
	assert.Equal(t, StrongAgreement, v.Level)

	opposed := []SectionExtract{
		extract("m1", "Strong and compelling throughout."),
		extract("m2", "Weak and one-dimensional; the villain feels forced."),
	}
	v = Collate("pacing", opposed, DefaultCollatorConfig())
	assert.Equal(t, MixedReviews, v.Level)
}

func TestCollatePartialOverlapModerate(t *testing.T) {
	extracts := []SectionExtract{
		extract("m1", "Strong and compelling pacing with vivid set pieces."),
		extract("m2", "Hard to say; some chapters work, others do not."),
	}

	v := Collate("pacing", extracts, DefaultCollatorConfig())

	assert.Equal(t, ModerateAgreement, v.Level)
}
