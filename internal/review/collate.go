package review

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Polarity is the coarse sentiment bucket assigned to one extract.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityMixed    Polarity = "mixed"
	PolarityNegative Polarity = "negative"
)

// CollatorConfig holds the tunable thresholds behind the agreement
// heuristic. Agreement over free text is inherently best-effort: these
// knobs should be calibrated against real model output, not treated as
// canonical.
type CollatorConfig struct {
	// RatingTolerance is the maximum spread, on a 10-point scale,
	// within which explicit numeric ratings still count as matching.
	RatingTolerance float64

	// PositiveTerms and NegativeTerms feed the keyword sentiment
	// fallback used when no numeric rating is present.
	PositiveTerms []string
	NegativeTerms []string
}

// DefaultCollatorConfig returns the stock thresholds: a 2-point rating
// tolerance and a small keyword lexicon for qualitative feedback.
func DefaultCollatorConfig() CollatorConfig {
	return CollatorConfig{
		RatingTolerance: 2.0,
		PositiveTerms: []string{
			"strong", "excellent", "well-integrated", "compelling", "effective",
			"engaging", "vivid", "believable", "well-paced", "satisfying",
		},
		NegativeTerms: []string{
			"weak", "one-dimensional", "forced", "overwhelming", "confusing",
			"underdeveloped", "cliched", "flat", "rushed", "unclear",
		},
	}
}

// ratingPattern matches explicit ratings like "7/10", "7.5 / 10" or
// "7 out of 10".
var ratingPattern = regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d+)?)\s*(?:/|out of)\s*10\b`)

// ExtractRating returns the first explicit N/10 rating in the text,
// if any.
func ExtractRating(text string) (float64, bool) {
	groups := ratingPattern.FindStringSubmatch(text)
	if groups == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(groups[1], 64)
	if err != nil || v > 10 {
		return 0, false
	}
	return v, true
}

// classifyPolarity buckets one extract. An explicit rating takes
// priority; keyword counts are the fallback, and text with no signal at
// all lands in the mixed bucket.
func classifyPolarity(text string, cfg CollatorConfig) Polarity {
	if rating, ok := ExtractRating(text); ok {
		switch {
		case rating >= 7:
			return PolarityPositive
		case rating <= 4:
			return PolarityNegative
		default:
			return PolarityMixed
		}
	}

	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, term := range cfg.PositiveTerms {
		pos += strings.Count(lower, strings.ToLower(term))
	}
	for _, term := range cfg.NegativeTerms {
		neg += strings.Count(lower, strings.ToLower(term))
	}
	switch {
	case pos > neg:
		return PolarityPositive
	case neg > pos:
		return PolarityNegative
	default:
		return PolarityMixed
	}
}

// Collate derives the agreement verdict for one rubric section from all
// its extracts. The classification is heuristic: explicit ratings are
// compared within the configured tolerance, and keyword sentiment
// approximates polarity where no rating is given.
func Collate(sectionID string, extracts []SectionExtract, cfg CollatorConfig) AgreementVerdict {
	verdict := AgreementVerdict{SectionID: sectionID}

	switch len(extracts) {
	case 0:
		verdict.Level = NoFeedback
		verdict.Rationale = "no model produced feedback for this section"
		return verdict
	case 1:
		verdict.Level = SingleModelOnly
		verdict.Rationale = fmt.Sprintf("only %s responded for this section", extracts[0].Model.Label)
		return verdict
	}

	var ratings []float64
	buckets := make(map[Polarity]int)
	for _, e := range extracts {
		if r, ok := ExtractRating(e.Text); ok {
			ratings = append(ratings, r)
		}
		buckets[classifyPolarity(e.Text, cfg)]++
	}

	spread := ratingSpread(ratings)
	ratingsDiverge := len(ratings) >= 2 && spread > cfg.RatingTolerance
	ratingsAlign := len(ratings) < 2 || spread <= cfg.RatingTolerance
	// Explicit ratings outrank the keyword fallback: a panel where every
	// model gave a rating agrees whenever the ratings sit within
	// tolerance, whatever the surrounding prose sounds like.
	allRated := len(ratings) == len(extracts)
	sameBucket := len(buckets) == 1
	opposed := buckets[PolarityPositive] > 0 && buckets[PolarityNegative] > 0

	switch {
	case ratingsDiverge || opposed:
		verdict.Level = MixedReviews
		verdict.Rationale = fmt.Sprintf(
			"models diverge: polarity split %s, rating spread %.1f (tolerance %.1f)",
			bucketSummary(buckets), spread, cfg.RatingTolerance)
	case (allRated && len(ratings) >= 2) || (sameBucket && ratingsAlign):
		verdict.Level = StrongAgreement
		verdict.Rationale = fmt.Sprintf(
			"all %d responding models agree (%s bucket dominant); rating spread %.1f within tolerance %.1f",
			len(extracts), dominantBucket(buckets), spread, cfg.RatingTolerance)
	default:
		verdict.Level = ModerateAgreement
		verdict.Rationale = fmt.Sprintf(
			"partial overlap: polarity split %s, rating spread %.1f (tolerance %.1f)",
			bucketSummary(buckets), spread, cfg.RatingTolerance)
	}
	return verdict
}

func ratingSpread(ratings []float64) float64 {
	if len(ratings) < 2 {
		return 0
	}
	min, max := ratings[0], ratings[0]
	for _, r := range ratings[1:] {
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}
	return max - min
}

func dominantBucket(buckets map[Polarity]int) Polarity {
	best, bestCount := PolarityMixed, -1
	for _, p := range []Polarity{PolarityPositive, PolarityNegative, PolarityMixed} {
		if buckets[p] > bestCount {
			best, bestCount = p, buckets[p]
		}
	}
	return best
}

func bucketSummary(buckets map[Polarity]int) string {
	return fmt.Sprintf("%d positive / %d mixed / %d negative",
		buckets[PolarityPositive], buckets[PolarityMixed], buckets[PolarityNegative])
}
