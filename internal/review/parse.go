package review

import (
	"regexp"
	"strings"
)

// sectionBreak separates repeated blocks when a model reuses the same
// section heading more than once in one response.
const sectionBreak = "\n\n---\n\n"

// HeadingMatcher recognizes one vendor flavour of section heading.
// Matchers are tried in order; the first match wins. Keeping them as
// data means a new vendor's heading quirk is one entry here, not a
// change to the extraction loop.
type HeadingMatcher struct {
	Name    string
	Pattern *regexp.Regexp // first capture group is the heading title
}

// DefaultHeadingMatchers covers the heading dialects seen across model
// vendors: markdown headers, numbered headers and bold-line headers.
func DefaultHeadingMatchers() []HeadingMatcher {
	return []HeadingMatcher{
		{Name: "markdown", Pattern: regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)},
		{Name: "numbered", Pattern: regexp.MustCompile(`^(?i)(?:section\s+)?\d{1,2}[.):]\s+(.+?)\s*$`)},
		{Name: "bold", Pattern: regexp.MustCompile(`^\*\*(.+?)\*\*:?\s*$`)},
	}
}

// ParseResult is the outcome of extracting one ModelResponse onto the
// rubric.
type ParseResult struct {
	// Extracts holds one entry per rubric section the response addressed,
	// in rubric order.
	Extracts []SectionExtract

	// Unstructured holds response text that could not be attributed to
	// any rubric section (preamble, or the whole response when no
	// headings were detected).
	Unstructured *SectionExtract

	// NoHeadings is set when the response contained no recognizable
	// section headings at all; the report flags such responses for
	// manual review.
	NoHeadings bool
}

// Parse attributes every non-blank line of a model response to exactly
// one rubric section (or the unstructured pseudo-section). It is a pure
// function of its inputs: parsing the same response twice yields
// identical extracts, and no text is ever discarded.
func Parse(resp ModelResponse, rubric Rubric, matchers []HeadingMatcher) ParseResult {
	result := ParseResult{}
	if resp.Status.Failed() || strings.TrimSpace(resp.Raw) == "" {
		return result
	}
	if len(matchers) == 0 {
		matchers = DefaultHeadingMatchers()
	}

	// blocks collects lines per section ID; each heading occurrence
	// opens a new block so repeats can be joined with a break marker.
	blocks := make(map[string][][]string)
	current := UnstructuredSectionID
	matchedAny := false

	appendLine := func(line string) {
		bs := blocks[current]
		if len(bs) == 0 {
			bs = append(bs, nil)
		}
		bs[len(bs)-1] = append(bs[len(bs)-1], line)
		blocks[current] = bs
	}

	for _, line := range strings.Split(resp.Raw, "\n") {
		if id, ok := matchHeading(line, rubric, matchers); ok {
			matchedAny = true
			current = id
			blocks[current] = append(blocks[current], nil)
			continue
		}
		appendLine(line)
	}

	if !matchedAny {
		result.NoHeadings = true
		result.Unstructured = &SectionExtract{
			Model:     resp.Model,
			SectionID: UnstructuredSectionID,
			Text:      strings.TrimSpace(resp.Raw),
		}
		return result
	}

	for _, s := range rubric {
		if text := joinBlocks(blocks[s.ID]); text != "" {
			result.Extracts = append(result.Extracts, SectionExtract{
				Model:     resp.Model,
				SectionID: s.ID,
				Text:      text,
			})
		}
	}
	if text := joinBlocks(blocks[UnstructuredSectionID]); text != "" {
		result.Unstructured = &SectionExtract{
			Model:     resp.Model,
			SectionID: UnstructuredSectionID,
			Text:      text,
		}
	}
	return result
}

// matchHeading tries each matcher in priority order and, on a hit, maps
// the candidate heading onto a rubric section.
func matchHeading(line string, rubric Rubric, matchers []HeadingMatcher) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	for _, m := range matchers {
		groups := m.Pattern.FindStringSubmatch(trimmed)
		if groups == nil {
			continue
		}
		if id, ok := matchSection(groups[1], rubric); ok {
			return id, true
		}
		// Heading-shaped but not a rubric title (e.g. "## Strengths"
		// inside a section): treat as ordinary text.
		return "", false
	}
	return "", false
}

// matchSection maps a normalized candidate heading to the closest rubric
// section by containment in either direction. When several sections
// match, the longest title wins.
func matchSection(heading string, rubric Rubric) (string, bool) {
	norm := normalizeHeading(heading)
	if norm == "" {
		return "", false
	}
	bestID, bestLen := "", 0
	for _, s := range rubric {
		title := normalizeHeading(s.Title)
		if title == "" {
			continue
		}
		if strings.Contains(norm, title) || strings.Contains(title, norm) {
			if len(title) > bestLen {
				bestID, bestLen = s.ID, len(title)
			}
		}
	}
	return bestID, bestID != ""
}

var (
	headingNumbering = regexp.MustCompile(`^(?:section\s+)?\d{1,2}[.):]?\s*`)
	headingStrip     = regexp.MustCompile(`[^a-z0-9 ]+`)
	headingSpaces    = regexp.MustCompile(`\s+`)
)

// normalizeHeading lower-cases a candidate heading and strips numbering,
// punctuation and markdown emphasis so vendor formatting differences do
// not defeat the section match.
func normalizeHeading(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = headingNumbering.ReplaceAllString(h, "")
	h = headingStrip.ReplaceAllString(h, " ")
	h = headingSpaces.ReplaceAllString(h, " ")
	return strings.TrimSpace(h)
}

// joinBlocks trims each heading-delimited block and joins repeats with
// the section-break marker.
func joinBlocks(blocks [][]string) string {
	var parts []string
	for _, lines := range blocks {
		if text := strings.TrimSpace(strings.Join(lines, "\n")); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, sectionBreak)
}
