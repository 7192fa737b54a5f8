package review

import (
	"fmt"
)

// UnstructuredSectionID is the reserved pseudo-section that receives
// response text the parser could not attribute to any rubric section.
const UnstructuredSectionID = "unstructured"

// RubricSection is one evaluation axis of the rubric: a title plus the
// guiding sub-questions the models are asked to address.
type RubricSection struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Questions []string `json:"questions,omitempty"`
}

// Rubric is the fixed, ordered list of sections applied uniformly to
// every model in a run.
type Rubric []RubricSection

// Validate checks that the rubric is non-empty and section IDs are unique
// and do not collide with the reserved unstructured pseudo-section.
func (r Rubric) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("rubric has no sections")
	}
	seen := make(map[string]bool, len(r))
	for i, s := range r {
		if s.ID == "" || s.Title == "" {
			return fmt.Errorf("rubric section %d: id and title are required", i)
		}
		if s.ID == UnstructuredSectionID {
			return fmt.Errorf("rubric section %q: id is reserved", s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("rubric section %q: duplicate id", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Section looks up a section by ID.
func (r Rubric) Section(id string) (RubricSection, bool) {
	for _, s := range r {
		if s.ID == id {
			return s, true
		}
	}
	return RubricSection{}, false
}

// DefaultRubric is the stock outline-evaluation rubric used when the
// caller does not supply one.
func DefaultRubric() Rubric {
	return Rubric{
		{ID: "premise", Title: "Premise and Hook", Questions: []string{
			"Is the central premise original and compelling?",
			"Does the opening promise a story worth following?",
		}},
		{ID: "plot-structure", Title: "Plot Structure", Questions: []string{
			"Does the outline have a coherent beginning, middle, and end?",
			"Are the major turning points well placed?",
		}},
		{ID: "character-development", Title: "Character Development", Questions: []string{
			"Do the main characters have clear arcs?",
			"Are motivations believable and consistent?",
		}},
		{ID: "conflict-stakes", Title: "Conflict and Stakes", Questions: []string{
			"Is the central conflict strong enough to sustain the story?",
			"Do the stakes escalate meaningfully?",
		}},
		{ID: "pacing", Title: "Pacing", Questions: []string{
			"Does the story move at an appropriate speed for its genre?",
			"Are there sections that drag or feel rushed?",
		}},
		{ID: "theme", Title: "Theme and Meaning", Questions: []string{
			"Are the themes integrated into plot and character rather than stated?",
		}},
		{ID: "setting", Title: "Setting and Worldbuilding", Questions: []string{
			"Is the world distinct and consistent?",
			"Does the setting serve the story?",
		}},
		{ID: "pov", Title: "Point of View and Voice", Questions: []string{
			"Is the chosen point of view the right one for this story?",
		}},
		{ID: "subplot-balance", Title: "Subplot Balance", Questions: []string{
			"Do the subplots support the main plot without overwhelming it?",
		}},
		{ID: "overall", Title: "Overall Assessment", Questions: []string{
			"What are the outline's greatest strengths and weaknesses?",
			"Give an overall rating out of 10.",
		}},
	}
}
