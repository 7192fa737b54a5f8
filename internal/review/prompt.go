package review

import (
	"fmt"
	"strings"
)

// maxOutlineChars limits outline content sent to the models. Long
// manuscripts get truncated at a paragraph boundary so every model sees
// the same text.
const maxOutlineChars = 24000

// BuildPrompt renders the evaluation prompt sent to every model: the
// rubric sections in order, each with its guiding questions, followed by
// the outline itself. Models are told to answer under matching markdown
// headings so the extractor can file their text back onto the rubric.
func BuildPrompt(rubric Rubric, outline string) string {
	var b strings.Builder

	b.WriteString("You are an experienced developmental editor reviewing a creative-writing outline.\n")
	b.WriteString("Evaluate the outline against every section of the rubric below, in order.\n")
	b.WriteString("Answer each section under a markdown heading that repeats the section title exactly, e.g. \"## Plot Structure\".\n")
	b.WriteString("Where a section asks for a rating, give it in the form \"N/10\".\n")
	b.WriteString("Do not skip sections.\n\nRubric:\n")

	for i, s := range rubric {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Title)
		for _, q := range s.Questions {
			fmt.Fprintf(&b, "   - %s\n", q)
		}
	}

	b.WriteString("\nOutline:\n\n")
	b.WriteString(truncateOutline(outline, maxOutlineChars))
	return b.String()
}

// truncateOutline cuts content to maxChars, preferring a paragraph break
// past the halfway point.
func truncateOutline(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	truncated := content[:maxChars]
	if lastPara := strings.LastIndex(truncated, "\n\n"); lastPara > maxChars/2 {
		truncated = truncated[:lastPara]
	}
	return truncated + "\n\n[Outline truncated for evaluation...]"
}
