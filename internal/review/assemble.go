package review

import (
	"fmt"
	"strings"
)

// Assemble renders the aggregate report as one markdown document. Model
// text is reproduced verbatim, never summarized, so every judgment stays
// attributable to the model that made it. Models that gave no feedback
// for a section are listed with an explicit marker rather than skipped.
func Assemble(report *AggregateReport) string {
	var b strings.Builder

	title := report.Title
	if title == "" {
		title = "Outline Review"
	}
	fmt.Fprintf(&b, "# %s — Comparative Model Report\n\n", title)
	b.WriteString(executiveSummary(report))

	for i, sr := range report.Sections {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, sr.Section.Title)

		extractsByModel := make(map[string]SectionExtract, len(sr.Extracts))
		for _, e := range sr.Extracts {
			extractsByModel[e.Model.ID] = e
		}

		for _, resp := range report.Responses {
			if e, ok := extractsByModel[resp.Model.ID]; ok {
				fmt.Fprintf(&b, "**%s:**\n\n%s\n\n", resp.Model.Label, e.Text)
				continue
			}
			fmt.Fprintf(&b, "**%s:** _%s_\n\n", resp.Model.Label, noResponseMarker(resp))
		}

		fmt.Fprintf(&b, "**Agreement Analysis:** %s\n", sr.Verdict.Level.Sentence())
	}

	if len(report.Unstructured) > 0 {
		b.WriteString("\n## Unstructured Feedback — MANUAL REVIEW REQUIRED\n\n")
		b.WriteString("The following response text could not be attributed to any rubric section. ")
		b.WriteString("It is reproduced in full below and must be reviewed by hand.\n\n")
		for _, e := range report.Unstructured {
			fmt.Fprintf(&b, "**%s:**\n\n%s\n\n", e.Model.Label, e.Text)
		}
	}

	b.WriteString(metadataFooter(report))
	return b.String()
}

// executiveSummary condenses the verdict distribution and responder
// counts into the header block.
func executiveSummary(report *AggregateReport) string {
	var b strings.Builder

	responding := 0
	for _, resp := range report.Responses {
		if !resp.Status.Failed() {
			responding++
		}
	}
	counts := make(map[AgreementLevel]int)
	for _, sr := range report.Sections {
		counts[sr.Verdict.Level]++
	}

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "%d of %d configured models responded across %d rubric sections.\n\n",
		responding, len(report.Responses), len(report.Sections))
	fmt.Fprintf(&b,
		"Section agreement: %d strong, %d moderate, %d mixed, %d single-model, %d without feedback.\n\n",
		counts[StrongAgreement], counts[ModerateAgreement], counts[MixedReviews],
		counts[SingleModelOnly], counts[NoFeedback])
	b.WriteString("Agreement classifications are heuristic, derived from free-text polarity and explicit ratings; they are best-effort signals, not statistical measures.\n")
	return b.String()
}

func noResponseMarker(resp ModelResponse) string {
	switch resp.Status {
	case StatusTimeout:
		return "no response (timed out)"
	case StatusTransportError:
		return "no response (request failed)"
	case StatusEmpty:
		return "no response (empty reply)"
	default:
		return "no response for this section"
	}
}

// metadataFooter lists every configured model with its final status plus
// the run timestamps.
func metadataFooter(report *AggregateReport) string {
	var b strings.Builder
	b.WriteString("\n---\n\n## Run Metadata\n\n")
	b.WriteString("| Model | Status |\n|---|---|\n")
	for _, resp := range report.Responses {
		fmt.Fprintf(&b, "| %s | %s |\n", resp.Model.Label, resp.Status)
	}
	fmt.Fprintf(&b, "\nRun started %s, finished %s.\n",
		report.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		report.FinishedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	return b.String()
}
