// Package review implements the multi-model outline review pipeline:
// dispatch one rubric evaluation request per configured model, extract
// each response back onto the rubric sections, collate a per-section
// cross-model agreement verdict and assemble the comparative report.
package review

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ErrAllModelsFailed is returned when no configured model produced a
// usable response; a run with zero feedback is a failed run, never a
// quietly empty report.
var ErrAllModelsFailed = fmt.Errorf("all configured models failed")

// Run executes the full pipeline for one outline. Dispatch runs
// concurrently; parsing, collation and assembly run sequentially once
// every model query has settled. The returned report contains every
// rubric section exactly once, in rubric order.
func Run(ctx context.Context, cfg RunConfiguration, outline string, backends Backends) (*AggregateReport, error) {
	if err := cfg.Rubric.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rubric: %w", err)
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("no models configured")
	}
	if cfg.Collator.RatingTolerance == 0 && len(cfg.Collator.PositiveTerms) == 0 {
		cfg.Collator = DefaultCollatorConfig()
	}

	startedAt := time.Now()
	prompt := BuildPrompt(cfg.Rubric, outline)

	responses := Dispatch(ctx, cfg, prompt, backends)
	if ctx.Err() != nil && !cfg.RetainPartial {
		return nil, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	succeeded := 0
	for _, resp := range responses {
		if !resp.Status.Failed() {
			succeeded++
		} else {
			log.Printf("model %s failed: %s (%s)", resp.Model.ID, resp.Status, resp.Err)
		}
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("%w: 0 of %d models responded", ErrAllModelsFailed, len(responses))
	}

	report := &AggregateReport{
		Title:     cfg.Title,
		Responses: responses,
		StartedAt: startedAt,
	}

	extractsBySection := make(map[string][]SectionExtract)
	for _, resp := range responses {
		parsed := Parse(resp, cfg.Rubric, cfg.matchers())
		if parsed.NoHeadings && parsed.Unstructured != nil {
			log.Printf("model %s: no section headings detected, flagging response for manual review", resp.Model.ID)
		}
		for _, e := range parsed.Extracts {
			extractsBySection[e.SectionID] = append(extractsBySection[e.SectionID], e)
		}
		if parsed.Unstructured != nil {
			report.Unstructured = append(report.Unstructured, *parsed.Unstructured)
		}
	}

	for _, section := range cfg.Rubric {
		extracts := extractsBySection[section.ID]
		report.Sections = append(report.Sections, SectionResult{
			Section:  section,
			Extracts: extracts,
			Verdict:  Collate(section.ID, extracts, cfg.Collator),
		})
	}

	report.FinishedAt = time.Now()
	return report, nil
}
