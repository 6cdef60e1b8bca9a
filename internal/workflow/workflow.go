// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow orchestrates the research loop: the researcher produces
// a report, the council reviews it, and the loop either accepts or sends
// the researcher back with feedback. The loop is bounded; when the budget
// runs out the most recent report is returned with its reviews regardless
// of how it scored.
package workflow

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-council/pkg/types"
)

const defaultMaxIterations = 2

// newRunID is substituted in tests for stable identifiers.
var newRunID = uuid.NewString

// now is substituted in tests for deterministic timing.
var now = time.Now

// Researcher produces and revises reports.
type Researcher interface {
	Research(ctx context.Context, query string) (types.ResearchReport, error)
	Revise(ctx context.Context, brief string, iteration int) (types.ResearchReport, error)
}

// ReviewPanel grades reports and applies the acceptance rule.
type ReviewPanel interface {
	Review(ctx context.Context, report types.ResearchReport) types.ReviewRound
	Accepted(round types.ReviewRound) bool
}

// Orchestrator runs the research-review loop.
type Orchestrator struct {
	Researcher Researcher
	Council    ReviewPanel

	// MaxIterations bounds research passes including the first (default 2).
	MaxIterations int

	// Progress receives human-readable phase logging. Defaults to io.Discard.
	Progress io.Writer
}

// Execute runs the full workflow for query. The returned result always
// carries the most recent report; a rejected final iteration is returned
// with status completed_max_iterations, never discarded.
func (o *Orchestrator) Execute(ctx context.Context, query string) (types.WorkflowResult, error) {
	progress := o.Progress
	if progress == nil {
		progress = io.Discard
	}
	maxIterations := o.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	result := types.WorkflowResult{
		RunID:     newRunID(),
		Query:     query,
		StartedAt: now(),
	}

	for iteration := 1; iteration <= maxIterations; iteration++ {
		var (
			report types.ResearchReport
			err    error
		)
		if iteration == 1 {
			fmt.Fprintf(progress, "iteration %d: researching\n", iteration)
			report, err = o.Researcher.Research(ctx, query)
		} else {
			fmt.Fprintf(progress, "iteration %d: revising with council feedback\n", iteration)
			brief := revisionBrief(query, result.AllReviews[len(result.AllReviews)-1])
			report, err = o.Researcher.Revise(ctx, brief, iteration)
		}
		if err != nil {
			return types.WorkflowResult{}, fmt.Errorf("iteration %d: %w", iteration, err)
		}

		result.AllReports = append(result.AllReports, report)
		result.Report = report
		result.Iterations = iteration

		fmt.Fprintf(progress, "iteration %d: council review\n", iteration)
		round := o.Council.Review(ctx, report)
		result.AllReviews = append(result.AllReviews, round)
		result.FinalScores = round.Scores()

		if o.Council.Accepted(round) {
			fmt.Fprintf(progress, "iteration %d: accepted %v\n", iteration, result.FinalScores)
			result.Status = types.StatusAccepted
			result.FinishedAt = now()
			return result, nil
		}
		fmt.Fprintf(progress, "iteration %d: rejected %v\n", iteration, result.FinalScores)
	}

	result.Status = types.StatusMaxIterations
	result.FinishedAt = now()
	return result, nil
}
