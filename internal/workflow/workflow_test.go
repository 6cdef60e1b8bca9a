// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/research-council/pkg/types"
)

var reviewerNames = []string{"methodology", "comprehensiveness", "clarity"}

// makeRound builds a review round with the given criteria sums; the overall
// score of review i is sums[i]/5.
func makeRound(iteration int, sums ...int) types.ReviewRound {
	round := types.ReviewRound{Iteration: iteration}
	for i, sum := range sums {
		score := types.ReviewScore{
			Reviewer:     reviewerNames[i],
			Improvements: []string{fmt.Sprintf("improve %s aspect", reviewerNames[i])},
		}
		for j := 0; j < types.NumCriteria; j++ {
			share := sum / types.NumCriteria
			if j < sum%types.NumCriteria {
				share++
			}
			score.Criteria[j] = share
		}
		round.Reviews = append(round.Reviews, score)
	}
	return round
}

// fakeResearcher scripts report texts and records revision briefs.
type fakeResearcher struct {
	reports []string
	briefs  []string
	err     error
	calls   int
}

func (f *fakeResearcher) Research(_ context.Context, query string) (types.ResearchReport, error) {
	return f.next(1)
}

func (f *fakeResearcher) Revise(_ context.Context, brief string, iteration int) (types.ResearchReport, error) {
	f.briefs = append(f.briefs, brief)
	return f.next(iteration)
}

func (f *fakeResearcher) next(iteration int) (types.ResearchReport, error) {
	if f.err != nil {
		return types.ResearchReport{}, f.err
	}
	if f.calls >= len(f.reports) {
		return types.ResearchReport{}, fmt.Errorf("unexpected research call %d", f.calls+1)
	}
	text := f.reports[f.calls]
	f.calls++
	return types.ResearchReport{Iteration: iteration, Text: text}, nil
}

// fakePanel replays scripted rounds and applies the standard 2-of-3 rule.
type fakePanel struct {
	rounds []types.ReviewRound
	served int
}

func (f *fakePanel) Review(_ context.Context, report types.ResearchReport) types.ReviewRound {
	round := f.rounds[f.served]
	f.served++
	round.Iteration = report.Iteration
	return round
}

func (f *fakePanel) Accepted(round types.ReviewRound) bool {
	passing := 0
	for _, s := range round.Scores() {
		if s >= 3.0 {
			passing++
		}
	}
	return passing >= 2
}

func stubIdentity(t *testing.T) {
	t.Helper()
	oldID, oldNow := newRunID, now
	newRunID = func() string { return "run-0001" }
	now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { newRunID, now = oldID, oldNow })
}

func TestExecuteAcceptedFirstIteration(t *testing.T) {
	stubIdentity(t)
	researcher := &fakeResearcher{reports: []string{"initial report"}}
	// Scores 3.2, 2.8, 3.0: two at or above threshold.
	panel := &fakePanel{rounds: []types.ReviewRound{makeRound(1, 16, 14, 15)}}
	o := &Orchestrator{Researcher: researcher, Council: panel}

	result, err := o.Execute(context.Background(), "quantum computing")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Status != types.StatusAccepted {
		t.Errorf("Status = %q, want accepted", result.Status)
	}
	if result.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", result.Iterations)
	}
	if result.Report.Text != "initial report" {
		t.Errorf("Report.Text = %q", result.Report.Text)
	}
	if len(result.AllReports) != 1 || len(result.AllReviews) != 1 {
		t.Errorf("AllReports=%d AllReviews=%d, want 1 each", len(result.AllReports), len(result.AllReviews))
	}
	if len(researcher.briefs) != 0 {
		t.Error("no revision should happen on acceptance")
	}
	if result.RunID != "run-0001" {
		t.Errorf("RunID = %q", result.RunID)
	}
	want := []float64{3.2, 2.8, 3.0}
	for i, s := range want {
		if result.FinalScores[i] != s {
			t.Errorf("FinalScores[%d] = %v, want %v", i, result.FinalScores[i], s)
		}
	}
}

func TestExecuteRevisionAccepted(t *testing.T) {
	stubIdentity(t)
	researcher := &fakeResearcher{reports: []string{"first draft", "revised draft"}}
	panel := &fakePanel{rounds: []types.ReviewRound{
		makeRound(1, 14, 12, 10), // 2.8, 2.4, 2.0: rejected
		makeRound(2, 18, 17, 16), // 3.6, 3.4, 3.2: accepted
	}}
	o := &Orchestrator{Researcher: researcher, Council: panel}

	result, err := o.Execute(context.Background(), "fusion energy")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Status != types.StatusAccepted {
		t.Errorf("Status = %q", result.Status)
	}
	if result.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", result.Iterations)
	}
	if result.Report.Text != "revised draft" || result.Report.Iteration != 2 {
		t.Errorf("Report = %+v, want revised draft at iteration 2", result.Report)
	}
	if len(result.AllReports) != 2 || len(result.AllReviews) != 2 {
		t.Errorf("AllReports=%d AllReviews=%d, want 2 each", len(result.AllReports), len(result.AllReviews))
	}

	// The brief must carry the query, the failing reviewers' priorities,
	// and their improvement points.
	if len(researcher.briefs) != 1 {
		t.Fatalf("briefs = %d, want 1", len(researcher.briefs))
	}
	brief := researcher.briefs[0]
	for _, want := range []string{
		"fusion energy",
		"CRITICAL: address methodology and evidence issues",
		"CRITICAL: expand topic coverage",
		"CRITICAL: improve clarity and organization",
		"improve comprehensiveness aspect",
	} {
		if !strings.Contains(brief, want) {
			t.Errorf("brief missing %q", want)
		}
	}
}

func TestExecuteMaxIterationsReturnsLastReport(t *testing.T) {
	stubIdentity(t)
	researcher := &fakeResearcher{reports: []string{"first draft", "worse revision"}}
	panel := &fakePanel{rounds: []types.ReviewRound{
		makeRound(1, 14, 14, 14), // 2.8 each: rejected
		makeRound(2, 10, 10, 10), // 2.0 each: rejected and worse
	}}
	o := &Orchestrator{Researcher: researcher, Council: panel}

	result, err := o.Execute(context.Background(), "query")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Status != types.StatusMaxIterations {
		t.Errorf("Status = %q, want completed_max_iterations", result.Status)
	}
	// Last, not best: the second report is returned even though it scored
	// lower than the first.
	if result.Report.Text != "worse revision" {
		t.Errorf("Report.Text = %q, want the most recent report", result.Report.Text)
	}
	if result.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", result.Iterations)
	}
	if len(result.AllReports) != 2 {
		t.Errorf("len(AllReports) = %d, want exactly the iteration budget", len(result.AllReports))
	}
	want := []float64{2.0, 2.0, 2.0}
	for i, s := range want {
		if result.FinalScores[i] != s {
			t.Errorf("FinalScores[%d] = %v, want %v", i, result.FinalScores[i], s)
		}
	}
}

func TestExecuteNeverExceedsBudget(t *testing.T) {
	stubIdentity(t)
	researcher := &fakeResearcher{reports: []string{"r1", "r2", "r3"}}
	panel := &fakePanel{rounds: []types.ReviewRound{
		makeRound(1, 5, 5, 5),
		makeRound(2, 5, 5, 5),
		makeRound(3, 5, 5, 5),
	}}
	o := &Orchestrator{Researcher: researcher, Council: panel, MaxIterations: 2}

	result, err := o.Execute(context.Background(), "query")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if researcher.calls != 2 {
		t.Errorf("research calls = %d, want 2", researcher.calls)
	}
	if len(result.AllReports) != 2 {
		t.Errorf("len(AllReports) = %d, want 2", len(result.AllReports))
	}
}

func TestExecuteResearcherErrorAborts(t *testing.T) {
	stubIdentity(t)
	researcher := &fakeResearcher{err: fmt.Errorf("model unavailable")}
	o := &Orchestrator{Researcher: researcher, Council: &fakePanel{}}

	_, err := o.Execute(context.Background(), "query")
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Errorf("expected researcher failure to surface: %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "iteration 1") {
		t.Errorf("error should name the iteration: %v", err)
	}
}

func TestRevisionBriefNoImprovements(t *testing.T) {
	round := makeRound(1, 10, 10, 10)
	round.Reviews[0].Improvements = nil

	brief := revisionBrief("query", round)
	if !strings.Contains(brief, "no specific improvement points provided") {
		t.Error("brief should note reviewers with no improvement points")
	}
}

func TestCriticalPrioritiesOnlyFailingReviewers(t *testing.T) {
	// 3.2 passes, 2.8 and 2.0 fail.
	round := makeRound(1, 16, 14, 10)

	priorities := criticalPriorities(round)
	if len(priorities) != 2 {
		t.Fatalf("priorities = %v, want 2", priorities)
	}
	joined := strings.Join(priorities, "\n")
	if strings.Contains(joined, "methodology") {
		t.Error("passing reviewer should not produce a priority")
	}
}
