// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-council
// workflow: tool invocation records, research reports, council review
// scores, and the packaged workflow result.
package types

import "time"

// ToolInvocationRecord captures one tool call made by the researcher agent.
// Records are append-only; the ordered sequence forms the run transcript.
type ToolInvocationRecord struct {
	// Tool is the tool name (e.g. "web_search").
	Tool string `json:"tool" yaml:"tool"`

	// Arguments is the raw JSON argument object the agent supplied.
	Arguments string `json:"arguments" yaml:"arguments"`

	// Observation is the tool's result, or an error description when the
	// call failed. Failures are observations, not run-level errors.
	Observation string `json:"observation" yaml:"observation"`

	// IsError reports whether the observation describes a tool failure.
	IsError bool `json:"is_error" yaml:"is_error"`

	// Timestamp is when the call completed.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ResearchReport is one version of the researcher agent's output. Iteration 1
// is the initial report; iteration 2, if produced, supersedes it for final
// output purposes, but both versions are retained for the transcript.
type ResearchReport struct {
	// Iteration is the research pass that produced this report (1 or 2).
	Iteration int `json:"iteration" yaml:"iteration"`

	// Text is the report body.
	Text string `json:"text" yaml:"text"`

	// ToolCalls is the ordered record of tool invocations made while
	// producing this version.
	ToolCalls []ToolInvocationRecord `json:"tool_calls" yaml:"tool_calls"`
}

// NumCriteria is the number of scored criteria per reviewer rubric.
const NumCriteria = 5

// ReviewScore is one reviewer's structured assessment of a report.
type ReviewScore struct {
	// Reviewer identifies the council member (e.g. "methodology").
	Reviewer string `json:"reviewer" yaml:"reviewer"`

	// Criteria holds the five per-criterion scores, each in [1,5]. A parse
	// failure leaves all criteria at zero.
	Criteria [NumCriteria]int `json:"criteria" yaml:"criteria,flow"`

	// Feedback is the reviewer's free-text assessment.
	Feedback string `json:"feedback" yaml:"feedback"`

	// Improvements lists the reviewer's actionable revision points.
	Improvements []string `json:"improvements,omitempty" yaml:"improvements,omitempty"`

	// Recommendation is ACCEPT, REVISE, or ERROR when the review call failed.
	Recommendation string `json:"recommendation" yaml:"recommendation"`
}

// Overall returns the arithmetic mean of the five criterion scores.
func (r ReviewScore) Overall() float64 {
	sum := 0
	for _, c := range r.Criteria {
		sum += c
	}
	return float64(sum) / float64(NumCriteria)
}

// Valid reports whether every criterion score lies in [1,5].
func (r ReviewScore) Valid() bool {
	for _, c := range r.Criteria {
		if c < 1 || c > 5 {
			return false
		}
	}
	return true
}

// ReviewRound holds the three independent reviews of one report version.
type ReviewRound struct {
	// Iteration is the research pass the round reviewed (1 or 2).
	Iteration int `json:"iteration" yaml:"iteration"`

	// Reviews holds one ReviewScore per council member, in council order.
	Reviews []ReviewScore `json:"reviews" yaml:"reviews"`
}

// Scores returns the overall score of each review in council order.
func (r ReviewRound) Scores() []float64 {
	scores := make([]float64, len(r.Reviews))
	for i, rev := range r.Reviews {
		scores[i] = rev.Overall()
	}
	return scores
}

// WorkflowStatus is the terminal state of a research workflow run.
type WorkflowStatus string

const (
	// StatusAccepted means the council accepted a report version.
	StatusAccepted WorkflowStatus = "accepted"

	// StatusMaxIterations means the iteration budget was exhausted without
	// acceptance; the most recent report is returned regardless.
	StatusMaxIterations WorkflowStatus = "completed_max_iterations"
)

// WorkflowResult packages the outcome of one research workflow run.
// Budget exhaustion is a defined terminal outcome, never an empty result.
type WorkflowResult struct {
	// RunID is the unique identifier assigned to this run.
	RunID string `json:"run_id" yaml:"run_id"`

	// Query is the user's research question.
	Query string `json:"query" yaml:"query"`

	// Status is accepted or completed_max_iterations.
	Status WorkflowStatus `json:"status" yaml:"status"`

	// Report is the final report: the most recent version, regardless of
	// its scores relative to earlier versions.
	Report ResearchReport `json:"report" yaml:"report"`

	// AllReports holds every report version produced, in iteration order.
	AllReports []ResearchReport `json:"all_reports" yaml:"all_reports"`

	// AllReviews holds every review round, in iteration order.
	AllReviews []ReviewRound `json:"all_reviews" yaml:"all_reviews"`

	// Iterations is the number of research passes completed.
	Iterations int `json:"iterations" yaml:"iterations"`

	// FinalScores are the overall scores from the last review round.
	FinalScores []float64 `json:"final_scores" yaml:"final_scores"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}
