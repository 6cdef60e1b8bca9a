// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package council

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/research-council/internal/llm"
	"github.com/pdiddy/research-council/pkg/types"
)

// Recommendation values emitted by reviewers.
const (
	RecommendAccept  = "ACCEPT"
	RecommendRevise  = "REVISE"
	RecommendUnknown = "UNKNOWN"
	RecommendError   = "ERROR"
)

var (
	recommendRe   = regexp.MustCompile(`(?i)Recommendation:\s*\**\s*(ACCEPT|REVISE)`)
	improvementRe = regexp.MustCompile(`(?is)#+\s*Areas for Improvement:?\s*(.*?)(?:#+|\z)`)
	bulletRe      = regexp.MustCompile(`(?m)^\s*[-*]\s+(.+)$`)
)

// Reviewer is one council member: a rubric bound to a model client.
type Reviewer struct {
	Rubric Rubric
	Client llm.Client
}

// Review grades a report against the rubric. A model failure or an
// unparseable response yields a zero-score review with an ERROR or the
// parse failure recorded in the feedback; it never returns an error, so a
// broken reviewer cannot sink the round.
func (r *Reviewer) Review(ctx context.Context, reportText string) types.ReviewScore {
	resp, err := r.Client.Chat(ctx, llm.ChatRequest{
		System: r.Rubric.systemPrompt(),
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: "Review the following research report:\n\n" + reportText,
		}},
	})
	if err != nil {
		return types.ReviewScore{
			Reviewer:       r.Rubric.Name,
			Feedback:       fmt.Sprintf("review failed: %v", err),
			Recommendation: RecommendError,
		}
	}
	return parseReview(r.Rubric, resp.Content)
}

// parseReview extracts the structured score from a reviewer response. Any
// missing or out-of-range criterion zeroes the whole review; a review that
// cannot be scored must read as failing, not as passing.
func parseReview(rubric Rubric, text string) types.ReviewScore {
	score := types.ReviewScore{
		Reviewer:       rubric.Name,
		Feedback:       text,
		Recommendation: RecommendUnknown,
	}

	for i, c := range rubric.Criteria {
		v, ok := criterionScore(text, c.Name)
		if !ok {
			return types.ReviewScore{
				Reviewer:       rubric.Name,
				Feedback:       fmt.Sprintf("unparseable review: no score for %q\n\n%s", c.Name, text),
				Recommendation: RecommendError,
			}
		}
		if v < 1 || v > 5 {
			return types.ReviewScore{
				Reviewer:       rubric.Name,
				Feedback:       fmt.Sprintf("unparseable review: score %d for %q outside [1,5]\n\n%s", v, c.Name, text),
				Recommendation: RecommendError,
			}
		}
		score.Criteria[i] = v
	}

	if m := recommendRe.FindStringSubmatch(text); m != nil {
		score.Recommendation = strings.ToUpper(m[1])
	}
	if m := improvementRe.FindStringSubmatch(text); m != nil {
		for _, b := range bulletRe.FindAllStringSubmatch(m[1], -1) {
			score.Improvements = append(score.Improvements, strings.TrimSpace(b[1]))
		}
	}
	return score
}

// criterionScore finds "**<name>**: 4/5" style lines, tolerating brackets
// and missing bold markers.
func criterionScore(text, name string) (int, bool) {
	re := regexp.MustCompile(`(?i)\**` + regexp.QuoteMeta(name) + `\**:\s*\[?(\d)\]?\s*/\s*5`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}
