// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"fmt"
	"strings"

	"github.com/pdiddy/research-council/pkg/types"
)

// revisionBrief turns a rejected review round into the researcher's next
// task: the original query, per-reviewer improvement points, and critical
// priorities for every reviewer that scored below 3.
func revisionBrief(query string, round types.ReviewRound) string {
	var b strings.Builder

	b.WriteString("REVISION REQUEST: your research has been reviewed by the council and needs improvement.\n\n")
	fmt.Fprintf(&b, "Original research query: %s\n\n", query)
	fmt.Fprintf(&b, "Council review scores: %s\n\n", formatScores(round.Scores()))

	if priorities := criticalPriorities(round); len(priorities) > 0 {
		b.WriteString("TOP PRIORITIES FOR REVISION:\n")
		for _, p := range priorities {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}

	b.WriteString("DETAILED FEEDBACK FROM COUNCIL:\n\n")
	for _, review := range round.Reviews {
		fmt.Fprintf(&b, "%s (overall %.1f):\n", strings.ToUpper(review.Reviewer), review.Overall())
		if len(review.Improvements) == 0 {
			b.WriteString("- no specific improvement points provided\n")
		}
		for _, imp := range review.Improvements {
			fmt.Fprintf(&b, "- %s\n", imp)
		}
		b.WriteString("\n")
	}

	b.WriteString(`INSTRUCTIONS FOR REVISION:
1. Address all critical priority items listed above.
2. Use additional research tools to gather more sources if needed.
3. Improve source quality by prioritizing authoritative sources.
4. Maintain the strengths of your original research while addressing weaknesses.

Your revised research will be reviewed again by the same council. Conduct your revision now.`)

	return b.String()
}

// criticalPriorities maps each failing reviewer to a directive matching
// its focus area.
func criticalPriorities(round types.ReviewRound) []string {
	directives := map[string]string{
		"methodology":       "address methodology and evidence issues",
		"comprehensiveness": "expand topic coverage",
		"clarity":           "improve clarity and organization",
	}

	var priorities []string
	for _, review := range round.Reviews {
		if review.Overall() >= 3.0 {
			continue
		}
		directive, ok := directives[review.Reviewer]
		if !ok {
			directive = fmt.Sprintf("address the %s reviewer's feedback", review.Reviewer)
		}
		priorities = append(priorities, "CRITICAL: "+directive)
	}
	return priorities
}

func formatScores(scores []float64) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%.1f", s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
