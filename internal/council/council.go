// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package council implements the three-member review council. Each member
// grades a research report independently against its own rubric; the
// reviews run concurrently and are joined into a ReviewRound in fixed
// council order.
package council

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/research-council/internal/llm"
	"github.com/pdiddy/research-council/pkg/types"
)

const (
	defaultPassThreshold = 3.0
	defaultQuorum        = 2
)

// Council is the fixed set of reviewers plus the acceptance rule.
type Council struct {
	Reviewers []*Reviewer

	// PassThreshold is the overall score a reviewer must reach to count
	// as passing.
	PassThreshold float64

	// Quorum is how many passing reviewers acceptance requires.
	Quorum int
}

// New builds the standard council from config. Each reviewer gets its own
// client so the members can run different models. Rubric overrides are
// loaded here so a bad file fails at startup, not mid-run.
func New(cfg types.CouncilConfig, methodology, comprehensiveness, clarity llm.Client) (*Council, error) {
	members := []struct {
		cfg     types.ReviewerConfig
		client  llm.Client
		builtin func() Rubric
	}{
		{cfg.Methodology, methodology, MethodologyRubric},
		{cfg.Comprehensiveness, comprehensiveness, ComprehensivenessRubric},
		{cfg.Clarity, clarity, ClarityRubric},
	}

	c := &Council{
		PassThreshold: cfg.PassThreshold,
		Quorum:        cfg.Quorum,
	}
	if c.PassThreshold == 0 {
		c.PassThreshold = defaultPassThreshold
	}
	if c.Quorum == 0 {
		c.Quorum = defaultQuorum
	}

	for _, m := range members {
		rubric := m.builtin()
		if m.cfg.RubricFile != "" {
			override, err := LoadRubric(m.cfg.RubricFile)
			if err != nil {
				return nil, fmt.Errorf("council reviewer %s: %w", rubric.Name, err)
			}
			rubric = override
		}
		c.Reviewers = append(c.Reviewers, &Reviewer{Rubric: rubric, Client: m.client})
	}
	return c, nil
}

// Review fans the report out to all members concurrently and joins the
// results in council order.
func (c *Council) Review(ctx context.Context, report types.ResearchReport) types.ReviewRound {
	round := types.ReviewRound{
		Iteration: report.Iteration,
		Reviews:   make([]types.ReviewScore, len(c.Reviewers)),
	}

	var wg sync.WaitGroup
	for i, r := range c.Reviewers {
		wg.Add(1)
		go func(i int, r *Reviewer) {
			defer wg.Done()
			round.Reviews[i] = r.Review(ctx, report.Text)
		}(i, r)
	}
	wg.Wait()

	return round
}

// Accepted applies the acceptance rule: at least Quorum reviewers with an
// overall score at or above PassThreshold.
func (c *Council) Accepted(round types.ReviewRound) bool {
	passing := 0
	for _, score := range round.Scores() {
		if score >= c.PassThreshold {
			passing++
		}
	}
	return passing >= c.Quorum
}
