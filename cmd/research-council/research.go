// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-council/internal/cache"
	"github.com/pdiddy/research-council/internal/council"
	"github.com/pdiddy/research-council/internal/llm"
	"github.com/pdiddy/research-council/internal/researcher"
	"github.com/pdiddy/research-council/internal/store"
	"github.com/pdiddy/research-council/internal/tools"
	"github.com/pdiddy/research-council/internal/workflow"
	"github.com/pdiddy/research-council/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "research-council/0.1"
)

var researchCmd = &cobra.Command{
	Use:   "research [query...]",
	Short: "Run a research query through the researcher and council",
	Long: `Research sends a query to the researcher agent, which gathers evidence
with web search, scraping, document analysis, synthesis, and citation
tools. A council of three reviewers (methodology, comprehensiveness,
clarity) then grades the report. If fewer than two reviewers score it
3.0 or higher, the researcher revises once with their feedback.

The final report is printed to stdout and the full run is saved to the
local run store.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("model", "", "researcher model identifier (overrides config)")
	researchCmd.Flags().Int("max-steps", 0, "tool-call budget per research pass (default 12)")
	researchCmd.Flags().Int("max-iterations", 0, "research passes including the first (default 2)")
	researchCmd.Flags().String("cache-dir", "", "tool result cache directory (default data/research_cache)")
	researchCmd.Flags().Duration("timeout", 0, "HTTP request timeout for tools (default 60s)")
	researchCmd.Flags().Bool("json", false, "print the full run result as JSON")
	researchCmd.Flags().Bool("no-save", false, "do not record the run in the run store")

	viper.SetDefault("researcher.model", "google/gemini-2.0-flash-thinking-exp-01-21")
	viper.SetDefault("council.methodology.model", "anthropic/claude-3.7-sonnet")
	viper.SetDefault("council.comprehensiveness.model", "google/gemini-2.0-flash-thinking-exp-01-21")
	viper.SetDefault("council.clarity.model", "openai/gpt-4.1-turbo")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a research query")
	}
	query := strings.Join(args, " ")

	cfg := pipelineConfig(cmd)
	key := apiKey()
	if key == "" {
		return fmt.Errorf("no OpenRouter API key: set .secrets/%s or OPENROUTER_API_KEY", "openrouter-api-key")
	}

	toolCache, err := cache.New(cfg.Cache)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	registry, err := tools.NewRegistry(
		&tools.WebSearch{Client: httpClient, Cache: toolCache, HTTP: cfg.HTTP, MaxResults: cfg.Researcher.MaxSearchResults},
		&tools.Scrape{Client: httpClient, Cache: toolCache, HTTP: cfg.HTTP},
		&tools.Document{Client: httpClient, HTTP: cfg.HTTP},
		&tools.Synthesize{},
		&tools.TrackCitations{},
	)
	if err != nil {
		return err
	}

	researchClient, err := llm.NewOpenRouter(withKey(cfg.Researcher.LLMConfig, key))
	if err != nil {
		return fmt.Errorf("researcher model: %w", err)
	}
	agent := &researcher.Agent{
		Client:   researchClient,
		Tools:    registry,
		MaxSteps: cfg.Researcher.MaxSteps,
		Progress: os.Stderr,
	}

	reviewers := make([]llm.Client, 0, 3)
	for _, rc := range []types.ReviewerConfig{cfg.Council.Methodology, cfg.Council.Comprehensiveness, cfg.Council.Clarity} {
		client, err := llm.NewOpenRouter(withKey(rc.LLMConfig, key))
		if err != nil {
			return fmt.Errorf("council model: %w", err)
		}
		reviewers = append(reviewers, client)
	}
	panel, err := council.New(cfg.Council, reviewers[0], reviewers[1], reviewers[2])
	if err != nil {
		return err
	}

	o := &workflow.Orchestrator{
		Researcher:    agent,
		Council:       panel,
		MaxIterations: cfg.Workflow.MaxIterations,
		Progress:      os.Stderr,
	}

	result, err := o.Execute(context.Background(), query)
	if err != nil {
		return err
	}

	if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
		runStore, err := store.New(cfg.Store)
		if err != nil {
			return err
		}
		defer runStore.Close()
		if err := runStore.SaveRun(context.Background(), result); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "run %s saved\n", result.RunID)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printResult(result)
	return nil
}

// printResult writes the human-readable outcome: the final report followed
// by the council verdict for every round.
func printResult(result types.WorkflowResult) {
	fmt.Println(result.Report.Text)
	fmt.Println()
	fmt.Printf("run: %s  status: %s  iterations: %d\n", result.RunID, result.Status, result.Iterations)

	for _, round := range result.AllReviews {
		fmt.Printf("round %d:", round.Iteration)
		for _, review := range round.Reviews {
			fmt.Printf("  %s %.1f (%s)", review.Reviewer, review.Overall(), review.Recommendation)
		}
		fmt.Println()
	}
}

// pipelineConfig assembles the full configuration from viper and flags.
// Flags win over config file values.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("http.timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	if cacheDir == "" {
		cacheDir = viper.GetString("cache.dir")
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("researcher.model")
	}

	maxSteps, _ := cmd.Flags().GetInt("max-steps")
	if maxSteps == 0 {
		maxSteps = viper.GetInt("researcher.max_steps")
	}

	maxIterations, _ := cmd.Flags().GetInt("max-iterations")
	if maxIterations == 0 {
		maxIterations = viper.GetInt("workflow.max_iterations")
	}

	return types.PipelineConfig{
		HTTP: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Cache: types.CacheConfig{
			Dir:        cacheDir,
			SearchTTL:  viper.GetDuration("cache.search_ttl"),
			ScrapeTTL:  viper.GetDuration("cache.scrape_ttl"),
			MaxEntries: viper.GetInt("cache.max_entries"),
		},
		Researcher: types.ResearcherConfig{
			LLMConfig: types.LLMConfig{
				Model:   model,
				BaseURL: viper.GetString("llm.base_url"),
			},
			MaxSteps:         maxSteps,
			MaxSearchResults: viper.GetInt("researcher.max_search_results"),
		},
		Council: types.CouncilConfig{
			Methodology:       reviewerConfig("methodology"),
			Comprehensiveness: reviewerConfig("comprehensiveness"),
			Clarity:           reviewerConfig("clarity"),
			PassThreshold:     viper.GetFloat64("council.pass_threshold"),
			Quorum:            viper.GetInt("council.quorum"),
		},
		Workflow: types.WorkflowConfig{
			MaxIterations: maxIterations,
		},
		Store: types.StoreConfig{
			Dir: viper.GetString("store.dir"),
		},
	}
}

func reviewerConfig(name string) types.ReviewerConfig {
	return types.ReviewerConfig{
		LLMConfig: types.LLMConfig{
			Model:   viper.GetString("council." + name + ".model"),
			BaseURL: viper.GetString("llm.base_url"),
		},
		RubricFile: viper.GetString("council." + name + ".rubric_file"),
	}
}

func withKey(cfg types.LLMConfig, key string) types.LLMConfig {
	if cfg.APIKey == "" {
		cfg.APIKey = key
	}
	return cfg
}
