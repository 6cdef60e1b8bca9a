// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by tools that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-council/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMConfig holds settings for one agent's language model backend.
type LLMConfig struct {
	// Model is the model identifier as understood by the API gateway
	// (e.g. "google/gemini-2.0-flash-thinking-exp-01-21").
	Model string `json:"model" yaml:"model"`

	// BaseURL is the OpenAI-compatible API base (default OpenRouter).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens bounds the completion size (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CacheKind identifies the class of cached tool result. Each kind has its
// own expiry window.
type CacheKind string

const (
	CacheSearch CacheKind = "search"
	CacheScrape CacheKind = "scrape"
)

// CacheConfig holds settings for the on-disk tool result cache.
type CacheConfig struct {
	// Dir is the cache root directory (default "data/research_cache").
	Dir string `json:"dir" yaml:"dir"`

	// SearchTTL is the expiry window for search results (default 24h).
	SearchTTL time.Duration `json:"search_ttl" yaml:"search_ttl"`

	// ScrapeTTL is the expiry window for scraped pages (default 168h).
	ScrapeTTL time.Duration `json:"scrape_ttl" yaml:"scrape_ttl"`

	// MaxEntries bounds the number of cache files. When exceeded, expired
	// entries and then the oldest entries are swept (default 2048, 0 disables).
	MaxEntries int `json:"max_entries" yaml:"max_entries"`
}

// TTL returns the expiry window for the given kind.
func (c CacheConfig) TTL(kind CacheKind) time.Duration {
	switch kind {
	case CacheScrape:
		return c.ScrapeTTL
	default:
		return c.SearchTTL
	}
}

// ResearcherConfig holds settings for the researcher agent.
type ResearcherConfig struct {
	LLMConfig `yaml:",inline"`

	// MaxSteps is the tool-call budget per research pass (default 12). When
	// exhausted the agent is forced to finalize with what it has.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`

	// MaxSearchResults is the default result count for web searches (default 5).
	MaxSearchResults int `json:"max_search_results" yaml:"max_search_results"`
}

// ReviewerConfig holds settings for one council reviewer.
type ReviewerConfig struct {
	LLMConfig `yaml:",inline"`

	// RubricFile optionally overrides the built-in rubric with a YAML file.
	RubricFile string `json:"rubric_file,omitempty" yaml:"rubric_file,omitempty"`
}

// CouncilConfig holds settings for the three-reviewer council.
type CouncilConfig struct {
	// Methodology, Comprehensiveness, and Clarity configure the three
	// independent reviewers. Each may use a different model.
	Methodology       ReviewerConfig `json:"methodology" yaml:"methodology"`
	Comprehensiveness ReviewerConfig `json:"comprehensiveness" yaml:"comprehensiveness"`
	Clarity           ReviewerConfig `json:"clarity" yaml:"clarity"`

	// PassThreshold is the overall score a reviewer must reach to count as
	// passing (default 3.0).
	PassThreshold float64 `json:"pass_threshold" yaml:"pass_threshold"`

	// Quorum is the number of passing reviewers required for acceptance
	// (default 2).
	Quorum int `json:"quorum" yaml:"quorum"`
}

// WorkflowConfig holds settings for the research-review orchestration loop.
type WorkflowConfig struct {
	// MaxIterations bounds the research passes, including the initial one
	// (default 2: initial research plus at most one revision).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
}

// StoreConfig holds settings for the run store.
type StoreConfig struct {
	// Dir is the directory holding the run database and exports
	// (default "data/runs").
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	HTTP       HTTPConfig       `json:"http" yaml:"http"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Researcher ResearcherConfig `json:"researcher" yaml:"researcher"`
	Council    CouncilConfig    `json:"council" yaml:"council"`
	Workflow   WorkflowConfig   `json:"workflow" yaml:"workflow"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
