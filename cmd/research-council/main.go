// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-council CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-council/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// apiKey resolves the OpenRouter API key: explicit config first, then the
// secrets directory, then the environment.
func apiKey() string {
	if v := viper.GetString("llm.api_key"); v != "" {
		return v
	}
	return secrets.Lookup(loadedSecrets, secrets.OpenRouterKey, "OPENROUTER_API_KEY")
}

// rootCmd is the base command for the research-council CLI.
var rootCmd = &cobra.Command{
	Use:   "research-council",
	Short: "Multi-agent research with council review",
	Long: `research-council runs a tool-using researcher agent against a query,
then has a council of three independent reviewers grade the resulting
report. Rejected reports go back to the researcher with synthesized
feedback for one revision pass.

Completed runs are stored locally; use the history subcommand to browse
and export them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-council.yaml or ~/.config/research-council/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-council")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-council"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_COUNCIL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
