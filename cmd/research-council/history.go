// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-council/internal/store"
	"github.com/pdiddy/research-council/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and export past research runs",
	Long: `History reads the local run store. Use list to see past runs, show to
print a run's final report and reviews, and export to write a full run
as YAML.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past research runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		summaries, err := s.List(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}
		for _, sum := range summaries {
			fmt.Printf("%s  %s  iter=%d  scores=%s  %s\n",
				sum.RunID, sum.Status, sum.Iterations,
				formatScores(sum.FinalScores), sum.Query)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print a run's final report and council reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Write a full run, including transcript and reviews, as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		path, err := s.ExportYAML(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", path)
		return nil
	},
}

func openStore() (*store.Store, error) {
	return store.New(types.StoreConfig{Dir: viper.GetString("store.dir")})
}

func formatScores(scores []float64) string {
	if len(scores) == 0 {
		return "[]"
	}
	out := "["
	for i, s := range scores {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%.1f", s)
	}
	return out + "]"
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
