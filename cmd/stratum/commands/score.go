package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratum-quant/stratum/internal/scoring"
)

// scoreCmd runs one universe scoring pass from a pillar-score file.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a universe from a pillar-score file",
	Long: `Runs one composite scoring pass.

Reads per-entity pillar scores from a JSON file, computes composites
under the policy's base weights, ranks them within the universe and
maps each percentile to its recommendation band.

Example:
  go run ./cmd/stratum score --input scores.json
  go run ./cmd/stratum score --input scores.json --json`,
	RunE: runScore,
}

var (
	scoreInput string
	scoreJSON  bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "pillar scores JSON file (required)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print the full snapshot as JSON")
	scoreCmd.MarkFlagRequired("input")
}

func runScore(cmd *cobra.Command, args []string) error {
	_, log, p, err := bootstrap()
	if err != nil {
		return err
	}

	provider := scoring.NewFileProvider(scoreInput)
	input, err := provider.PillarScores(context.Background())
	if err != nil {
		return err
	}

	engine := scoring.NewEngine(*p, log)
	snapshot := engine.CalculateForUniverse(input)

	if scoreJSON {
		return json.NewEncoder(os.Stdout).Encode(snapshot)
	}

	fmt.Printf("Universe scoring: %s  (policy %s)\n\n", snapshot.Date.Format("2006-01-02"), p.Meta.PolicyID)
	fmt.Printf("%-4s %-8s %10s %10s  %s\n", "#", "TICKER", "COMPOSITE", "PERCENTILE", "RECOMMENDATION")
	for i, r := range snapshot.Results {
		fmt.Printf("%-4d %-8s %10.2f %10.2f  %s\n", i+1, r.Ticker, r.Composite, r.Percentile, r.Recommendation)
	}

	if len(snapshot.Skipped) > 0 {
		fmt.Printf("\nExcluded (%d): %v\n", len(snapshot.Skipped), snapshot.Skipped)
	}

	return nil
}
