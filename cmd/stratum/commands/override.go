package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratum-quant/stratum/internal/audit"
	"github.com/stratum-quant/stratum/internal/contracts"
	"github.com/stratum-quant/stratum/internal/override"
	"github.com/stratum-quant/stratum/internal/scoring"
	"github.com/stratum-quant/stratum/pkg/database"
)

// overrideCmd applies an override request against a freshly scored
// universe and prints the base and final results side by side.
var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Apply an override request against a scored universe",
	Long: `Applies one analyst override.

Scores the universe from the pillar-score file, then runs the override
request through validation, application and guardrails. The override is
computed against the frozen run; nothing is rescored.

By default the result is printed only. With --persist it is appended to
the PostgreSQL audit log.

Example:
  go run ./cmd/stratum override --input scores.json --request override.json
  go run ./cmd/stratum override --input scores.json --request override.json --persist`,
	RunE: runOverride,
}

var (
	overrideInput   string
	overrideRequest string
	overridePersist bool
)

func init() {
	rootCmd.AddCommand(overrideCmd)

	overrideCmd.Flags().StringVar(&overrideInput, "input", "", "pillar scores JSON file (required)")
	overrideCmd.Flags().StringVar(&overrideRequest, "request", "", "override request JSON file (required)")
	overrideCmd.Flags().BoolVar(&overridePersist, "persist", false, "append the result to the PostgreSQL audit log")
	overrideCmd.MarkFlagRequired("input")
	overrideCmd.MarkFlagRequired("request")
}

func runOverride(cmd *cobra.Command, args []string) error {
	cfg, log, p, err := bootstrap()
	if err != nil {
		return err
	}

	// Score the universe.
	input, err := scoring.NewFileProvider(overrideInput).PillarScores(context.Background())
	if err != nil {
		return err
	}
	engine := scoring.NewEngine(*p, log)
	frozen := engine.CalculateForUniverse(input)

	// Load the override request.
	data, err := os.ReadFile(overrideRequest)
	if err != nil {
		return fmt.Errorf("read override request: %w", err)
	}
	var req contracts.OverrideRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode override request: %w", err)
	}

	// Pick the audit store.
	var store override.AuditStore = audit.NewMemoryStore()
	if overridePersist {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := audit.NewRepository(db.Pool)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			return err
		}
		store = repo
	}

	svc := override.NewService(*p, store, log)

	result, err := svc.Process(context.Background(), req, frozen)
	if err != nil {
		var verr *override.ValidationError
		if errors.As(err, &verr) {
			fmt.Println("Override rejected:")
			for _, v := range verr.Violations {
				fmt.Printf("  - %s\n", v)
			}
			return err
		}
		return err
	}

	printOverrideResult(result)
	return nil
}

func printOverrideResult(result *contracts.OverrideResult) {
	fmt.Printf("Override %s on %s (%s, conviction %s)\n\n", result.ID, result.Ticker, result.Type, result.Conviction)

	fmt.Printf("%-14s %12s %12s\n", "", "BASE", "FINAL")
	fmt.Printf("%-14s %12.2f %12.2f\n", "Composite", result.Base.Composite, result.Final.Composite)
	fmt.Printf("%-14s %12.2f %12.2f\n", "Percentile", result.Base.Percentile, result.Final.Percentile)
	fmt.Printf("%-14s %12s %12s\n", "Recommendation", result.Base.Recommendation, result.Final.Recommendation)

	fmt.Printf("\nImpact: %+.2f percentile points", result.Impact)
	if result.Extreme {
		fmt.Print("  [EXTREME]")
	}
	fmt.Println()

	if len(result.Violations) > 0 {
		fmt.Println("\nGuardrail violations:")
		for _, v := range result.Violations {
			fmt.Printf("  - %s\n", v)
		}
	}
}
