package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratum-quant/stratum/internal/policy"
	"github.com/stratum-quant/stratum/pkg/config"
	"github.com/stratum-quant/stratum/pkg/logger"
)

var (
	// Global flags
	policyFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stratum",
	Short: "Stratum - composite scoring and override system for ranked equities",
	Long: `Stratum CLI

Composite scoring over fundamental, technical and sentiment pillars,
percentile ranking within a frozen universe, and analyst overrides with
guardrails and a full audit trail.

Usage:
  go run ./cmd/stratum [command]

Examples:
  go run ./cmd/stratum score --input scores.json
  go run ./cmd/stratum override --input scores.json --request override.json
  go run ./cmd/stratum api`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "policy YAML file (default from POLICY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// bootstrap loads config, logger and the scoring policy shared by all
// subcommands.
func bootstrap() (*config.Config, *logger.Logger, *policy.Policy, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if policyFile != "" {
		cfg.PolicyFile = policyFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	p, _, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load policy %s: %w", cfg.PolicyFile, err)
	}

	log.WithField("policy_id", p.Meta.PolicyID).Debug("Policy loaded")

	return cfg, log, p, nil
}
