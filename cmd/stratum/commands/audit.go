package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stratum-quant/stratum/internal/audit"
	"github.com/stratum-quant/stratum/pkg/database"
)

// auditCmd inspects the override audit log.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the override audit log",
	Long: `Queries override records from the PostgreSQL audit log.

Example:
  go run ./cmd/stratum audit --ticker AAPL
  go run ./cmd/stratum audit --from 2026-01-01 --to 2026-03-31
  go run ./cmd/stratum audit stats`,
	RunE: runAuditRecords,
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics over the override audit log",
	RunE:  runAuditStats,
}

var (
	auditTicker string
	auditFrom   string
	auditTo     string
	auditLimit  int
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditStatsCmd)

	auditCmd.PersistentFlags().StringVar(&auditTicker, "ticker", "", "filter by ticker")
	auditCmd.PersistentFlags().StringVar(&auditFrom, "from", "", "start date (YYYY-MM-DD)")
	auditCmd.PersistentFlags().StringVar(&auditTo, "to", "", "end date (YYYY-MM-DD)")
	auditCmd.PersistentFlags().IntVar(&auditLimit, "limit", 50, "maximum records")
}

func auditQuery() (audit.Query, error) {
	q := audit.Query{Ticker: auditTicker, Limit: auditLimit}

	if auditFrom != "" {
		t, err := time.Parse("2006-01-02", auditFrom)
		if err != nil {
			return audit.Query{}, fmt.Errorf("invalid --from date: %w", err)
		}
		q.From = t
	}
	if auditTo != "" {
		t, err := time.Parse("2006-01-02", auditTo)
		if err != nil {
			return audit.Query{}, fmt.Errorf("invalid --to date: %w", err)
		}
		q.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	return q, nil
}

func auditRepository() (*audit.Repository, func(), error) {
	cfg, _, _, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return audit.NewRepository(db.Pool), db.Close, nil
}

func runAuditRecords(cmd *cobra.Command, args []string) error {
	q, err := auditQuery()
	if err != nil {
		return err
	}

	repo, closeDB, err := auditRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	records, err := repo.Query(context.Background(), q)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No override records match the query.")
		return nil
	}

	fmt.Printf("%-20s %-8s %-10s %-8s %8s  %s\n", "APPLIED", "TICKER", "TYPE", "CONV", "IMPACT", "FLAGS")
	for _, r := range records {
		flags := ""
		if r.Extreme {
			flags += "extreme "
		}
		if r.RecommendationChanged {
			flags += "rec-changed "
		}
		if len(r.Violations) > 0 {
			flags += fmt.Sprintf("violations=%d", len(r.Violations))
		}
		fmt.Printf("%-20s %-8s %-10s %-8s %+8.2f  %s\n",
			r.AppliedAt.Format("2006-01-02 15:04:05"), r.Ticker, r.Type, r.Conviction, r.Impact, flags)
	}

	return nil
}

func runAuditStats(cmd *cobra.Command, args []string) error {
	q, err := auditQuery()
	if err != nil {
		return err
	}
	q.Limit = 0 // stats cover the whole range

	repo, closeDB, err := auditRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	stats, err := repo.Stats(context.Background(), q)
	if err != nil {
		return err
	}

	fmt.Printf("Override records: %d\n", stats.Total)
	fmt.Printf("Mean |impact|:    %.2f percentile points\n", stats.MeanAbsImpact)
	fmt.Printf("Rec changes:      %d\n", stats.RecommendationChanges)
	fmt.Printf("Extreme:          %d\n", stats.Extreme)
	fmt.Printf("With violations:  %d\n", stats.WithViolations)

	if len(stats.ByType) > 0 {
		fmt.Println("\nBy type:")
		for typ, count := range stats.ByType {
			fmt.Printf("  %-10s %d\n", typ, count)
		}
	}
	if len(stats.ByConviction) > 0 {
		fmt.Println("\nBy conviction:")
		for conviction, count := range stats.ByConviction {
			fmt.Printf("  %-8s %d\n", conviction, count)
		}
	}

	return nil
}
