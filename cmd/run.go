package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"adofill/config"
	"adofill/dedup"
	"adofill/pipeline"
)

var (
	runDate    string
	runFrom    string
	runTo      string
	runSource  string
	runDryRun  bool
	runDBPath  string
	runTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect activities and create Azure DevOps Tasks",
	Long: `Collect activities from every enabled source for the requested date range,
skip the ones already recorded in the dedup store, and create one Task per new
activity in Azure DevOps.

With monthly grouping enabled, all activities are collected first and each
month's Tasks are created under a reused monthly User Story.

In --dry-run mode, collection and deduplication run normally but no remote
call is made and nothing is written to the dedup store.`,
	Example: `
  # Process today
  adofill run

  # Preview a whole month without creating anything
  adofill run --from 2026-03-01 --to 2026-03-31 --dry-run

  # Only commit activities for one day
  adofill run --date 2026-03-02 --source commit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		from, to, err := parseRunRange(runDate, runFrom, runTo)
		if err != nil {
			return err
		}
		sourceFilter, err := parseSourceFilter(runSource)
		if err != nil {
			return err
		}

		client, err := newWorkItemClient(*cfg, runTimeout)
		if err != nil {
			return err
		}

		sources, skipped, err := buildSources(*cfg, client, runTimeout)
		if err != nil {
			return err
		}
		for _, reason := range skipped {
			fmt.Printf("Warning: skipping source %s\n", reason)
		}
		if len(sources) == 0 {
			return fmt.Errorf("no sources enabled; enable at least one under sources: in the config")
		}

		enhancer, err := newEnhancer(*cfg)
		if err != nil {
			return err
		}

		store, err := dedup.Open(runDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		svc := pipeline.NewService(*cfg, client, store, sources, enhancer)
		_, err = svc.Run(ctx, pipeline.RunOptions{
			From:   from,
			To:     to,
			Source: sourceFilter,
			DryRun: runDryRun,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runDate, "date", "d", "", "Single date to process, format YYYY-MM-DD (default: today)")
	runCmd.Flags().StringVar(&runFrom, "from", "", "Range start (inclusive), format YYYY-MM-DD")
	runCmd.Flags().StringVar(&runTo, "to", "", "Range end (inclusive), format YYYY-MM-DD")
	runCmd.Flags().StringVarP(&runSource, "source", "s", "", "Only process one source (calendar, recurring, commit)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Preview without creating work items or writing the dedup store")
	runCmd.Flags().StringVar(&runDBPath, "db", "./adofill.db", "Path to the local SQLite dedup store")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "Timeout for the whole run")
}
