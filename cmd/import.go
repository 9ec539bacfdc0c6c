package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"adofill/activity"
	"adofill/config"
	"adofill/dedup"
	"adofill/pipeline"
)

var (
	importDryRun  bool
	importDBPath  string
	importTimeout time.Duration
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create Tasks from a previously exported activity batch",
	Long: `Read an activity batch exported with "adofill export --format json" and
process it exactly as a live run would: fingerprints are recomputed, duplicates
already in the dedup store are skipped, and monthly grouping applies when
configured.`,
	Example: `
  # Replay an export
  adofill import march.json

  # Preview first
  adofill import march.json --dry-run
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		batch, err := activity.ReadBatch(args[0])
		if err != nil {
			return err
		}
		if len(batch.Activities) == 0 {
			return fmt.Errorf("no activities in %s", args[0])
		}

		client, err := newWorkItemClient(*cfg, importTimeout)
		if err != nil {
			return err
		}
		enhancer, err := newEnhancer(*cfg)
		if err != nil {
			return err
		}

		store, err := dedup.Open(importDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		fmt.Printf("Importing %d activities from %s\n", len(batch.Activities), args[0])
		svc := pipeline.NewService(*cfg, client, store, nil, enhancer)
		_, err = svc.ProcessActivities(ctx, batch.Activities, importDryRun)
		return err
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Preview without creating work items or writing the dedup store")
	importCmd.Flags().StringVar(&importDBPath, "db", "./adofill.db", "Path to the local SQLite dedup store")
	importCmd.Flags().DurationVar(&importTimeout, "timeout", 10*time.Minute, "Timeout for the whole import")
}
