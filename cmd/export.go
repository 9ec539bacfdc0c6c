package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"adofill/activity"
	"adofill/azdo"
	"adofill/config"
	"adofill/internal/classify"
	"adofill/output"
)

var (
	exportDate    string
	exportFrom    string
	exportTo      string
	exportSource  string
	exportOutput  string
	exportFormat  string
	exportTimeout time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Collect activities and write them to a file without creating anything",
	Long: `Run collection only and write the activities to a file. The JSON format can
later be replayed with "adofill import", which applies the same deduplication
a live run would.

No Azure DevOps PAT is needed unless the commits source is enabled; without a
PAT the commits source is skipped with a warning.`,
	Example: `
  # Export a month of activities to JSON
  adofill export --from 2026-03-01 --to 2026-03-31 --output march.json

  # Spreadsheet for review
  adofill export --date 2026-03-02 --output day.xlsx --format excel
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		from, to, err := parseRunRange(exportDate, exportFrom, exportTo)
		if err != nil {
			return err
		}
		sourceFilter, err := parseSourceFilter(exportSource)
		if err != nil {
			return err
		}
		writer, err := output.WriterForFormat(exportFormat)
		if err != nil {
			return err
		}

		// The PAT is only needed for the commits source here.
		var client azdo.Client
		if httpClient, err := newWorkItemClient(*cfg, exportTimeout); err == nil {
			client = httpClient
		}

		sources, skipped, err := buildSources(*cfg, client, exportTimeout)
		if err != nil {
			return err
		}
		for _, reason := range skipped {
			fmt.Printf("Warning: skipping source %s\n", reason)
		}

		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		var collected []activity.Activity
		for _, src := range sources {
			if sourceFilter != "" && src.Type() != sourceFilter {
				continue
			}
			activities, err := src.Collect(ctx, from, to)
			if err != nil {
				fmt.Printf("Warning: %s collection failed: %v\n", src.Name(), err)
				continue
			}
			collected = append(collected, activities...)
		}

		classify.SortActivities(collected)
		if err := writer.Write(exportOutput, activity.NewBatch(collected)); err != nil {
			return err
		}
		fmt.Printf("Exported %d activities to %s\n", len(collected), exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportDate, "date", "d", "", "Single date to collect, format YYYY-MM-DD (default: today)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start (inclusive), format YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end (inclusive), format YYYY-MM-DD")
	exportCmd.Flags().StringVarP(&exportSource, "source", "s", "", "Only collect one source (calendar, recurring, commit)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "./activities.json", "Output file path")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format (json, csv, excel)")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 5*time.Minute, "Timeout for collection")
}
