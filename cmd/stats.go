package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"adofill/dedup"
)

var statsDBPath string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show processed activity counts per source",
	Example: `
  adofill stats
  adofill stats --db ./adofill.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := dedup.Open(statsDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		counts := store.CountBySource()
		if len(counts) == 0 {
			fmt.Println("No processed activities yet.")
			return nil
		}

		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("Processed records:")
		for _, name := range names {
			fmt.Printf("  %-12s %d\n", name, counts[name])
		}
		fmt.Printf("  %-12s %d\n", "total", store.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsDBPath, "db", "./adofill.db", "Path to the local SQLite dedup store")
}
