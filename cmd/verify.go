package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"adofill/azdo"
	"adofill/config"
)

var verifyTimeout time.Duration

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check connectivity of Azure DevOps and every enabled source",
	Example: `
  adofill verify
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
		defer cancel()

		failures := 0

		var client azdo.Client
		if httpClient, err := newWorkItemClient(*cfg, verifyTimeout); err != nil {
			fmt.Printf("✗ Azure DevOps: %v\n", err)
			failures++
		} else if err := httpClient.TestConnection(ctx); err != nil {
			fmt.Printf("✗ Azure DevOps: %v\n", err)
			failures++
		} else {
			fmt.Println("✓ Azure DevOps")
			client = httpClient
		}

		sources, skipped, err := buildSources(*cfg, client, verifyTimeout)
		if err != nil {
			return err
		}
		for _, reason := range skipped {
			fmt.Printf("✗ source %s\n", reason)
			failures++
		}
		for _, src := range sources {
			if err := src.Verify(ctx); err != nil {
				fmt.Printf("✗ %s: %v\n", src.Name(), err)
				failures++
				continue
			}
			fmt.Printf("✓ %s\n", src.Name())
		}

		if failures > 0 {
			return fmt.Errorf("%d check(s) failed", failures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", time.Minute, "Timeout for all connectivity checks")
}
