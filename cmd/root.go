/*
Copyright © 2026 adofill authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"adofill/config"
)

var (
	cfgFile string
	envFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "adofill",
	Short: "Turn calendar events, recurring templates, and commits into Azure DevOps work items.",
	Long: `
**********************************************
*                 ADO FILL                   *
**********************************************

This CLI collects daily activities from a calendar (CSV/ICS/Excel export or
Microsoft Graph), recurring weekday templates, and Azure DevOps commit history,
then creates one Task per activity in Azure DevOps. A local SQLite dedup store
guarantees that re-running over the same dates never creates duplicates, and
monthly grouping can place each month's Tasks under a reused User Story.
`,
	Example: `
  # Create configuration file
  adofill config create

  # Preview what today's run would create
  adofill run --dry-run

  # Process a specific date or an inclusive range
  adofill run --date 2026-03-02
  adofill run --from 2026-03-01 --to 2026-03-31

  # Only one source
  adofill run --date 2026-03-02 --source commit

  # Export collected activities to JSON, then replay them later
  adofill export --from 2026-03-01 --to 2026-03-31 --output march.json
  adofill import march.json

  # Undo: soft-delete work items and free their fingerprints
  adofill delete 4321 4322

  # Show processed counts per source
  adofill stats
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.adofill.yaml, then ./.adofill.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "envFile", ".env", "Env file with credentials (AZURE_DEVOPS_PAT, GRAPH_*, ANTHROPIC_API_KEY)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".adofill" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".adofill")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: adofill config create")
	}

	if err := config.LoadEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
