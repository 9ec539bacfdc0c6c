package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage adofill configuration file values.",
	Long: `Create, edit, and display the adofill configuration file.

The configuration stores application-wide values:
- azure_devops.* (organization, project, paths, monthly grouping)
- sources.calendar / sources.recurring / sources.commits
- non_working_days`,
	Example: `
  # Create default config in $HOME/.adofill.yaml
  adofill config create

  # Show active config and source file
  adofill config show

  # Open active config in editor (creates example if missing)
  adofill config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
