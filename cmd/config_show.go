package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"adofill/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  adofill config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
			fmt.Println("Configuration:")
			fmt.Printf("azure_devops.base_url: %s\n", cfg.AzureDevOps.BaseURL)
			fmt.Printf("azure_devops.organization: %s\n", cfg.AzureDevOps.Organization)
			fmt.Printf("azure_devops.project: %s\n", cfg.AzureDevOps.Project)
			fmt.Printf("azure_devops.default_area: %s\n", cfg.AzureDevOps.DefaultArea)
			fmt.Printf("azure_devops.default_iteration: %s\n", cfg.AzureDevOps.DefaultIteration)
			fmt.Printf("azure_devops.author_email: %s\n", cfg.AzureDevOps.AuthorEmail)
			fmt.Printf("azure_devops.assigned_to: %s\n", cfg.AzureDevOps.AssignedTo)
			fmt.Printf("azure_devops.default_state: %s\n", cfg.AzureDevOps.DefaultState)
			fmt.Printf("azure_devops.monthly_grouping: %t\n", cfg.AzureDevOps.MonthlyGrouping)
			fmt.Printf("azure_devops.grouping_label: %s\n", cfg.AzureDevOps.GroupingLabel)
			fmt.Printf("azure_devops.enhance_descriptions: %t\n", cfg.AzureDevOps.EnhanceDescriptions)

			if cal := cfg.Sources.Calendar; cal != nil {
				fmt.Printf("sources.calendar: enabled=%t type=%s path=%s\n", cal.Enabled, cal.Type, cal.Path)
			}
			if rec := cfg.Sources.Recurring; rec != nil {
				fmt.Printf("sources.recurring: enabled=%t templates=%d\n", rec.Enabled, len(rec.Templates))
				for i, tpl := range rec.Templates {
					fmt.Printf("sources.recurring.templates[%d]: %s (%gh, weekdays %v)\n", i, tpl.Name, tpl.Hours, tpl.Weekdays)
				}
			}
			if com := cfg.Sources.Commits; com != nil {
				repos := make([]string, 0, len(com.Repositories))
				for _, repo := range com.Repositories {
					repos = append(repos, repo.Name)
				}
				fmt.Printf("sources.commits: enabled=%t repositories=[%s]\n", com.Enabled, strings.Join(repos, ", "))
			}
			fmt.Printf("non_working_days: %d\n", len(cfg.NonWorkingDays))
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
