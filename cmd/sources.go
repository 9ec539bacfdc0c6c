package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"adofill/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured activity sources",
	Example: `
  adofill sources
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		enabled := color.New(color.FgGreen).SprintFunc()
		disabled := color.New(color.FgRed).SprintFunc()
		mark := func(on bool) string {
			if on {
				return enabled("✓")
			}
			return disabled("✗")
		}

		fmt.Println("Configured sources:")
		if cal := cfg.Sources.Calendar; cal != nil {
			details := "type: " + cal.Type
			if cal.Type == "graph" {
				details += " | email: " + cal.UserEmail
			} else {
				details += " | path: " + cal.Path
			}
			fmt.Printf("  %s Calendar   %s\n", mark(cal.Enabled), details)
		}
		if rec := cfg.Sources.Recurring; rec != nil {
			fmt.Printf("  %s Recurring  %d template(s)\n", mark(rec.Enabled), len(rec.Templates))
		}
		if com := cfg.Sources.Commits; com != nil {
			names := make([]string, 0, len(com.Repositories))
			for _, repo := range com.Repositories {
				names = append(names, repo.Name)
				if len(names) == 3 {
					break
				}
			}
			label := strings.Join(names, ", ")
			if extra := len(com.Repositories) - len(names); extra > 0 {
				label += fmt.Sprintf(" (+%d)", extra)
			}
			fmt.Printf("  %s Commits    %d repo(s): %s\n", mark(com.Enabled), len(com.Repositories), label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
