package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"adofill/config"
	"adofill/dedup"
	"adofill/pipeline"
)

var (
	deleteYes     bool
	deleteDBPath  string
	deleteTimeout time.Duration
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete <work-item-id> [<work-item-id>...]",
	Short: "Soft-delete work items and free their fingerprints",
	Long: `Soft-delete each given work item in Azure DevOps (moves it to the recycle
bin) and remove the matching records from the local dedup store, so a later
run over the same dates can recreate the activities.

Failures are independent: one item failing does not stop the others.
An interactive security prompt requires typing exactly "Y" unless --yes is set.`,
	Example: `
  # Delete two work items (requires interactive confirmation)
  adofill delete 4321 4322

  # Skip the prompt
  adofill delete 4321 --yes
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		ids := make([]int, 0, len(args))
		for _, arg := range args {
			id, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid work item id %q", arg)
			}
			ids = append(ids, id)
		}

		if !deleteYes {
			confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, ids)
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("delete aborted: confirmation was not 'Y'")
			}
		}

		client, err := newWorkItemClient(*cfg, deleteTimeout)
		if err != nil {
			return err
		}
		store, err := dedup.Open(deleteDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
		defer cancel()

		svc := pipeline.NewService(*cfg, client, store, nil, nil)
		return svc.Delete(ctx, ids)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the interactive confirmation prompt")
	deleteCmd.Flags().StringVar(&deleteDBPath, "db", "./adofill.db", "Path to the local SQLite dedup store")
	deleteCmd.Flags().DurationVar(&deleteTimeout, "timeout", 2*time.Minute, "Timeout for the whole deletion")
}

func confirmDeletePrompt(input io.Reader, output io.Writer, ids []int) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		labels = append(labels, fmt.Sprintf("#%d", id))
	}
	if _, err := fmt.Fprintf(output, "Soft-delete work item(s) %s and remove their dedup records? Type Y to confirm: ", strings.Join(labels, ", ")); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}
