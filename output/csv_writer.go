package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"adofill/activity"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, batch activity.Batch) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"Source", "Title", "Date", "Start", "End", "CompletedWork", "AreaPath", "IterationPath", "Project", "Tags", "Description"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, a := range batch.Activities {
		row := []string{
			string(a.Source),
			a.Title,
			a.Date,
			a.Start.Format(time.RFC3339),
			a.End.Format(time.RFC3339),
			strconv.FormatFloat(a.CompletedWork, 'f', -1, 64),
			a.AreaPath,
			a.IterationPath,
			a.Project,
			strings.Join(a.Tags, "; "),
			a.Description,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row for %q: %w", a.Title, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output %s: %w", path, err)
	}
	return nil
}
