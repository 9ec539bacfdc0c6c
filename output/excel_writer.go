package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"adofill/activity"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, batch activity.Batch) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	headers := []string{"Source", "Title", "Date", "Start", "End", "CompletedWork", "AreaPath", "IterationPath", "Project", "Tags", "Description"}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, a := range batch.Activities {
		row := i + 2
		values := []string{
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

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}
