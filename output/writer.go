// Package output writes collected activity batches to files.
package output

import (
	"fmt"
	"strings"

	"adofill/activity"
)

type Writer interface {
	Write(path string, batch activity.Batch) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "json":
		return &JSONWriter{}, nil
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func SupportedFormats() []string {
	return []string{"json", "csv", "excel"}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
