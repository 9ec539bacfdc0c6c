package output

import (
	"encoding/json"
	"fmt"
	"os"

	"adofill/activity"
)

// JSONWriter writes a batch in the format ReadBatch accepts, so an
// export can later be replayed through import.
type JSONWriter struct{}

func (w *JSONWriter) Write(path string, batch activity.Batch) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json output %s: %w", path, err)
	}
	return nil
}
