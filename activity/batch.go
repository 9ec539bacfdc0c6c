package activity

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Batch is the exported activity document produced by a collection-only run
// and consumed by the import flow.
type Batch struct {
	ExportedAt string     `json:"exported_at"`
	Activities []Activity `json:"activities"`
}

// NewBatch stamps the export date.
func NewBatch(activities []Activity) Batch {
	return Batch{
		ExportedAt: time.Now().Format("2006-01-02"),
		Activities: activities,
	}
}

// ReadBatch loads and validates an exported activity document.
func ReadBatch(path string) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, fmt.Errorf("read activity batch %s: %w", path, err)
	}

	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return Batch{}, fmt.Errorf("parse activity batch %s: %w", path, err)
	}

	for i, act := range batch.Activities {
		if _, err := ParseSourceType(string(act.Source)); err != nil {
			return Batch{}, fmt.Errorf("activity batch %s entry %d: %w", path, i+1, err)
		}
		if err := act.Validate(); err != nil {
			return Batch{}, fmt.Errorf("activity batch %s entry %d: %w", path, i+1, err)
		}
	}

	return batch, nil
}
