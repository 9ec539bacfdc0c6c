package activity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activities.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}
	return path
}

func TestReadBatch(t *testing.T) {
	t.Parallel()

	path := writeBatchFile(t, `{
  "exported_at": "2026-03-15",
  "activities": [
    {
      "source": "recurring",
      "title": "Daily",
      "start": "2026-03-02T13:00:00-04:00",
      "end": "2026-03-02T13:15:00-04:00",
      "completed_work": 0.25,
      "date": "2026-03-02"
    }
  ]
}`)

	batch, err := ReadBatch(path)
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	if len(batch.Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(batch.Activities))
	}
	if batch.Activities[0].Source != SourceRecurring {
		t.Fatalf("unexpected source %q", batch.Activities[0].Source)
	}
}

func TestReadBatchRejectsUnknownSource(t *testing.T) {
	t.Parallel()

	path := writeBatchFile(t, `{
  "activities": [
    {"source": "jira", "title": "x", "completed_work": 1, "date": "2026-03-02"}
  ]
}`)

	_, err := ReadBatch(path)
	if err == nil {
		t.Fatal("unknown source must fail")
	}
	if !strings.Contains(err.Error(), "entry 1") {
		t.Fatalf("error should name the entry: %v", err)
	}
}

func TestReadBatchRejectsInvalidActivity(t *testing.T) {
	t.Parallel()

	path := writeBatchFile(t, `{
  "activities": [
    {"source": "calendar", "title": "", "completed_work": 1, "date": "2026-03-02"}
  ]
}`)

	if _, err := ReadBatch(path); err == nil {
		t.Fatal("empty title must fail")
	}
}

func TestReadBatchMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := ReadBatch(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("missing file must fail")
	}
}
