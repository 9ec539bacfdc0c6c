package classify

import (
	"testing"
	"time"

	"adofill/activity"
	"adofill/internal/fingerprint"
)

type fakeStore struct {
	seen map[string]bool
}

func (f *fakeStore) Exists(digest string) bool { return f.seen[digest] }

func mustDay(t *testing.T, value string) time.Time {
	t.Helper()
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	return day
}

func TestPartitionSplitsByFingerprint(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	known := activity.NewActivity(activity.SourceCalendar, "Planning", start, start.Add(time.Hour), 1)
	fresh := activity.NewActivity(activity.SourceCommit, "[api] fix rounding", start, start, 0.5)

	store := &fakeStore{seen: map[string]bool{
		fingerprint.Activity(activity.SourceCalendar, "Planning", mustDay(t, "2026-03-02")): true,
	}}

	toCreate, skipped, err := Partition([]activity.Activity{known, fresh}, store)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(toCreate) != 1 || toCreate[0].Title != "[api] fix rounding" {
		t.Fatalf("unexpected toCreate %+v", toCreate)
	}
	if len(skipped) != 1 || skipped[0].Title != "Planning" {
		t.Fatalf("unexpected skipped %+v", skipped)
	}
}

func TestPartitionOrdersDeterministically(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := activity.NewActivity(activity.SourceRecurring, "Standup", d1, d1, 0.5)
	b := activity.NewActivity(activity.SourceCalendar, "Review", d2, d2.Add(time.Hour), 1)
	c := activity.NewActivity(activity.SourceCalendar, "Planning", d1.Add(-6*time.Hour), d1, 1)

	toCreate, _, err := Partition([]activity.Activity{a, b, c}, &fakeStore{seen: map[string]bool{}})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(toCreate) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(toCreate))
	}
	titles := []string{toCreate[0].Title, toCreate[1].Title, toCreate[2].Title}
	want := []string{"Review", "Planning", "Standup"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", titles, want)
		}
	}
}

func TestPartitionNormalizesEquivalentTitles(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	accented := activity.NewActivity(activity.SourceCalendar, "Reunião de equipe", start, start.Add(time.Hour), 1)

	store := &fakeStore{seen: map[string]bool{
		fingerprint.Activity(activity.SourceCalendar, "  REUNIAO   de Equipe ", mustDay(t, "2026-03-02")): true,
	}}

	toCreate, skipped, err := Partition([]activity.Activity{accented}, store)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(toCreate) != 0 || len(skipped) != 1 {
		t.Fatalf("normalized titles should collide: toCreate=%d skipped=%d", len(toCreate), len(skipped))
	}
}
