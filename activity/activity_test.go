package activity

import (
	"testing"
	"time"
)

func TestNewActivityStampsDate(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	a := NewActivity(SourceCalendar, "Planning", start, start.Add(time.Hour), 1)
	if a.Date != "2026-03-02" {
		t.Fatalf("unexpected date %q", a.Date)
	}
	day, err := a.Day()
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if day.Year() != 2026 || day.Month() != time.March || day.Day() != 2 {
		t.Fatalf("unexpected day %v", day)
	}
}

func TestNewActivityDateUsesStartZone(t *testing.T) {
	t.Parallel()

	// 13:00 at UTC-4 stays on the local calendar date even though the
	// UTC instant is 17:00.
	zone := time.FixedZone("UTC-4", -4*60*60)
	start := time.Date(2026, 3, 2, 23, 0, 0, 0, zone)
	a := NewActivity(SourceRecurring, "Standup", start, start, 0.5)
	if a.Date != "2026-03-02" {
		t.Fatalf("date should follow the start zone, got %q", a.Date)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	valid := NewActivity(SourceCalendar, "Planning", start, start.Add(time.Hour), 1)
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid activity rejected: %v", err)
	}

	negative := NewActivity(SourceCommit, "x", start, start, -1)
	if err := negative.Validate(); err == nil {
		t.Fatal("negative completed work should be rejected")
	}

	belowFloor := NewActivity(SourceCalendar, "Quick", start, start.Add(10*time.Minute), 0.1)
	if err := belowFloor.Validate(); err == nil {
		t.Fatal("timed calendar activity below the floor should be rejected")
	}

	allDay := NewActivity(SourceCalendar, "Offsite", start, start, 0)
	if err := allDay.Validate(); err != nil {
		t.Fatalf("zero-hour activity should pass: %v", err)
	}

	untitled := NewActivity(SourceCalendar, "", start, start.Add(time.Hour), 1)
	if err := untitled.Validate(); err == nil {
		t.Fatal("empty title should be rejected")
	}
}

func TestParseSourceType(t *testing.T) {
	t.Parallel()

	for _, name := range SourceTypeNames() {
		if _, err := ParseSourceType(name); err != nil {
			t.Fatalf("ParseSourceType(%q): %v", name, err)
		}
	}
	if _, err := ParseSourceType("jira"); err == nil {
		t.Fatal("expected error for unknown source")
	}
}
