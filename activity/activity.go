package activity

import (
	"fmt"
	"strings"
	"time"
)

// SourceType identifies which collector produced an Activity.
type SourceType string

const (
	SourceCalendar  SourceType = "calendar"
	SourceRecurring SourceType = "recurring"
	SourceCommit    SourceType = "commit"
)

// SourceTypeNames lists the supported source names in stable order.
func SourceTypeNames() []string {
	return []string{string(SourceCalendar), string(SourceRecurring), string(SourceCommit)}
}

// ParseSourceType converts a user-supplied source name.
func ParseSourceType(value string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(SourceCalendar):
		return SourceCalendar, nil
	case string(SourceRecurring):
		return SourceRecurring, nil
	case string(SourceCommit):
		return SourceCommit, nil
	default:
		return "", fmt.Errorf("unsupported source %q (valid: %s)", value, strings.Join(SourceTypeNames(), ", "))
	}
}

// MinCalendarHours is the minimum billable granularity for timed calendar events.
const MinCalendarHours = 0.25

// Activity is the normalized record produced by every source. It is transient:
// rebuilt on each run and never persisted except through the export batch.
type Activity struct {
	Source        SourceType `json:"source"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	CompletedWork float64    `json:"completed_work"`
	AreaPath      string     `json:"area_path,omitempty"`
	IterationPath string     `json:"iteration_path,omitempty"`
	Project       string     `json:"project,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Date          string     `json:"date"`
}

// NewActivity stamps Date from the start timestamp.
func NewActivity(source SourceType, title string, start, end time.Time, hours float64) Activity {
	return Activity{
		Source:        source,
		Title:         title,
		Start:         start,
		End:           end,
		CompletedWork: hours,
		Date:          start.Format("2006-01-02"),
	}
}

// Day returns the activity date as a time at midnight local.
func (a Activity) Day() (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", a.Date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse activity date %q: %w", a.Date, err)
	}
	return day, nil
}

// Validate enforces the invariants every source must uphold.
func (a Activity) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("activity title is required")
	}
	if a.CompletedWork < 0 {
		return fmt.Errorf("activity %q has negative completed work (%g)", a.Title, a.CompletedWork)
	}
	if a.Source == SourceCalendar && !a.End.Equal(a.Start) && a.CompletedWork > 0 && a.CompletedWork < MinCalendarHours {
		return fmt.Errorf("calendar activity %q is below the %gh minimum (%g)", a.Title, MinCalendarHours, a.CompletedWork)
	}
	if _, err := a.Day(); err != nil {
		return err
	}
	return nil
}
