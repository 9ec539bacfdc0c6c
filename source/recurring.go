package source

import (
	"context"
	"fmt"
	"time"

	"adofill/activity"
	"adofill/config"
	"adofill/internal/timeutil"
)

// recurringZone anchors template activities at 13:00 local time.
var recurringZone = time.FixedZone("UTC-4", -4*60*60)

// RecurringSource generates activities from weekday templates.
// Template weekdays use 0=Monday through 6=Sunday. Dates listed as
// non-working days produce nothing.
type RecurringSource struct {
	templates      []config.RecurringTemplate
	nonWorkingDays map[string]struct{}
}

func NewRecurringSource(cfg config.RecurringConfig, nonWorkingDays []string) *RecurringSource {
	skip := make(map[string]struct{}, len(nonWorkingDays))
	for _, day := range nonWorkingDays {
		skip[day] = struct{}{}
	}
	return &RecurringSource{templates: cfg.Templates, nonWorkingDays: skip}
}

func (s *RecurringSource) Type() activity.SourceType { return activity.SourceRecurring }

func (s *RecurringSource) Name() string { return "Recurring" }

func (s *RecurringSource) Collect(ctx context.Context, from, to time.Time) ([]activity.Activity, error) {
	var activities []activity.Activity
	for _, day := range timeutil.DaysInRange(from, to) {
		if _, skip := s.nonWorkingDays[day.Format("2006-01-02")]; skip {
			continue
		}
		weekday := mondayBasedWeekday(day.Weekday())
		start := time.Date(day.Year(), day.Month(), day.Day(), 13, 0, 0, 0, recurringZone)

		for _, tpl := range s.templates {
			if !appliesTo(tpl, weekday) {
				continue
			}
			a := activity.NewActivity(activity.SourceRecurring, tpl.Name, start, start, tpl.Hours)
			a.Description = fmt.Sprintf("Recurring activity: %s", tpl.Name)
			a.AreaPath = tpl.AreaPath
			a.IterationPath = tpl.IterationPath
			a.Tags = append([]string(nil), tpl.Tags...)
			activities = append(activities, a)
		}
	}
	return activities, nil
}

func (s *RecurringSource) Verify(ctx context.Context) error {
	if len(s.templates) == 0 {
		return fmt.Errorf("no recurring templates configured")
	}
	return nil
}

// mondayBasedWeekday converts Go's Sunday-based weekday to the 0=Monday
// convention the templates use.
func mondayBasedWeekday(w time.Weekday) int {
	return (int(w) + 6) % 7
}

func appliesTo(tpl config.RecurringTemplate, weekday int) bool {
	for _, w := range tpl.Weekdays {
		if w == weekday {
			return true
		}
	}
	return false
}
