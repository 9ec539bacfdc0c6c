package source

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"adofill/activity"
	"adofill/config"
	"adofill/internal/timeutil"
	"adofill/msgraph"
)

// CalendarSource turns calendar events into activities. Events come
// from an Outlook export file (csv, ics or excel) or from the
// Microsoft Graph API, depending on the configured type.
type CalendarSource struct {
	cfg    config.CalendarConfig
	reader eventReader
	graph  msgraph.Client
}

// NewCalendarSource builds the source for the configured calendar
// type. graph is required only for type "graph".
func NewCalendarSource(cfg config.CalendarConfig, graph msgraph.Client) (*CalendarSource, error) {
	s := &CalendarSource{cfg: cfg, graph: graph}
	switch cfg.Type {
	case "csv":
		s.reader = &csvReader{}
	case "ics":
		s.reader = &icsReader{}
	case "excel":
		s.reader = &excelReader{}
	case "graph":
		if graph == nil {
			return nil, fmt.Errorf("calendar type graph requires Microsoft Graph credentials")
		}
	default:
		return nil, fmt.Errorf("unsupported calendar type %q", cfg.Type)
	}
	return s, nil
}

func (s *CalendarSource) Type() activity.SourceType { return activity.SourceCalendar }

func (s *CalendarSource) Name() string { return "Calendar" }

func (s *CalendarSource) Collect(ctx context.Context, from, to time.Time) ([]activity.Activity, error) {
	events, err := s.events(ctx, from, to)
	if err != nil {
		return nil, err
	}

	activities := make([]activity.Activity, 0, len(events))
	for _, e := range events {
		if !timeutil.InRange(timeutil.StartOfDay(e.Start), timeutil.StartOfDay(from), timeutil.StartOfDay(to)) {
			continue
		}
		a := activity.NewActivity(activity.SourceCalendar, e.Subject, e.Start, e.End, eventHours(e))
		a.Description = e.Description
		a.AreaPath = s.cfg.AreaPath
		a.IterationPath = s.cfg.IterationPath
		a.Tags = append([]string(nil), s.cfg.Tags...)
		activities = append(activities, a)
	}
	return activities, nil
}

// eventHours applies the minimum billable granularity to timed events.
// All-day events carry no completed work.
func eventHours(e event) float64 {
	if e.AllDay {
		return 0
	}
	duration := e.End.Sub(e.Start).Hours()
	return math.Round(math.Max(duration, activity.MinCalendarHours)*100) / 100
}

func (s *CalendarSource) events(ctx context.Context, from, to time.Time) ([]event, error) {
	if s.cfg.Type == "graph" {
		end := timeutil.StartOfDay(to).AddDate(0, 0, 1).Add(-time.Second)
		graphEvents, err := s.graph.CalendarView(ctx, s.cfg.UserEmail, timeutil.StartOfDay(from), end)
		if err != nil {
			return nil, fmt.Errorf("fetch calendar events: %w", err)
		}
		events := make([]event, 0, len(graphEvents))
		for _, g := range graphEvents {
			events = append(events, event{
				Subject: g.Subject,
				Start:   g.Start,
				End:     g.End,
				AllDay:  g.IsAllDay,
			})
		}
		return events, nil
	}
	return s.reader.Read(s.cfg.Path)
}

func (s *CalendarSource) Verify(ctx context.Context) error {
	if s.cfg.Type == "graph" {
		return s.graph.TestConnection(ctx)
	}
	if _, err := os.Stat(s.cfg.Path); err != nil {
		return fmt.Errorf("calendar file: %w", err)
	}
	return nil
}
