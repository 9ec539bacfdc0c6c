package source

import (
	"strings"
	"time"
)

// event is a calendar entry before conversion to an Activity.
type event struct {
	Subject     string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// eventReader parses a calendar export file.
type eventReader interface {
	Read(path string) ([]event, error)
}

// record is one spreadsheet row keyed by normalized header.
type record struct {
	RowNumber int
	Values    map[string]string
}

// Get returns the first non-empty value among the given column names.
func (r record) Get(keys ...string) string {
	for _, key := range keys {
		if value, ok := r.Values[normalizeHeader(key)]; ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func normalizeHeader(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.TrimPrefix(trimmed, "\uFEFF")
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}

var dateLayouts = []string{"01/02/2006", "2006-01-02", "02/01/2006"}

var timeLayouts = []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM"}

// parseEventTime combines an Outlook export's separate date and time
// columns. A missing or unparseable time falls back to midnight.
func parseEventTime(dateStr, timeStr string) (time.Time, bool) {
	var day time.Time
	parsed := false
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			day = t
			parsed = true
			break
		}
	}
	if !parsed {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, timeStr); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, time.UTC), true
		}
	}
	return day, true
}

// recordsToEvents maps Outlook export rows (English or Portuguese
// column names) to events. Rows without a subject or start date are
// skipped, as are rows whose dates fail to parse.
func recordsToEvents(records []record) []event {
	events := make([]event, 0, len(records))
	for _, r := range records {
		subject := r.Get("Subject", "Assunto")
		startDate := r.Get("Start Date", "Data de Início")
		if subject == "" || startDate == "" {
			continue
		}
		startTime := r.Get("Start Time", "Hora de Início")
		endDate := r.Get("End Date", "Data de Término")
		if endDate == "" {
			endDate = startDate
		}
		endTime := r.Get("End Time", "Hora de Término")

		start, ok := parseEventTime(startDate, startTime)
		if !ok {
			continue
		}
		end, ok := parseEventTime(endDate, endTime)
		if !ok {
			continue
		}

		allDay := strings.EqualFold(r.Get("All day Event", "Evento de Dia Inteiro"), "true") ||
			(startTime == "" && endTime == "")

		events = append(events, event{
			Subject:     subject,
			Description: r.Get("Description", "Descrição"),
			Start:       start,
			End:         end,
			AllDay:      allDay,
		})
	}
	return events
}
