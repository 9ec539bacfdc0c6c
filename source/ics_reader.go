package source

import (
	"fmt"
	"os"

	ics "github.com/arran4/golang-ical"
)

type icsReader struct{}

func (r *icsReader) Read(path string) ([]event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ics file %s: %w", path, err)
	}
	defer file.Close()

	cal, err := ics.ParseCalendar(file)
	if err != nil {
		return nil, fmt.Errorf("parse ics file %s: %w", path, err)
	}

	var events []event
	for _, v := range cal.Events() {
		summaryProp := v.GetProperty(ics.ComponentPropertySummary)
		if summaryProp == nil || summaryProp.Value == "" {
			continue
		}

		allDay := false
		start, err := v.GetStartAt()
		if err != nil {
			start, err = v.GetAllDayStartAt()
			if err != nil {
				continue
			}
			allDay = true
		}
		end := start
		if allDay {
			if e, err := v.GetAllDayEndAt(); err == nil {
				end = e
			}
		} else if e, err := v.GetEndAt(); err == nil {
			end = e
		}

		description := ""
		if prop := v.GetProperty(ics.ComponentPropertyDescription); prop != nil {
			description = prop.Value
		}

		events = append(events, event{
			Subject:     summaryProp.Value,
			Description: description,
			Start:       start,
			End:         end,
			AllDay:      allDay,
		})
	}
	return events, nil
}
