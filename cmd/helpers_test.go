package cmd

import (
	"testing"
	"time"

	"adofill/activity"
	"adofill/config"
)

func TestParseRunRangeSingleDate(t *testing.T) {
	from, to, err := parseRunRange("2026-03-02", "", "")
	if err != nil {
		t.Fatalf("parseRunRange: %v", err)
	}
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	if !from.Equal(want) || !to.Equal(want) {
		t.Fatalf("expected %v for both ends, got %v..%v", want, from, to)
	}
}

func TestParseRunRangeFromTo(t *testing.T) {
	from, to, err := parseRunRange("", "2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("parseRunRange: %v", err)
	}
	if !from.Before(to) {
		t.Fatalf("expected ascending range, got %v..%v", from, to)
	}
}

func TestParseRunRangeDefaultsToToday(t *testing.T) {
	from, to, err := parseRunRange("", "", "")
	if err != nil {
		t.Fatalf("parseRunRange: %v", err)
	}
	now := time.Now()
	if from.Year() != now.Year() || from.Month() != now.Month() || from.Day() != now.Day() {
		t.Fatalf("expected today, got %v", from)
	}
	if !from.Equal(to) {
		t.Fatalf("expected single day, got %v..%v", from, to)
	}
}

func TestParseRunRangeRejectsInvalidCombinations(t *testing.T) {
	cases := []struct {
		name, date, from, to string
	}{
		{"date with from", "2026-03-02", "2026-03-01", ""},
		{"from without to", "", "2026-03-01", ""},
		{"to without from", "", "", "2026-03-31"},
		{"inverted range", "", "2026-03-31", "2026-03-01"},
		{"bad date format", "02/03/2026", "", ""},
	}
	for _, tc := range cases {
		if _, _, err := parseRunRange(tc.date, tc.from, tc.to); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestBuildSourcesFromLoadedConfig(t *testing.T) {
	cfg, err := config.ValidateYAMLContent([]byte(`
azure_devops:
  organization: "acme"
  project: "Platform"
  default_area: "Platform\\Team"
sources:
  recurring:
    enabled: true
    templates:
      - name: "Daily"
        weekdays: [0, 1, 2, 3, 4]
        hours: 0.25
  commits:
    enabled: true
    repositories:
      - name: "api"
`))
	if err != nil {
		t.Fatalf("ValidateYAMLContent: %v", err)
	}

	sources, skipped, err := buildSources(*cfg, nil, time.Second)
	if err != nil {
		t.Fatalf("buildSources: %v", err)
	}
	if len(sources) != 1 || sources[0].Type() != activity.SourceRecurring {
		t.Fatalf("expected only the recurring source, got %+v", sources)
	}
	if len(skipped) != 1 {
		t.Fatalf("commit source without a client should be skipped, got %v", skipped)
	}
}

func TestParseSourceFilter(t *testing.T) {
	if got, err := parseSourceFilter(""); err != nil || got != "" {
		t.Fatalf("empty filter should pass through, got %q %v", got, err)
	}
	if got, err := parseSourceFilter("commit"); err != nil || got != activity.SourceCommit {
		t.Fatalf("unexpected result %q %v", got, err)
	}
	if _, err := parseSourceFilter("jira"); err == nil {
		t.Fatal("expected error for unknown source")
	}
}
