package cmd

import (
	"fmt"
	"strings"
	"time"

	"adofill/activity"
	"adofill/azdo"
	"adofill/config"
	"adofill/enhance"
	"adofill/msgraph"
	"adofill/source"
)

// parseRunRange resolves the --date/--from/--to flags into one
// inclusive day range. With no flag set the range is today.
func parseRunRange(dateValue, fromValue, toValue string) (time.Time, time.Time, error) {
	dateValue = strings.TrimSpace(dateValue)
	fromValue = strings.TrimSpace(fromValue)
	toValue = strings.TrimSpace(toValue)

	if dateValue != "" {
		if fromValue != "" || toValue != "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--date cannot be combined with --from/--to")
		}
		day, err := parseDayFlag("--date", dateValue)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return day, day, nil
	}

	if fromValue == "" && toValue == "" {
		today := startOfToday()
		return today, today, nil
	}
	if fromValue == "" || toValue == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--from and --to must be used together")
	}

	from, err := parseDayFlag("--from", fromValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDayFlag("--to", toValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range: --from must be <= --to")
	}
	return from, to, nil
}

func parseDayFlag(flag, value string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s value %q (expected YYYY-MM-DD)", flag, value)
	}
	return day, nil
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// parseSourceFilter validates the optional --source flag.
func parseSourceFilter(value string) (activity.SourceType, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return activity.ParseSourceType(value)
}

// newWorkItemClient builds the Azure DevOps client from config plus
// the PAT in the environment.
func newWorkItemClient(cfg config.Config, timeout time.Duration) (*azdo.HTTPClient, error) {
	pat, err := config.AzureDevOpsPAT()
	if err != nil {
		return nil, err
	}
	return azdo.NewHTTPClient(
		cfg.AzureDevOps.BaseURL,
		cfg.AzureDevOps.Organization,
		cfg.AzureDevOps.Project,
		pat,
		timeout,
	), nil
}

// buildSources assembles the enabled sources. client may be nil when
// the caller cannot reach Azure DevOps (no PAT); the commit source is
// then skipped with a warning from the caller.
func buildSources(cfg config.Config, client azdo.Client, timeout time.Duration) ([]source.Source, []string, error) {
	var sources []source.Source
	var skipped []string

	if cal := cfg.Sources.Calendar; cal != nil && cal.Enabled {
		var graph msgraph.Client
		if cal.Type == "graph" {
			tenantID, clientID, clientSecret, ok := config.GraphCredentials()
			if !ok {
				return nil, nil, fmt.Errorf("calendar type graph requires %s, %s and %s in the environment",
					config.EnvGraphTenantID, config.EnvGraphClientID, config.EnvGraphClientSecret)
			}
			graph = msgraph.NewHTTPClient(tenantID, clientID, clientSecret, timeout)
		}
		calendarSource, err := source.NewCalendarSource(*cal, graph)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, calendarSource)
	}

	if rec := cfg.Sources.Recurring; rec != nil && rec.Enabled {
		sources = append(sources, source.NewRecurringSource(*rec, cfg.NonWorkingDays))
	}

	if com := cfg.Sources.Commits; com != nil && com.Enabled {
		if client == nil {
			skipped = append(skipped, "commits (no Azure DevOps PAT available)")
		} else {
			sources = append(sources, source.NewCommitSource(*com, client, cfg.AzureDevOps.AuthorEmail))
		}
	}

	return sources, skipped, nil
}

// newEnhancer returns the description enhancer configured for the run,
// or nil when enhancement is disabled.
func newEnhancer(cfg config.Config) (enhance.Enhancer, error) {
	if !cfg.AzureDevOps.EnhanceDescriptions {
		return nil, nil
	}
	apiKey, err := config.AnthropicAPIKey()
	if err != nil {
		return nil, fmt.Errorf("description enhancement is enabled: %w", err)
	}
	model := ""
	if cfg.LLM != nil {
		model = cfg.LLM.Model
	}
	return enhance.NewClaude(apiKey, model, cfg.AzureDevOps.LLMSystemPrompt), nil
}
