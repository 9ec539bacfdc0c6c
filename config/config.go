package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyAzureDevOpsBaseURL   = "azure_devops.base_url"
	KeyAzureDevOpsIteration = "azure_devops.default_iteration"
	KeyNonWorkingDays       = "non_working_days"
)

type Config struct {
	AzureDevOps    AzureDevOpsConfig `mapstructure:"azure_devops" validate:"required"`
	Sources        SourcesConfig     `mapstructure:"sources"`
	NonWorkingDays []string          `mapstructure:"non_working_days"`
	LLM            *LLMConfig        `mapstructure:"llm"`
}

type AzureDevOpsConfig struct {
	BaseURL             string `mapstructure:"base_url" validate:"required,url"`
	Organization        string `mapstructure:"organization" validate:"required"`
	Project             string `mapstructure:"project" validate:"required"`
	DefaultArea         string `mapstructure:"default_area" validate:"required"`
	DefaultIteration    string `mapstructure:"default_iteration"`
	AuthorEmail         string `mapstructure:"author_email"`
	AssignedTo          string `mapstructure:"assigned_to"`
	DefaultState        string `mapstructure:"default_state"`
	MonthlyGrouping     bool   `mapstructure:"monthly_grouping"`
	GroupingLabel       string `mapstructure:"grouping_label"`
	EnhanceDescriptions bool   `mapstructure:"enhance_descriptions"`
	LLMSystemPrompt     string `mapstructure:"llm_system_prompt"`
}

type SourcesConfig struct {
	Calendar  *CalendarConfig  `mapstructure:"calendar"`
	Recurring *RecurringConfig `mapstructure:"recurring"`
	Commits   *CommitsConfig   `mapstructure:"commits"`
}

type CalendarConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Type          string   `mapstructure:"type"`
	Path          string   `mapstructure:"path"`
	UserEmail     string   `mapstructure:"user_email"`
	AreaPath      string   `mapstructure:"area_path"`
	IterationPath string   `mapstructure:"iteration_path"`
	Tags          []string `mapstructure:"tags"`
}

type RecurringConfig struct {
	Enabled   bool                `mapstructure:"enabled"`
	Templates []RecurringTemplate `mapstructure:"templates"`
}

// RecurringTemplate weekdays use 0=Monday .. 6=Sunday.
type RecurringTemplate struct {
	Name          string   `mapstructure:"name"`
	Weekdays      []int    `mapstructure:"weekdays"`
	Hours         float64  `mapstructure:"hours"`
	AreaPath      string   `mapstructure:"area_path"`
	IterationPath string   `mapstructure:"iteration_path"`
	Tags          []string `mapstructure:"tags"`
}

type CommitsConfig struct {
	Enabled      bool               `mapstructure:"enabled"`
	Repositories []RepositoryConfig `mapstructure:"repositories"`
}

type RepositoryConfig struct {
	Name          string   `mapstructure:"name"`
	Project       string   `mapstructure:"project"`
	AreaPath      string   `mapstructure:"area_path"`
	IterationPath string   `mapstructure:"iteration_path"`
	Tags          []string `mapstructure:"tags"`
}

type LLMConfig struct {
	Model string `mapstructure:"model"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# adofill configuration
azure_devops:
  base_url: "https://dev.azure.com"
  organization: "my-org"
  project: "My Project"
  default_area: "My Project\\Team"
  default_iteration: "@CurrentIteration"
  author_email: "me@example.com"
  # assigned_to: "me@example.com"
  # default_state: "Closed"
  monthly_grouping: true
  # grouping_label: "Platform"
  enhance_descriptions: false

sources:
  calendar:
    enabled: true
    type: csv            # csv | ics | excel | graph
    path: "calendar.csv"
    area_path: "My Project\\Team"
    tags: [meeting]
  recurring:
    enabled: true
    templates:
      - name: "Daily"
        weekdays: [0, 1, 2, 3, 4]   # 0=Monday .. 6=Sunday
        hours: 0.25
        area_path: "My Project\\Team"
        tags: [ceremony]
  commits:
    enabled: false
    repositories: []

non_working_days: []

# llm:
#   model: "claude-sonnet-4-20250514"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateSources(cfg.Sources); err != nil {
		return nil, err
	}
	if err := validateNonWorkingDays(cfg.NonWorkingDays); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAzureDevOpsBaseURL, "https://dev.azure.com")
	v.SetDefault(KeyAzureDevOpsIteration, "@CurrentIteration")
	v.SetDefault(KeyNonWorkingDays, []string{})
}

func validateSources(sources SourcesConfig) error {
	if calendar := sources.Calendar; calendar != nil && calendar.Enabled {
		calendarType := strings.ToLower(strings.TrimSpace(calendar.Type))
		switch calendarType {
		case "csv", "ics", "excel":
			if strings.TrimSpace(calendar.Path) == "" {
				return fmt.Errorf("validation failed: sources.calendar.path is required for type %q", calendarType)
			}
		case "graph":
			if strings.TrimSpace(calendar.UserEmail) == "" {
				return fmt.Errorf("validation failed: sources.calendar.user_email is required for type graph")
			}
		default:
			return fmt.Errorf(
				"validation failed: sources.calendar.type %q is not supported (valid: csv, ics, excel, graph)",
				calendar.Type,
			)
		}
	}

	if recurring := sources.Recurring; recurring != nil && recurring.Enabled {
		for i, template := range recurring.Templates {
			if strings.TrimSpace(template.Name) == "" {
				return fmt.Errorf("validation failed: sources.recurring.templates[%d].name is required", i)
			}
			if template.Hours <= 0 {
				return fmt.Errorf("validation failed: sources.recurring.templates[%d].hours must be > 0", i)
			}
			if len(template.Weekdays) == 0 {
				return fmt.Errorf("validation failed: sources.recurring.templates[%d].weekdays is required", i)
			}
			for _, weekday := range template.Weekdays {
				if weekday < 0 || weekday > 6 {
					return fmt.Errorf(
						"validation failed: sources.recurring.templates[%d] has invalid weekday %d (use 0=Monday .. 6=Sunday)",
						i,
						weekday,
					)
				}
			}
		}
	}

	if commits := sources.Commits; commits != nil && commits.Enabled {
		if len(commits.Repositories) == 0 {
			return fmt.Errorf("validation failed: sources.commits.repositories is required when commits are enabled")
		}
		seen := make(map[string]struct{}, len(commits.Repositories))
		for i, repo := range commits.Repositories {
			name := strings.TrimSpace(repo.Name)
			if name == "" {
				return fmt.Errorf("validation failed: sources.commits.repositories[%d].name is required", i)
			}
			key := strings.ToLower(name)
			if _, exists := seen[key]; exists {
				return fmt.Errorf("validation failed: duplicate repository name %q", name)
			}
			seen[key] = struct{}{}
		}
	}

	return nil
}

func validateNonWorkingDays(days []string) error {
	for i, day := range days {
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(day)); err != nil {
			return fmt.Errorf("validation failed: non_working_days[%d] %q is not a YYYY-MM-DD date", i, day)
		}
	}
	return nil
}
