package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvAzureDevOpsPAT    = "AZURE_DEVOPS_PAT"
	EnvGraphTenantID     = "GRAPH_TENANT_ID"
	EnvGraphClientID     = "GRAPH_CLIENT_ID"
	EnvGraphClientSecret = "GRAPH_CLIENT_SECRET"
	EnvAnthropicAPIKey   = "ANTHROPIC_API_KEY"
)

// LoadEnv loads a .env file when present. Missing files are not an error;
// credentials may already be in the process environment.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// AzureDevOpsPAT returns the personal access token used for all Azure DevOps
// calls. Required for every remote-mutating command.
func AzureDevOpsPAT() (string, error) {
	pat := os.Getenv(EnvAzureDevOpsPAT)
	if pat == "" {
		return "", fmt.Errorf("%s is not set (add it to .env or the environment)", EnvAzureDevOpsPAT)
	}
	return pat, nil
}

// GraphCredentials returns the Microsoft Graph client-credential triple, or
// ok=false when any part is missing.
func GraphCredentials() (tenantID, clientID, clientSecret string, ok bool) {
	tenantID = os.Getenv(EnvGraphTenantID)
	clientID = os.Getenv(EnvGraphClientID)
	clientSecret = os.Getenv(EnvGraphClientSecret)
	ok = tenantID != "" && clientID != "" && clientSecret != ""
	return tenantID, clientID, clientSecret, ok
}

// AnthropicAPIKey returns the key for the optional description enhancer.
func AnthropicAPIKey() (string, error) {
	key := os.Getenv(EnvAnthropicAPIKey)
	if key == "" {
		return "", fmt.Errorf("%s is not set but enhance_descriptions is enabled", EnvAnthropicAPIKey)
	}
	return key, nil
}
