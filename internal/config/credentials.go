package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Credential keys, shared by the environment and the secrets file.
const (
	KeyFormEndpoint   = "form_endpoint"
	KeyFormKey        = "form_key"
	KeyOpenAIKey      = "openai_key"
	KeyOpenAIEndpoint = "openai_endpoint"
	KeyOpenAIVersion  = "openai_version"
	KeyDeploymentName = "deployment_name"
)

// Credentials holds the values needed to reach the external services.
// It is built once at startup and never mutated.
type Credentials struct {
	FormEndpoint   string
	FormKey        string
	OpenAIKey      string
	OpenAIEndpoint string
	OpenAIVersion  string
	DeploymentName string
}

// DocumentAnalysisReady reports whether the OCR service can be called.
func (c *Credentials) DocumentAnalysisReady() bool {
	return c.FormEndpoint != "" && c.FormKey != ""
}

// LanguageModelReady reports whether the chat-completion service can be called.
func (c *Credentials) LanguageModelReady() bool {
	return c.OpenAIKey != "" && c.OpenAIEndpoint != "" &&
		c.OpenAIVersion != "" && c.DeploymentName != ""
}

// Missing lists the keys that resolved to an empty value, in declaration
// order.
func (c *Credentials) Missing() []string {
	var missing []string
	for _, kv := range []struct{ key, val string }{
		{KeyFormEndpoint, c.FormEndpoint},
		{KeyFormKey, c.FormKey},
		{KeyOpenAIKey, c.OpenAIKey},
		{KeyOpenAIEndpoint, c.OpenAIEndpoint},
		{KeyOpenAIVersion, c.OpenAIVersion},
		{KeyDeploymentName, c.DeploymentName},
	} {
		if kv.val == "" {
			missing = append(missing, kv.key)
		}
	}
	return missing
}

// LoadCredentials resolves every key from the process environment first and
// falls back to the secrets file. An optional .env file is loaded into the
// environment beforehand without overriding variables that are already set.
// Missing files are not an error.
func LoadCredentials(secrets SecretsConfig) (*Credentials, error) {
	if secrets.EnvFile != "" {
		if _, err := os.Stat(secrets.EnvFile); err == nil {
			if err := godotenv.Load(secrets.EnvFile); err != nil {
				return nil, fmt.Errorf("failed to load env file %s: %w", secrets.EnvFile, err)
			}
		}
	}

	store := viper.New()
	if secrets.SecretsFile != "" {
		if _, err := os.Stat(secrets.SecretsFile); err == nil {
			store.SetConfigFile(secrets.SecretsFile)
			if err := store.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read secrets file %s: %w", secrets.SecretsFile, err)
			}
		}
	}

	lookup := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(store.GetString(key))
	}

	return &Credentials{
		FormEndpoint:   lookup(KeyFormEndpoint),
		FormKey:        lookup(KeyFormKey),
		OpenAIKey:      lookup(KeyOpenAIKey),
		OpenAIEndpoint: lookup(KeyOpenAIEndpoint),
		OpenAIVersion:  lookup(KeyOpenAIVersion),
		DeploymentName: lookup(KeyDeploymentName),
	}, nil
}
