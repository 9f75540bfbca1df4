package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("creates default file on first run", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		_, statErr := os.Stat(path)
		assert.NoError(t, statErr, "expected default config to be written")
		assert.Equal(t, "prebuilt-document", cfg.OCR.ModelID)
		assert.InDelta(t, 0.2, cfg.LLM.DocumentTemperature, 1e-6)
		assert.Equal(t, filepath.Join(dir, "data", "temp"), cfg.GetTempDir())
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := "server:\n  port: 9000\nocr:\n  provider: tesseract\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "tesseract", cfg.OCR.Provider)
		assert.Equal(t, "prebuilt-document", cfg.OCR.ModelID)
		assert.Equal(t, 20, cfg.Processing.PreviewRows)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: nope\n"), 0644))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "unknown llm provider")
	})

	t.Run("environment overrides", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		t.Setenv("PORT", "7777")
		t.Setenv("DATA_DIR", filepath.Join(dir, "elsewhere"))
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 7777, cfg.Server.Port)
		assert.Equal(t, filepath.Join(dir, "elsewhere", "temp"), cfg.GetTempDir())
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func clearCredentialEnv(t *testing.T) {
	for _, key := range []string{KeyFormEndpoint, KeyFormKey, KeyOpenAIKey, KeyOpenAIEndpoint, KeyOpenAIVersion, KeyDeploymentName} {
		t.Setenv(key, "")
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Run("environment wins over secrets file", func(t *testing.T) {
		clearCredentialEnv(t)
		dir := t.TempDir()
		secrets := filepath.Join(dir, "secrets.toml")
		require.NoError(t, os.WriteFile(secrets, []byte(`
form_endpoint = "https://from-secrets.example"
form_key = "secret-key"
openai_key = "oa-key"
openai_endpoint = "https://oa.example"
openai_version = "2024-02-01"
deployment_name = "gpt-4o"
`), 0644))
		t.Setenv(KeyFormEndpoint, "https://from-env.example")

		creds, err := LoadCredentials(SecretsConfig{SecretsFile: secrets})
		require.NoError(t, err)

		assert.Equal(t, "https://from-env.example", creds.FormEndpoint)
		assert.Equal(t, "secret-key", creds.FormKey)
		assert.Equal(t, "gpt-4o", creds.DeploymentName)
		assert.True(t, creds.DocumentAnalysisReady())
		assert.True(t, creds.LanguageModelReady())
		assert.Empty(t, creds.Missing())
	})

	t.Run("env file feeds the environment", func(t *testing.T) {
		clearCredentialEnv(t)
		dir := t.TempDir()
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("form_key=dotenv-key\n"), 0644))
		// godotenv does not override values that are set, even if empty
		os.Unsetenv(KeyFormKey)

		creds, err := LoadCredentials(SecretsConfig{EnvFile: envFile})
		require.NoError(t, err)
		assert.Equal(t, "dotenv-key", creds.FormKey)
		os.Unsetenv(KeyFormKey)
	})

	t.Run("missing files yield empty credentials", func(t *testing.T) {
		clearCredentialEnv(t)
		dir := t.TempDir()

		creds, err := LoadCredentials(SecretsConfig{
			EnvFile:     filepath.Join(dir, "absent.env"),
			SecretsFile: filepath.Join(dir, "absent.toml"),
		})
		require.NoError(t, err)

		assert.False(t, creds.DocumentAnalysisReady())
		assert.False(t, creds.LanguageModelReady())
		assert.Equal(t, []string{
			KeyFormEndpoint, KeyFormKey, KeyOpenAIKey,
			KeyOpenAIEndpoint, KeyOpenAIVersion, KeyDeploymentName,
		}, creds.Missing())
	})
}

func TestCredentials_MissingIsOrdered(t *testing.T) {
	creds := &Credentials{FormKey: "k", OpenAIEndpoint: "https://x.example"}
	for i := 0; i < 20; i++ {
		assert.Equal(t, []string{
			KeyFormEndpoint, KeyOpenAIKey, KeyOpenAIVersion, KeyDeploymentName,
		}, creds.Missing())
	}
}
