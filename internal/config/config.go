// Package config provides YAML-based configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Processing configuration
	Processing ProcessingConfig `yaml:"processing"`

	// External services
	OCR      OCRConfig      `yaml:"ocr"`
	LLM      LLMConfig      `yaml:"llm"`
	Services ServicesConfig `yaml:"services"`

	// Credential sources
	Secrets SecretsConfig `yaml:"secrets"`

	Log LogConfig `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                 int    `yaml:"port"`
	BindAddress          string `yaml:"bind_address"`
	ReadTimeout          int    `yaml:"read_timeout_seconds"`
	WriteTimeout         int    `yaml:"write_timeout_seconds"`
	IdleTimeout          int    `yaml:"idle_timeout_seconds"`
	BodyLimit            string `yaml:"body_limit"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
	EnableCompression    bool   `yaml:"enable_compression"`
}

// StorageConfig contains temp storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"data_directory"`
	TempDirectory string `yaml:"temp_directory"`
}

// ProcessingConfig contains flow tuning options
type ProcessingConfig struct {
	PreviewRows int `yaml:"preview_rows"`
}

// OCRConfig selects and tunes the document-analysis provider
type OCRConfig struct {
	Provider       string   `yaml:"provider"` // "azure" or "tesseract"
	ModelID        string   `yaml:"model_id"`
	APIVersion     string   `yaml:"api_version"`
	PollIntervalMs int      `yaml:"poll_interval_ms"`
	Languages      []string `yaml:"languages"`
}

// LLMConfig selects and tunes the language-model provider
type LLMConfig struct {
	Provider            string  `yaml:"provider"` // "azure" or "vertex"
	DocumentTemperature float32 `yaml:"document_temperature"`
	VertexProject       string  `yaml:"vertex_project"`
	VertexRegion        string  `yaml:"vertex_region"`
	VertexModel         string  `yaml:"vertex_model"`
}

// ServicesConfig holds settings shared by external clients. A zero
// timeout leaves the client library default in place.
type ServicesConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// SecretsConfig names the credential files consulted after the environment
type SecretsConfig struct {
	EnvFile     string `yaml:"env_file"`
	SecretsFile string `yaml:"secrets_file"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:                 8501,
			BindAddress:          "0.0.0.0",
			ReadTimeout:          30,
			WriteTimeout:         300,
			IdleTimeout:          120,
			BodyLimit:            "200M",
			EnableRequestLogging: true,
			EnableCompression:    true,
		},
		Storage: StorageConfig{
			DataDirectory: "./data",
			TempDirectory: "./data/temp",
		},
		Processing: ProcessingConfig{
			PreviewRows: 20,
		},
		OCR: OCRConfig{
			Provider:       "azure",
			ModelID:        "prebuilt-document",
			APIVersion:     "2023-07-31",
			PollIntervalMs: 1000,
			Languages:      []string{"deu", "eng"},
		},
		LLM: LLMConfig{
			Provider:            "azure",
			DocumentTemperature: 0.2,
			VertexRegion:        "europe-west3",
			VertexModel:         "gemini-1.5-pro",
		},
		Secrets: SecretsConfig{
			EnvFile:     ".env",
			SecretsFile: ".streamlit/secrets.toml",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unset keys keep their defaults
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Company Brain configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *AppConfig) validate() error {
	switch c.OCR.Provider {
	case "azure", "tesseract":
	default:
		return fmt.Errorf("unknown ocr provider %q", c.OCR.Provider)
	}
	switch c.LLM.Provider {
	case "azure", "vertex":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.Processing.PreviewRows < 0 {
		return fmt.Errorf("processing.preview_rows must not be negative")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.TempDirectory = filepath.Join(dataDir, "temp")
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.TempDirectory) {
		c.Storage.TempDirectory = filepath.Join(configDir, c.Storage.TempDirectory)
	}
	if c.Secrets.EnvFile != "" && !filepath.IsAbs(c.Secrets.EnvFile) {
		c.Secrets.EnvFile = filepath.Join(configDir, c.Secrets.EnvFile)
	}
	if c.Secrets.SecretsFile != "" && !filepath.IsAbs(c.Secrets.SecretsFile) {
		c.Secrets.SecretsFile = filepath.Join(configDir, c.Secrets.SecretsFile)
	}
}

// GetTempDir returns the absolute temp directory path
func (c *AppConfig) GetTempDir() string {
	return c.Storage.TempDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// ServiceTimeout returns the external call timeout, zero meaning none.
func (c *AppConfig) ServiceTimeout() time.Duration {
	return time.Duration(c.Services.TimeoutSeconds) * time.Second
}

// PollInterval returns the OCR operation poll interval.
func (c *AppConfig) PollInterval() time.Duration {
	if c.OCR.PollIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(c.OCR.PollIntervalMs) * time.Millisecond
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.TempDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
