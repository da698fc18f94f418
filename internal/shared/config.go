package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values loaded from config.toml.
const (
	EnvBaseURL  = "CUTOUT_BASE_URL"
	EnvUsername = "CUTOUT_USERNAME"
	EnvPassword = "CUTOUT_PASSWORD"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Auth        AuthConfig        `toml:"auth"`
	Credentials CredentialsConfig `toml:"credentials"`
	Upload      UploadConfig      `toml:"upload"`
	Database    DatabaseConfig    `toml:"database"`
	Logging     LoggingConfig     `toml:"logging"`
}

// ServerConfig locates the background-removal service.
type ServerConfig struct {
	BaseURL        string `toml:"base_url"`
	TokenPath      string `toml:"token_path"`
	RemovePath     string `toml:"remove_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AuthConfig toggles the bearer token flow.
type AuthConfig struct {
	Enabled bool `toml:"enabled"`
}

// CredentialsConfig holds the username and password sent to the token endpoint.
type CredentialsConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// UploadConfig tunes upload progress reporting and where results are saved.
type UploadConfig struct {
	ProcessingDelayMS int     `toml:"processing_delay_ms"`
	ProgressRate      float64 `toml:"progress_rate"`
	OutputDir         string  `toml:"output_dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoggingConfig contains log level and the file used while the TUI owns the terminal.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Timeout returns the HTTP client timeout, zero meaning none.
func (c ServerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProcessingDelay returns the pause between 100% upload progress and the processing indicator.
func (c UploadConfig) ProcessingDelay() time.Duration {
	return time.Duration(c.ProcessingDelayMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from the given .env files (".env" when none are given).
//
// Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}

	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides endpoint and credential settings from CUTOUT_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Credentials.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Credentials.Password = v
	}
}

// Validate reports configuration that cannot be used to reach the service.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return fmt.Errorf("%w: server.base_url is empty", ErrInvalidConfig)
	}
	if c.Upload.ProcessingDelayMS < 0 {
		return fmt.Errorf("%w: upload.processing_delay_ms must not be negative", ErrInvalidConfig)
	}
	if c.Upload.ProgressRate < 0 {
		return fmt.Errorf("%w: upload.progress_rate must not be negative", ErrInvalidConfig)
	}
	if c.Auth.Enabled && c.Credentials.Username == "" {
		return fmt.Errorf("%w: credentials.username is required when auth is enabled", ErrMissingCredentials)
	}
	return nil
}
