package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// CloudManagerConfig holds the API endpoint and credentials.
type CloudManagerConfig struct {
	BaseURL     string `toml:"base_url"`
	OrgID       string `toml:"org_id"`
	APIKey      string `toml:"api_key"`
	AccessToken string `toml:"access_token"`
	ProgramID   string `toml:"program_id"`
}

// LogsConfig holds settings for log tailing and downloads.
type LogsConfig struct {
	OutputDir      string        `toml:"output_dir"`
	TailBackoff    time.Duration `toml:"tail_backoff"`
	RolloverWindow time.Duration `toml:"rollover_window"`
}

// Config holds all cmdeck configuration.
type Config struct {
	CloudManager CloudManagerConfig `toml:"cloudmanager"`
	Logs         LogsConfig         `toml:"logs"`
}

const (
	defaultBaseURL        = "https://cloudmanager.adobe.io"
	defaultTailBackoff    = 2 * time.Second
	defaultRolloverWindow = 5 * time.Minute
)

// BaseURLOrDefault returns the configured API base URL or the public endpoint.
func (c Config) BaseURLOrDefault() string {
	if c.CloudManager.BaseURL != "" {
		return c.CloudManager.BaseURL
	}
	return defaultBaseURL
}

// OutputDirOrDefault returns the download directory, defaulting to the
// working directory.
func (c Config) OutputDirOrDefault() string {
	if c.Logs.OutputDir != "" {
		return c.Logs.OutputDir
	}
	return "."
}

func (c Config) TailBackoffOrDefault() time.Duration {
	if c.Logs.TailBackoff > 0 {
		return c.Logs.TailBackoff
	}
	return defaultTailBackoff
}

func (c Config) RolloverWindowOrDefault() time.Duration {
	if c.Logs.RolloverWindow > 0 {
		return c.Logs.RolloverWindow
	}
	return defaultRolloverWindow
}

// Validate reports every missing credential in a single error.
func (c Config) Validate() error {
	var missing []string
	if c.CloudManager.OrgID == "" {
		missing = append(missing, "cloudmanager.org_id (CM_ORG_ID)")
	}
	if c.CloudManager.APIKey == "" {
		missing = append(missing, "cloudmanager.api_key (CM_API_KEY)")
	}
	if c.CloudManager.AccessToken == "" {
		missing = append(missing, "cloudmanager.access_token (CM_ACCESS_TOKEN)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Keys lists the settings accepted by Set.
var Keys = []string{
	"cloudmanager.base_url",
	"cloudmanager.org_id",
	"cloudmanager.api_key",
	"cloudmanager.access_token",
	"cloudmanager.program_id",
	"logs.output_dir",
	"logs.tail_backoff",
	"logs.rollover_window",
}

// ErrUnknownKey is returned by Set for a key not in Keys.
var ErrUnknownKey = errors.New("unknown configuration key")

// Set assigns value to the setting named by a dotted key such as
// "cloudmanager.org_id". Durations use Go syntax ("2s", "5m").
func (c *Config) Set(key, value string) error {
	switch key {
	case "cloudmanager.base_url":
		c.CloudManager.BaseURL = value
	case "cloudmanager.org_id":
		c.CloudManager.OrgID = value
	case "cloudmanager.api_key":
		c.CloudManager.APIKey = value
	case "cloudmanager.access_token":
		c.CloudManager.AccessToken = value
	case "cloudmanager.program_id":
		c.CloudManager.ProgramID = value
	case "logs.output_dir":
		c.Logs.OutputDir = value
	case "logs.tail_backoff", "logs.rollover_window":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		if key == "logs.tail_backoff" {
			c.Logs.TailBackoff = d
		} else {
			c.Logs.RolloverWindow = d
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// LoadFrom reads configuration from the given TOML file path.
// If the file does not exist, it returns an empty config without error.
// Environment variables always take precedence over file values:
//   - CM_BASE_URL     overrides cloudmanager.base_url
//   - CM_ORG_ID       overrides cloudmanager.org_id
//   - CM_API_KEY      overrides cloudmanager.api_key
//   - CM_ACCESS_TOKEN overrides cloudmanager.access_token
//   - CM_PROGRAM_ID   overrides cloudmanager.program_id
func LoadFrom(path string) (Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// ReadFile reads the TOML file at path without applying environment
// overrides, so the result can be edited and saved back.
func ReadFile(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	return cfg, nil
}

// DefaultConfigPath returns the default path for the cmdeck config file.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cmdeck", "config.toml")
}

func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"CM_BASE_URL", &cfg.CloudManager.BaseURL},
		{"CM_ORG_ID", &cfg.CloudManager.OrgID},
		{"CM_API_KEY", &cfg.CloudManager.APIKey},
		{"CM_ACCESS_TOKEN", &cfg.CloudManager.AccessToken},
		{"CM_PROGRAM_ID", &cfg.CloudManager.ProgramID},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// Save writes cfg to the given TOML file path, creating parent directories as needed.
// Existing file contents are overwritten. Permissions on the written file are 0600.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	if encErr := toml.NewEncoder(f).Encode(cfg); encErr != nil {
		f.Close()
		return encErr
	}
	return f.Close()
}
