package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is the config file read when no explicit path is given.
const DefaultPath = "config.yaml"

// Sheet discovery modes for Excel workbooks.
const (
	SheetDiscoveryRemote = "remote"
	SheetDiscoveryLocal  = "local"
)

// Config holds all configuration for the insightiq client.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// The API token must only come from the environment.
type Config struct {
	Env     string `yaml:"env" env:"INSIGHTIQ_ENV" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	UI        UIConfig        `yaml:"ui"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Report    ReportConfig    `yaml:"report"`
	Reprocess ReprocessConfig `yaml:"reprocess"`

	// Token is the bearer token issued by the backend login endpoint.
	Token string `yaml:"-" env:"INSIGHTIQ_TOKEN"` // Secret - not in YAML
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"INSIGHTIQ_LOG_LEVEL" env-default:"warn"`
}

// APIConfig holds settings for talking to the backend.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" env:"INSIGHTIQ_API_URL" env-default:"http://localhost:8000/api/v1"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"INSIGHTIQ_REQUEST_TIMEOUT" env-default:"5m"`
	PageSize       int           `yaml:"page_size" env:"INSIGHTIQ_PAGE_SIZE" env-default:"100"`
	PreviewLimit   int           `yaml:"preview_limit" env:"INSIGHTIQ_PREVIEW_LIMIT" env-default:"100"`
}

// UIConfig holds the delays used by the connection workflow.
type UIConfig struct {
	// TestConfirmDelay is how long a successful test stays on screen before the form returns.
	TestConfirmDelay time.Duration `yaml:"test_confirm_delay" env:"INSIGHTIQ_TEST_CONFIRM_DELAY" env-default:"2s"`
	// ConnectSuccessDelay is how long the success step shows before completion fires.
	ConnectSuccessDelay time.Duration `yaml:"connect_success_delay" env:"INSIGHTIQ_CONNECT_SUCCESS_DELAY" env-default:"1500ms"`
}

// IngestConfig holds file upload settings.
type IngestConfig struct {
	// SheetDiscovery selects where workbook sheets are enumerated: remote or local.
	SheetDiscovery string `yaml:"sheet_discovery" env:"INSIGHTIQ_SHEET_DISCOVERY" env-default:"remote"`
	MaxFileSizeMB  int64  `yaml:"max_file_size_mb" env:"INSIGHTIQ_MAX_FILE_SIZE_MB" env-default:"100"`
}

// MaxFileSizeMBLimit is the largest accepted upload limit (1 TiB).
const MaxFileSizeMBLimit = 1 << 20

// MaxFileSizeBytes returns the upload limit in bytes. Zero disables the check.
func (c *IngestConfig) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// ReportConfig holds cleaning report download settings.
type ReportConfig struct {
	DownloadDir string `yaml:"download_dir" env:"INSIGHTIQ_REPORT_DIR" env-default:"."`
}

// ReprocessConfig holds batch reprocess settings.
type ReprocessConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" env:"INSIGHTIQ_REPROCESS_CONCURRENCY" env-default:"4"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFrom(DefaultPath, version, false)
}

// LoadFrom reads configuration from path. A missing file is only an error when
// required is set; otherwise the configuration comes from the environment alone.
func LoadFrom(path, version string, required bool) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, fs.ErrNotExist) && !required:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, statErr)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}

	switch c.Ingest.SheetDiscovery {
	case SheetDiscoveryRemote, SheetDiscoveryLocal:
	default:
		return fmt.Errorf("ingest.sheet_discovery must be %q or %q, got %q",
			SheetDiscoveryRemote, SheetDiscoveryLocal, c.Ingest.SheetDiscovery)
	}

	if c.Ingest.MaxFileSizeMB < 0 || c.Ingest.MaxFileSizeMB > MaxFileSizeMBLimit {
		return fmt.Errorf("ingest.max_file_size_mb must be between 0 and %d, got %d",
			MaxFileSizeMBLimit, c.Ingest.MaxFileSizeMB)
	}
	if c.Reprocess.MaxConcurrent < 1 {
		return fmt.Errorf("reprocess.max_concurrent must be at least 1")
	}
	if c.API.PageSize < 1 || c.API.PreviewLimit < 1 {
		return fmt.Errorf("api.page_size and api.preview_limit must be positive")
	}
	return nil
}

// IsDevelopment reports whether the client runs in a local/dev environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "local" || c.Env == "dev" || c.Env == "development"
}
