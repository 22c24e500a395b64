package config

import (
	"fmt"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	API    APIConfig    `mapstructure:"api" yaml:"api"`
	State  StateConfig  `mapstructure:"state" yaml:"state"`
	Report ReportConfig `mapstructure:"report" yaml:"report"`
	Export ExportConfig `mapstructure:"export" yaml:"export"`
}

// LoggerConfig configures the zap logger and optional rotating file sink.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// APIConfig holds connection details for the dashboard backend.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// StateConfig locates the directory holding persisted client state
// (filter tuple, tokens, cached identity).
type StateConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// ReportConfig tunes PDF report generation.
type ReportConfig struct {
	ProductName string `mapstructure:"product_name" yaml:"product_name"`
	// ChartCapture enables headless-browser chart rasterization. When false
	// the builder falls back to natively drawn charts.
	ChartCapture   bool          `mapstructure:"chart_capture" yaml:"chart_capture"`
	Headless       bool          `mapstructure:"headless" yaml:"headless"`
	CaptureTimeout time.Duration `mapstructure:"capture_timeout" yaml:"capture_timeout"`
}

// ExportConfig controls where generated artifacts land.
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// SetDefaults registers every configuration default on the given viper
// instance. Keys mirror the mapstructure tags.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "vulndeck")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- API --
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.ignore_tls_errors", false)

	// -- State --
	v.SetDefault("state.dir", defaultStateDir())

	// -- Report --
	v.SetDefault("report.product_name", "vulndeck")
	v.SetDefault("report.chart_capture", true)
	v.SetDefault("report.headless", true)
	v.SetDefault("report.capture_timeout", "20s")

	// -- Export --
	v.SetDefault("export.output_dir", ".")
}

// NewDefaultConfig returns a Config populated with every default value.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper unmarshals and validates a configuration from viper.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is a required configuration field")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be a positive duration")
	}
	if c.State.Dir == "" {
		return fmt.Errorf("state.dir is a required configuration field")
	}
	if c.Report.CaptureTimeout <= 0 {
		return fmt.Errorf("report.capture_timeout must be a positive duration")
	}
	return nil
}

// defaultStateDir resolves ~/.vulndeck, falling back to a relative directory
// when the home directory cannot be determined.
func defaultStateDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".vulndeck"
	}
	return filepath.Join(home, ".vulndeck")
}
