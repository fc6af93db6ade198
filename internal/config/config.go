// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration. Precedence is the usual
// viper stack: explicit flags, then environment, then the config file, then
// the defaults below.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Vision    VisionConfig    `mapstructure:"vision" yaml:"vision"`
	Capture   CaptureConfig   `mapstructure:"capture" yaml:"capture"`
	Generate  GenerateConfig  `mapstructure:"generate" yaml:"generate"`
	Runner    RunnerConfig    `mapstructure:"runner" yaml:"runner"`
	Workflows WorkflowsConfig `mapstructure:"workflows" yaml:"workflows"`
}

// LoggerConfig holds all the configuration for the logger.
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

// VisionProvider identifies a hosted vision-model backend.
type VisionProvider string

// ProviderGemini is the only provider currently wired up.
const ProviderGemini VisionProvider = "gemini"

// VisionConfig configures the model that reads screenshot pairs.
type VisionConfig struct {
	Provider VisionProvider `mapstructure:"provider" yaml:"provider"`
	Model    string         `mapstructure:"model" yaml:"model"`
	// APIKey is never written to config files; it binds to
	// MIMIC_VISION_API_KEY instead.
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	// RateLimit caps outbound calls per second; Burst allows short spikes.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int     `mapstructure:"burst" yaml:"burst"`
}

// CaptureConfig holds settings for the recording browser.
type CaptureConfig struct {
	Headless          bool           `mapstructure:"headless" yaml:"headless"`
	DisableGPU        bool           `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	Args              []string       `mapstructure:"args" yaml:"args"`
	Viewport          map[string]int `mapstructure:"viewport" yaml:"viewport"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// PostLoadWait is the settle time between page-ready and the screenshot.
	PostLoadWait time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
}

// GenerateConfig selects the default code generation backend and where its
// scripts land.
type GenerateConfig struct {
	Framework string `mapstructure:"framework" yaml:"framework"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// Options are per-framework overrides passed straight to the generator
	// factory (headless, browser, pause, and so on).
	Options map[string]any `mapstructure:"options" yaml:"options"`
}

// RunnerConfig controls how generated scripts are executed.
type RunnerConfig struct {
	PythonBin string        `mapstructure:"python_bin" yaml:"python_bin"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// CheckSyntax gates the pre-run parse of the script.
	CheckSyntax bool `mapstructure:"check_syntax" yaml:"check_syntax"`
}

// WorkflowsConfig locates the on-disk workflow store.
type WorkflowsConfig struct {
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// NewDefaultConfig creates a new configuration struct populated with default
// values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration
// parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "mimic-cli")
	v.SetDefault("logger.log_file", "mimic.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Vision --
	v.SetDefault("vision.provider", "gemini")
	v.SetDefault("vision.model", "gemini-2.5-flash")
	v.SetDefault("vision.api_timeout", "90s")
	v.SetDefault("vision.temperature", 0.1)
	v.SetDefault("vision.rate_limit", 0.5)
	v.SetDefault("vision.burst", 1)

	// -- Capture --
	v.SetDefault("capture.headless", false)
	v.SetDefault("capture.disable_gpu", true)
	v.SetDefault("capture.viewport", map[string]int{"width": 1440, "height": 900})
	v.SetDefault("capture.navigation_timeout", "90s")
	v.SetDefault("capture.post_load_wait", "2s")

	// -- Generate --
	v.SetDefault("generate.framework", "playwright")
	v.SetDefault("generate.output_dir", "generated")

	// -- Runner --
	v.SetDefault("runner.python_bin", "python3")
	v.SetDefault("runner.timeout", "10m")
	v.SetDefault("runner.check_syntax", true)

	// -- Workflows --
	v.SetDefault("workflows.base_dir", "~/.mimic/workflows")
}

// NewConfigFromViper creates a new configuration instance from a viper
// object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("vision.api_key", "MIMIC_VISION_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Manually load the key if Unmarshal didn't pick it up.
	if cfg.Vision.APIKey == "" {
		cfg.Vision.APIKey = os.Getenv("MIMIC_VISION_API_KEY")
	}

	// The workflow store accepts ~ paths in config files.
	expanded, err := homedir.Expand(cfg.Workflows.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving workflows.base_dir: %w", err)
	}
	cfg.Workflows.BaseDir = expanded

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Vision.Validate(); err != nil {
		return fmt.Errorf("vision configuration invalid: %w", err)
	}
	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture configuration invalid: %w", err)
	}
	if err := c.Runner.Validate(); err != nil {
		return fmt.Errorf("runner configuration invalid: %w", err)
	}
	if c.Generate.Framework == "" {
		return fmt.Errorf("generate.framework must not be empty")
	}
	return nil
}

// Validate checks the vision settings. The API key is deliberately not
// required here; only the commands that actually call the model enforce it.
func (vc *VisionConfig) Validate() error {
	if vc.Provider == "" {
		return fmt.Errorf("vision.provider must not be empty")
	}
	if vc.Model == "" {
		return fmt.Errorf("vision.model must not be empty")
	}
	if vc.APITimeout <= 0 {
		return fmt.Errorf("vision.api_timeout must be a positive duration")
	}
	if vc.Temperature < 0 || vc.Temperature > 2 {
		return fmt.Errorf("vision.temperature must be between 0.0 and 2.0")
	}
	if vc.RateLimit <= 0 {
		return fmt.Errorf("vision.rate_limit must be a positive number of calls per second")
	}
	if vc.Burst <= 0 {
		return fmt.Errorf("vision.burst must be a positive integer")
	}
	return nil
}

// Validate checks the capture settings.
func (cc *CaptureConfig) Validate() error {
	if cc.NavigationTimeout <= 0 {
		return fmt.Errorf("capture.navigation_timeout must be a positive duration")
	}
	if w, ok := cc.Viewport["width"]; ok && w <= 0 {
		return fmt.Errorf("capture.viewport.width must be a positive integer")
	}
	if h, ok := cc.Viewport["height"]; ok && h <= 0 {
		return fmt.Errorf("capture.viewport.height must be a positive integer")
	}
	return nil
}

// Validate checks the runner settings.
func (rc *RunnerConfig) Validate() error {
	if rc.PythonBin == "" {
		return fmt.Errorf("runner.python_bin must not be empty")
	}
	if rc.Timeout <= 0 {
		return fmt.Errorf("runner.timeout must be a positive duration")
	}
	return nil
}
