// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	// Verify a few key defaults to ensure the mechanism works.
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "mimic-cli", cfg.Logger.ServiceName)
	assert.Equal(t, ProviderGemini, cfg.Vision.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Vision.Model)
	assert.Equal(t, 90*time.Second, cfg.Vision.APITimeout)
	assert.False(t, cfg.Capture.Headless)
	assert.Equal(t, 1440, cfg.Capture.Viewport["width"])
	assert.Equal(t, "playwright", cfg.Generate.Framework)
	assert.Equal(t, "python3", cfg.Runner.PythonBin)
	assert.True(t, cfg.Runner.CheckSyntax)
	assert.Equal(t, "~/.mimic/workflows", cfg.Workflows.BaseDir)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Core Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()

		err := cfg.Validate()
		assert.NoError(t, err, "a default config should not produce a validation error")

		cfgNoFramework := *cfg
		cfgNoFramework.Generate.Framework = ""
		err = cfgNoFramework.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "generate.framework must not be empty")
	})

	t.Run("Vision Validation", func(t *testing.T) {
		valid := VisionConfig{
			Provider:    ProviderGemini,
			Model:       "gemini-2.5-flash",
			APITimeout:  time.Minute,
			Temperature: 0.1,
			RateLimit:   0.5,
			Burst:       1,
		}
		assert.NoError(t, valid.Validate())

		noModel := valid
		noModel.Model = ""
		err := noModel.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vision.model must not be empty")

		badTimeout := valid
		badTimeout.APITimeout = 0
		err = badTimeout.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vision.api_timeout must be a positive duration")

		badTemperature := valid
		badTemperature.Temperature = 2.5
		err = badTemperature.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vision.temperature must be between 0.0 and 2.0")

		badRate := valid
		badRate.RateLimit = 0
		err = badRate.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vision.rate_limit must be a positive number")
	})

	t.Run("Capture Validation", func(t *testing.T) {
		valid := CaptureConfig{
			NavigationTimeout: 90 * time.Second,
			Viewport:          map[string]int{"width": 1440, "height": 900},
		}
		assert.NoError(t, valid.Validate())

		badNav := valid
		badNav.NavigationTimeout = -time.Second
		err := badNav.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "capture.navigation_timeout must be a positive duration")

		badViewport := valid
		badViewport.Viewport = map[string]int{"width": 0}
		err = badViewport.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "capture.viewport.width must be a positive integer")
	})

	t.Run("Runner Validation", func(t *testing.T) {
		valid := RunnerConfig{PythonBin: "python3", Timeout: 10 * time.Minute}
		assert.NoError(t, valid.Validate())

		noBin := valid
		noBin.PythonBin = ""
		err := noBin.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "runner.python_bin must not be empty")

		badTimeout := valid
		badTimeout.Timeout = 0
		err = badTimeout.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "runner.timeout must be a positive duration")
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
vision:
  model: gemini-2.5-pro
  temperature: 0.4
capture:
  headless: true
generate:
  framework: selenium
  options:
    browser: firefox
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		err := v.ReadConfig(bytes.NewBuffer(yamlBytes))
		require.NoError(t, err)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "gemini-2.5-pro", cfg.Vision.Model)
		assert.InDelta(t, 0.4, float64(cfg.Vision.Temperature), 1e-6)
		assert.True(t, cfg.Capture.Headless)
		assert.Equal(t, "selenium", cfg.Generate.Framework)
		assert.Equal(t, "firefox", cfg.Generate.Options["browser"])
		// Untouched sections keep their defaults.
		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "python3", cfg.Runner.PythonBin)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("vision.api_timeout", "0s") // Intentionally invalid.

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "vision.api_timeout must be a positive duration")
	})

	t.Run("API Key Binds From Environment", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		t.Setenv("MIMIC_VISION_API_KEY", "test-key-123")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "test-key-123", cfg.Vision.APIKey)
	})

	t.Run("Workflow Dir Tilde Expansion", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.NotContains(t, cfg.Workflows.BaseDir, "~",
			"the tilde must be resolved to the real home directory")
		assert.Contains(t, cfg.Workflows.BaseDir, ".mimic")
	})
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/mimic.log
vision:
  api_timeout: 45s
  rate_limit: 2.0
runner:
  timeout: 5m
  check_syntax: false
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	err := v.ReadConfig(bytes.NewBufferString(yamlInput))
	require.NoError(t, err)

	var cfg Config
	err = v.Unmarshal(&cfg)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/var/log/mimic.log", cfg.Logger.LogFile)
	assert.Equal(t, 45*time.Second, cfg.Vision.APITimeout)
	assert.InDelta(t, 2.0, cfg.Vision.RateLimit, 1e-9)
	assert.Equal(t, 5*time.Minute, cfg.Runner.Timeout)
	assert.False(t, cfg.Runner.CheckSyntax)
}
