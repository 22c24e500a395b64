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
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "vulndeck", cfg.Logger.ServiceName)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.API.IgnoreTLSErrors)
	assert.NotEmpty(t, cfg.State.Dir)
	assert.True(t, cfg.Report.ChartCapture)
	assert.True(t, cfg.Report.Headless)
	assert.Equal(t, 20*time.Second, cfg.Report.CaptureTimeout)
	assert.Equal(t, ".", cfg.Export.OutputDir)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	base := NewDefaultConfig()

	// Test Case: Valid Config
	err := base.Validate()
	assert.NoError(t, err, "a default config should not produce a validation error")

	// Test Case: Missing API URL
	cfgNoURL := *base
	cfgNoURL.API.BaseURL = ""
	err = cfgNoURL.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")

	// Test Case: Non-positive Timeout
	cfgBadTimeout := *base
	cfgBadTimeout.API.Timeout = 0
	err = cfgBadTimeout.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "api.timeout")

	// Test Case: Missing State Dir
	cfgNoState := *base
	cfgNoState.State.Dir = ""
	err = cfgNoState.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "state.dir")

	// Test Case: Non-positive Capture Timeout
	cfgBadCapture := *base
	cfgBadCapture.Report.CaptureTimeout = -time.Second
	err = cfgBadCapture.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "report.capture_timeout")
}

// -- Viper Integration Tests --

func TestNewConfigFromViperAppliesOverrides(t *testing.T) {
	yaml := []byte(`
api:
  base_url: https://vulndeck.internal
  timeout: 5s
  ignore_tls_errors: true
report:
  product_name: acme-vulndeck
  chart_capture: false
`)
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(yaml)))

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "https://vulndeck.internal", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.API.IgnoreTLSErrors)
	assert.Equal(t, "acme-vulndeck", cfg.Report.ProductName)
	assert.False(t, cfg.Report.ChartCapture)

	// Untouched sections keep their defaults.
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, ".", cfg.Export.OutputDir)
}

func TestNewConfigFromViperRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("api.base_url", "")

	_, err := NewConfigFromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
