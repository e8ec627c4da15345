package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "bernus", cfg.Model)
	assert.Equal(t, "rush_larsen", cfg.Scheme)
	assert.Greater(t, cfg.Dt, 0.0)
	assert.Greater(t, cfg.Duration, 0.0)
	assert.Nil(t, cfg.InitialVoltage)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, "dt"},
		{"negative duration", func(c *Config) { c.Duration = -1 }, "duration"},
		{"duration below dt", func(c *Config) { c.Dt = 1; c.Duration = 0.5 }, "duration"},
		{"unknown scheme", func(c *Config) { c.Scheme = "rk4" }, "scheme"},
		{"missing model", func(c *Config) { c.Model = "" }, "model"},
		{"zero capacitance", func(c *Config) { c.Capacitance = 0 }, "capacitance"},
		{"negative sampling", func(c *Config) { c.SampleEvery = -2 }, "sample_every"},
		{"negative pulse", func(c *Config) { c.Stimulus.Duration = -1 }, "stimulus.duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0
	cfg.Scheme = "bogus"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dt must be greater than 0")
	assert.Contains(t, err.Error(), "scheme must be one of: euler rush_larsen")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.InitialVoltage = Float(-60)
	cfg.Params = map[string]float64{"g_k1": 2.5}
	cfg.Stimulus = StimulusConfig{Amplitude: 60, Start: 5, Duration: 1, Period: 500}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheme: euler\ndt: 0.001\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "euler", cfg.Scheme)
	assert.Equal(t, 0.001, cfg.Dt)
	assert.Equal(t, DefaultDuration, cfg.Duration)
	assert.Equal(t, DefaultModel, cfg.Model)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dt: -1\n"), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	require.NoError(t, os.WriteFile(path, []byte("dt: [1, 2\n"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("bernus", "regression")
	require.NotNil(t, cfg)
	assert.Equal(t, "euler", cfg.Scheme)
	assert.Equal(t, 0.0005, cfg.Dt)
	require.NotNil(t, cfg.InitialVoltage)
	assert.Equal(t, -60.0, *cfg.InitialVoltage)

	*cfg.InitialVoltage = 0
	assert.Equal(t, -60.0, *GetPreset("bernus", "regression").InitialVoltage, "presets must be returned by copy")
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("bernus", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "rest"))
}

func TestPresetsAreValid(t *testing.T) {
	names := ListPresets("bernus")
	assert.Equal(t, []string{"clamp", "coarse", "paced", "regression", "rest"}, names)

	for _, name := range names {
		assert.NoError(t, GetPreset("bernus", name).Validate(), name)
	}
	assert.Nil(t, ListPresets("nonexistent"))
}
