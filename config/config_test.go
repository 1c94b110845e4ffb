package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "awshealth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version: "1"
regions:
  - eu-west-1
  - us-east-1
output:
  format: json
store:
  path: /tmp/awshealth-test
  enabled: true
watch:
  interval: 1m
  metrics_port: 9090
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"eu-west-1", "us-east-1"}, cfg.Regions)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "/tmp/awshealth-test", cfg.Store.Path)
	assert.Equal(t, time.Minute, cfg.Watch.Interval)
	assert.Equal(t, 9090, cfg.Watch.MetricsPort)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
version: "1"
regions:
  - eu-west-1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, 5*time.Minute, cfg.Watch.Interval)
	assert.Equal(t, 2112, cfg.Watch.MetricsPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Store.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/awshealth.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "version: [broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidInterval(t *testing.T) {
	path := writeConfig(t, `
version: "1"
watch:
  interval: not-a-duration
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse watch interval")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing version", func(c *Config) { c.Version = "" }, "version is required"},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }, "output format"},
		{"interval too short", func(c *Config) { c.Watch.Interval = time.Millisecond }, "watch interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Regions)
	assert.Equal(t, "table", cfg.Output.Format)
}
