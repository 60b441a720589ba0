package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, initViper(v, ""))

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DefaultCatalogURL, cfg.CatalogURL)
	assert.Equal(t, DefaultCapacityURL, cfg.CapacityURL)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.Equal(t, "filesystem", cfg.OutputType)
	assert.Equal(t, "www/rds/instances.json", cfg.OutputPath)
	assert.Equal(t, "us-east-1", cfg.DefaultRegion)
	assert.False(t, cfg.AmortizeOneYearAllUpfront)
}

func TestConfigFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rdsinfo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  log_level: DEBUG
sources:
  timeout: 90s
output:
  type: s3
  bucket: pricing-data
  bucket_region: eu-west-1
pricing:
  amortize_1yr_all_upfront: true
`), 0644))

	t.Setenv("RDSINFO_OUTPUT_BUCKET", "from-env")
	t.Setenv("RDSINFO_PRICING_DEFAULT_REGION", "us-west-2")

	v := viper.New()
	require.NoError(t, initViper(v, path))

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "s3", cfg.OutputType)
	assert.Equal(t, "from-env", cfg.Bucket, "environment overrides the file")
	assert.Equal(t, "eu-west-1", cfg.BucketRegion)
	assert.Equal(t, "us-west-2", cfg.DefaultRegion)
	assert.True(t, cfg.AmortizeOneYearAllUpfront)
}

func TestMissingExplicitConfigFile(t *testing.T) {
	err := initViper(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfigYAMLParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(DefaultConfigYAML), 0644))

	v := viper.New()
	require.NoError(t, initViper(v, path))
	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalogURL, cfg.CatalogURL)
	assert.Equal(t, DefaultOutputKey, cfg.Key)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
}

func TestValidate(t *testing.T) {
	valid := GlobalConfig{OutputType: "filesystem", OutputPath: "out.json", Timeout: time.Minute, DefaultRegion: "us-east-1"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*GlobalConfig)
	}{
		{"unknown output type", func(c *GlobalConfig) { c.OutputType = "ftp" }},
		{"empty path", func(c *GlobalConfig) { c.OutputPath = "" }},
		{"s3 without bucket", func(c *GlobalConfig) { c.OutputType = "s3"; c.BucketRegion = "us-east-1" }},
		{"s3 without region", func(c *GlobalConfig) { c.OutputType = "s3"; c.Bucket = "b" }},
		{"zero timeout", func(c *GlobalConfig) { c.Timeout = 0 }},
		{"empty default region", func(c *GlobalConfig) { c.DefaultRegion = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "RDSINFO_PRICING_AMORTIZE_1YR_ALL_UPFRONT", envKey(KeyOneYearAllUpfront))
}
