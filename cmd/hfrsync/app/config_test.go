package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moh-tz/hfrsync/pkg/constants"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/sync"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hfrsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultCountryCode, config.CountryCode)
	assert.Equal(t, "log", config.TagMismatchPolicy)
	assert.Equal(t, constants.FacilityFeedAttempts, config.Retry.FacilityAttempts)
	assert.Equal(t, constants.HierarchyFeedAttempts, config.Retry.HierarchyAttempts)
	assert.Equal(t, constants.RetryBackoff, config.Retry.Backoff)
	assert.Equal(t, constants.MaxRetryBackoff, config.Retry.MaxBackoff)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, "stderr", config.LogOutput)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
registry:
  base_url: https://openmrs.example/openmrs
  user: admin
  code_attribute_type: code-uuid
  facility_code_attribute_type: hfr-uuid
hfr:
  facilities_url: https://hfr.example/facilities?page=
  hierarchy_url: https://hfr.example/hierarchy?page=
hamlet:
  csv_path: /data/hamlets.csv
policy:
  tag_mismatch: add-tag
retry:
  hierarchy_attempts: 5
  backoff: 250ms
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, "https://openmrs.example/openmrs", config.Registry.BaseURL)
	assert.Equal(t, "admin", config.Registry.User)
	assert.Equal(t, "code-uuid", config.Registry.CodeAttributeType)
	assert.Equal(t, "hfr-uuid", config.Registry.FacilityCodeAttributeType)
	assert.Equal(t, "https://hfr.example/hierarchy?page=", config.HFR.HierarchyURL)
	assert.Equal(t, "/data/hamlets.csv", config.HamletCSVPath)
	assert.Equal(t, "add-tag", config.TagMismatchPolicy)
	assert.Equal(t, 5, config.Retry.HierarchyAttempts)
	assert.Equal(t, 250*time.Millisecond, config.Retry.Backoff)
	require.NoError(t, config.Validate())
	require.NoError(t, config.ValidateFeeds(nil))
}

func TestLoadConfigEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "registry:\n  base_url: https://file.example\n")
	t.Setenv("HFRSYNC_REGISTRY_BASE_URL", "https://env.example")
	t.Setenv("HFRSYNC_RETRY_FACILITY_ATTEMPTS", "7")
	t.Setenv("HFRSYNC_METRICS_TEXTFILE", "/var/lib/node_exporter/hfrsync.prom")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example", config.Registry.BaseURL)
	assert.Equal(t, 7, config.Retry.FacilityAttempts)
	assert.Equal(t, "/var/lib/node_exporter/hfrsync.prom", config.MetricsTextfile)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Registry: RegistryConfig{
				BaseURL:                   "https://openmrs.example",
				CodeAttributeType:         "code-uuid",
				FacilityCodeAttributeType: "hfr-uuid",
			},
			TagMismatchPolicy: "log",
		}
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"missing base url", func(c *Config) { c.Registry.BaseURL = "" }},
		{"missing code attribute", func(c *Config) { c.Registry.CodeAttributeType = "" }},
		{"missing facility attribute", func(c *Config) { c.Registry.FacilityCodeAttributeType = "" }},
		{"unknown policy", func(c *Config) { c.TagMismatchPolicy = "rename" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			var cfgErr *errors.ConfigError
			assert.ErrorAs(t, c.Validate(), &cfgErr)
		})
	}

	assert.NoError(t, valid().Validate())
}

func TestConfigValidateFeeds(t *testing.T) {
	c := &Config{HFR: HFRConfig{HierarchyURL: "https://hfr.example/h?page="}}

	assert.NoError(t, c.ValidateFeeds([]string{sync.FeedHierarchy}))
	assert.NoError(t, c.ValidateFeeds([]string{sync.FeedHamlet}))
	assert.Error(t, c.ValidateFeeds([]string{sync.FeedFacility}))
	assert.Error(t, c.ValidateFeeds(nil), "every feed runs by default")
}

func TestUpdateFromFlags(t *testing.T) {
	c := &Config{Format: "yaml", LogLevel: "error"}

	c.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, c.Verbose)
	assert.True(t, c.NoColor)
	assert.Equal(t, "yaml", c.Format, "empty flag keeps the configured format")
	assert.Equal(t, "error", c.LogLevel)

	c.UpdateFromFlags(false, true, false, "json", "debug")
	assert.Equal(t, "json", c.Format)
	assert.Equal(t, "debug", c.LogLevel)
}
