package app

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/moh-tz/hfrsync/pkg/constants"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
	"github.com/moh-tz/hfrsync/pkg/sync"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "HFRSYNC"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	Registry RegistryConfig
	HFR      HFRConfig

	HamletCSVPath     string
	CountryCode       string
	TagMismatchPolicy string
	MetricsTextfile   string

	Retry RetryConfig

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// RegistryConfig holds the OpenMRS connection and the attribute type uuids.
type RegistryConfig struct {
	BaseURL                   string
	User                      string
	Password                  string
	CodeAttributeType         string
	FacilityCodeAttributeType string
}

// HFRConfig holds the upstream feed endpoints.
type HFRConfig struct {
	FacilitiesURL string
	HierarchyURL  string
	User          string
	Password      string
}

// RetryConfig holds the per-page retry limits of the upstream feeds.
type RetryConfig struct {
	FacilityAttempts  int
	HierarchyAttempts int
	Backoff           time.Duration
	MaxBackoff        time.Duration
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (HFRSYNC_REGISTRY_BASE_URL and so on)
// 3. .env files
// 4. Config file (--config or ~/.hfrsync.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".hfrsync")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config file", "failed to read "+configFile, err)
		}
	}

	return &Config{
		ConfigFile: v.ConfigFileUsed(),
		Format:     v.GetString("format"),

		Registry: RegistryConfig{
			BaseURL:                   v.GetString("registry.base_url"),
			User:                      v.GetString("registry.user"),
			Password:                  v.GetString("registry.password"),
			CodeAttributeType:         v.GetString("registry.code_attribute_type"),
			FacilityCodeAttributeType: v.GetString("registry.facility_code_attribute_type"),
		},
		HFR: HFRConfig{
			FacilitiesURL: v.GetString("hfr.facilities_url"),
			HierarchyURL:  v.GetString("hfr.hierarchy_url"),
			User:          v.GetString("hfr.user"),
			Password:      v.GetString("hfr.password"),
		},

		HamletCSVPath:     v.GetString("hamlet.csv_path"),
		CountryCode:       v.GetString("country.code"),
		TagMismatchPolicy: v.GetString("policy.tag_mismatch"),
		MetricsTextfile:   v.GetString("metrics.textfile"),

		Retry: RetryConfig{
			FacilityAttempts:  v.GetInt("retry.facility_attempts"),
			HierarchyAttempts: v.GetInt("retry.hierarchy_attempts"),
			Backoff:           v.GetDuration("retry.backoff"),
			MaxBackoff:        v.GetDuration("retry.max_backoff"),
		},

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogOutput: v.GetString("log.output"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("country.code", constants.DefaultCountryCode)
	v.SetDefault("policy.tag_mismatch", string(reconciler.TagMismatchLog))
	v.SetDefault("retry.facility_attempts", constants.FacilityFeedAttempts)
	v.SetDefault("retry.hierarchy_attempts", constants.HierarchyFeedAttempts)
	v.SetDefault("retry.backoff", constants.RetryBackoff)
	v.SetDefault("retry.max_backoff", constants.MaxRetryBackoff)
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Registry.BaseURL == "" {
		return errors.NewConfigError("registry", "registry.base_url is required", nil)
	}
	if c.Registry.CodeAttributeType == "" || c.Registry.FacilityCodeAttributeType == "" {
		return errors.NewConfigError("registry",
			"registry.code_attribute_type and registry.facility_code_attribute_type are required", nil)
	}
	if _, err := reconciler.ParseTagMismatchPolicy(c.TagMismatchPolicy); err != nil {
		return errors.NewConfigError("policy", err.Error(), err)
	}
	return nil
}

// ValidateFeeds checks that every selected feed has its source configured.
// An empty selection means every feed.
func (c *Config) ValidateFeeds(feeds []string) error {
	runs := func(feed string) bool { return len(feeds) == 0 || slices.Contains(feeds, feed) }
	if runs(sync.FeedFacility) && c.HFR.FacilitiesURL == "" {
		return errors.NewConfigError("hfr", "hfr.facilities_url is required for the facility feed", nil)
	}
	if runs(sync.FeedHierarchy) && c.HFR.HierarchyURL == "" {
		return errors.NewConfigError("hfr", "hfr.hierarchy_url is required for the hierarchy feed", nil)
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
