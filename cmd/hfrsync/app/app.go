// Package app provides the application context and dependency management
// for the hfrsync CLI. It centralizes configuration, logging and the
// registry client so that every command is built from the same settings.
package app

import (
	"context"
	"io"
	stdsync "sync"

	"github.com/rs/zerolog"

	"github.com/moh-tz/hfrsync"
	"github.com/moh-tz/hfrsync/internal/metrics"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/hfr"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
	"github.com/moh-tz/hfrsync/pkg/registry"
	"github.com/moh-tz/hfrsync/pkg/sync"
)

// App represents the hfrsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer

	// Client instance (lazy-initialized, singleton)
	mu      stdsync.Mutex
	client  hfrsync.Client
	metrics *metrics.Metrics
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the requested output format, if any.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the hfrsync client, creating it on first use.
func (a *App) Client() (hfrsync.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}
	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	reg := registry.NewHTTPClient(registry.Config{
		BaseURL:  a.config.Registry.BaseURL,
		User:     a.config.Registry.User,
		Password: a.config.Registry.Password,
	})
	feeds := hfr.NewClient(hfr.Config{
		FacilitiesURL: a.config.HFR.FacilitiesURL,
		HierarchyURL:  a.config.HFR.HierarchyURL,
		User:          a.config.HFR.User,
		Password:      a.config.HFR.Password,
	})

	opts := []hfrsync.Option{
		hfrsync.WithAttributeTypes(reconciler.AttributeTypes{
			Code:         a.config.Registry.CodeAttributeType,
			FacilityCode: a.config.Registry.FacilityCodeAttributeType,
		}),
		hfrsync.WithTagMismatchPolicy(reconciler.TagMismatchPolicy(a.config.TagMismatchPolicy)),
		hfrsync.WithCountryCode(a.config.CountryCode),
	}
	if a.config.MetricsTextfile != "" {
		a.metrics = metrics.New()
		opts = append(opts, hfrsync.WithRecorder(a.metrics))
	}

	client, err := hfrsync.New(reg, feeds, opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.client = client
	return client, nil
}

// SyncOptions returns the run options set through configuration.
func (a *App) SyncOptions() []sync.Option {
	return []sync.Option{
		sync.WithFacilityAttempts(a.config.Retry.FacilityAttempts),
		sync.WithHierarchyAttempts(a.config.Retry.HierarchyAttempts),
		sync.WithBackoff(a.config.Retry.Backoff, a.config.Retry.MaxBackoff),
		sync.WithHamletPath(a.config.HamletCSVPath),
	}
}

// ValidateFeeds checks that the selected feeds are configured.
func (a *App) ValidateFeeds(feeds []string) error {
	return a.config.ValidateFeeds(feeds)
}

// RecordRun exports the run to the metrics textfile when one is configured.
func (a *App) RecordRun(result *sync.Result) error {
	a.mu.Lock()
	m := a.metrics
	a.mu.Unlock()

	if m == nil || result == nil {
		return nil
	}
	for _, f := range result.Feeds {
		if f.Skipped {
			continue
		}
		m.FeedFinished(f.Feed, f.Pages, len(f.Errors), f.Aborted, f.Duration)
	}
	if !result.HasErrors() {
		m.RunSucceeded(result.Finished)
	}
	return m.WriteTextfile(a.config.MetricsTextfile)
}

// Shutdown flushes what a cancelled run has gathered so far.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	m := a.metrics
	a.mu.Unlock()

	if m == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- m.WriteTextfile(a.config.MetricsTextfile) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c hfrsync.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

// WithOutput redirects command output (useful for testing).
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
