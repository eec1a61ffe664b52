// Package synccmd provides the sync command.
package synccmd

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/moh-tz/hfrsync"
	"github.com/moh-tz/hfrsync/internal/cmd/output"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/logging"
	"github.com/moh-tz/hfrsync/pkg/sync"
)

// ErrIncomplete is returned after a run in which a feed aborted or records failed.
var ErrIncomplete = errors.New("sync finished with errors")

// AppContext defines what the sync command needs from the app.
type AppContext interface {
	Client() (hfrsync.Client, error)
	Logger() *zerolog.Logger
	OutputFormat() string
	SyncOptions() []sync.Option
	ValidateFeeds(feeds []string) error
	RecordRun(result *sync.Result) error
}

// Flags holds the sync command flags.
type Flags struct {
	Feeds     []string
	StartPage int
	HamletCSV string
	Timeout   time.Duration
}

// NewCommand creates the sync command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the registry with the upstream feeds",
		Long: `Sync lists the registry, then runs the facility feed, the
administrative hierarchy feed and the hamlet CSV in that order.

A feed that cannot be fetched after its retry limit is recorded as aborted
and the run moves on to the next feed. The command exits non-zero when any
feed aborted or any record failed.`,
		Example: `  hfrsync sync                              # Run every feed
  hfrsync sync --feed hierarchy             # Run only the hierarchy feed
  hfrsync sync --feed facility --start-page 40
  hfrsync sync -o json > result.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.Feeds, "feed", nil, "feeds to run: facility, hierarchy, hamlet (default all)")
	cmd.Flags().IntVar(&flags.StartPage, "start-page", 1, "first page of the paginated feeds")
	cmd.Flags().StringVar(&flags.HamletCSV, "hamlet-csv", "", "hamlet CSV to import (overrides hamlet.csv_path)")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "abandon the run after this long (0 means no limit)")

	return cmd
}

func run(cmd *cobra.Command, app AppContext, flags *Flags) error {
	ctx := logging.WithLogger(cmd.Context(), app.Logger())

	if err := app.ValidateFeeds(flags.Feeds); err != nil {
		return err
	}
	client, err := app.Client()
	if err != nil {
		return err
	}

	opts := append(app.SyncOptions(),
		sync.WithFeeds(flags.Feeds...),
		sync.WithStartPage(flags.StartPage),
		sync.WithTimeout(flags.Timeout),
	)
	if flags.HamletCSV != "" {
		opts = append(opts, sync.WithHamletPath(flags.HamletCSV))
	}

	result, err := client.Sync(ctx, opts...)
	if result != nil {
		if recErr := app.RecordRun(result); recErr != nil {
			app.Logger().Warn().Err(recErr).Msg("Failed to write metrics")
		}
		format := output.DetectFormat(app.OutputFormat())
		if outErr := output.FormatResult(cmd.OutOrStdout(), result, format); outErr != nil {
			return outErr
		}
	}
	if err != nil {
		return err
	}
	if result.HasErrors() {
		return ErrIncomplete
	}
	return nil
}
