// Package locations provides the locations command.
package locations

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/moh-tz/hfrsync"
	"github.com/moh-tz/hfrsync/internal/cmd/output"
	"github.com/moh-tz/hfrsync/internal/matcher"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/logging"
)

// AppContext defines what the locations command needs from the app.
type AppContext interface {
	Client() (hfrsync.Client, error)
	Logger() *zerolog.Logger
	OutputFormat() string
}

// NewCommand creates the locations command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var tag, code, name string

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List registry locations",
		Long: `Locations lists the registry the way a sync run indexes it,
optionally filtered by level tag, by code or by a name pattern.
Name patterns are globs unless they carry regex syntax or a "re:" prefix.`,
		Example: `  hfrsync locations --tag Region
  hfrsync locations --tag Council --name 'Kinondoni*'
  hfrsync locations --code 104512-1 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())

			var level locations.Tag
			if tag != "" {
				t, ok := locations.ParseTag(tag)
				if !ok {
					return errors.NewValidationError("tag", tag, "unknown level tag")
				}
				level = t
			}

			var nameMatcher matcher.Matcher
			if name != "" {
				m, err := matcher.New(matcher.Auto, name)
				if err != nil {
					return errors.NewValidationError("name", name, err.Error())
				}
				nameMatcher = m
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			idx, _, err := client.Index(ctx)
			if err != nil {
				return err
			}

			var locs []*locations.Location
			if code != "" {
				if loc, ok := idx.ByCode(code); ok {
					locs = append(locs, loc)
				}
			} else {
				locs = idx.All()
			}
			locs = Filter(locs, level, nameMatcher)

			if code != "" && len(locs) == 0 {
				return errors.NewNotFoundError("location", code)
			}
			return output.FormatLocations(cmd.OutOrStdout(), locs, output.DetectFormat(app.OutputFormat()))
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only locations carrying this level tag")
	cmd.Flags().StringVar(&code, "code", "", "only the location holding this code")
	cmd.Flags().StringVar(&name, "name", "", "only locations whose name matches this glob or regex")

	return cmd
}

// Filter keeps the locations tagged with level whose name matches m.
// An empty level or a nil matcher does not filter.
func Filter(locs []*locations.Location, level locations.Tag, m matcher.Matcher) []*locations.Location {
	if level == "" && m == nil {
		return locs
	}
	var out []*locations.Location
	for _, l := range locs {
		if level != "" && !l.HasTag(level) {
			continue
		}
		if m != nil && !m.Match(l.Name) {
			continue
		}
		out = append(out, l)
	}
	return out
}
