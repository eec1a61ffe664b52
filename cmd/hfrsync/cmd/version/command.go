// Package version provides the version command.
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Info provides build information.
type Info interface {
	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}

// NewCommand creates the version command.
func NewCommand(info Info) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "hfrsync version %s\n", info.Version())
			fmt.Fprintf(w, "commit: %s\n", info.Commit())
			fmt.Fprintf(w, "built: %s\n", info.Date())
			fmt.Fprintf(w, "built by: %s\n", info.BuiltBy())
			fmt.Fprintf(w, "go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
