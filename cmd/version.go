package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/querybar/pkg/settings"
)

// versionString builds the text shared by 'querybar version' and --version.
func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s (commit %s, built %s, %s)", v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print querybar version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), settings.CliBinaryName, versionString())
			return nil
		},
	}
}
