package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolkov/synckit"
)

func newVersionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and runtime information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := synckit.GetInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "synckit %s (%s, futex backend: %s)\n",
				info.Version, info.GoVersion, info.FutexBackend)

			minimum, err := cmd.Flags().GetString("require")
			if err != nil {
				return fmt.Errorf("invalid argument: %w", err)
			}
			if minimum == "" {
				return nil
			}
			if err := synckit.Require(minimum); err != nil {
				return err
			}
			a.logger.Debug("version requirement satisfied", "require", minimum)
			return nil
		},
	}

	cmd.Flags().String("require", "", "Fail unless the library version is at least this semver")

	return cmd
}
