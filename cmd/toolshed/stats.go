package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/toolshed/internal/cli"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog counters (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireAdmin(); err != nil {
				return err
			}

			stats, err := a.client.Stats(ctx, a.session.Token())
			if err != nil {
				return err
			}

			body := fmt.Sprintf("Users:   %d\nTools:   %d\nReviews: %d", stats.Users, stats.Tools, stats.Reviews)
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Catalog", body))
			return nil
		},
	}
}
