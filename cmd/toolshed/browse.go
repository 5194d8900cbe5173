package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/toolshed/internal/tui"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively",
		Long: `Open the full-screen catalog browser.

Search with /, narrow by category (c), pricing (p) and minimum rating (+/-).
Admins can open the moderation queue with m and approve (a) or reject (d)
pending reviews.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			store := a.newCatalog()
			return tui.Run(ctx, store, tui.WithPrivileged(a.session.IsPrivileged()))
		},
	}
}
