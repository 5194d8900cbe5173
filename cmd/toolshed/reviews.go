package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/toolshed/internal/catalog"
	"github.com/Veraticus/toolshed/internal/cli"
	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/model"
)

func reviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Submit and moderate reviews",
	}

	cmd.AddCommand(reviewsSubmitCmd())
	cmd.AddCommand(reviewsPendingCmd())
	cmd.AddCommand(reviewsModerateCmd("approve", "approved", "Approve a pending review (admin)", (*catalog.Store).ApproveReview))
	cmd.AddCommand(reviewsModerateCmd("reject", "rejected", "Reject a pending review (admin)", (*catalog.Store).RejectReview))

	return cmd
}

func reviewsSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <tool-id>",
		Short: "Review a tool",
		Long: `Submit a rating and an optional comment for a tool.

Reviews are held for moderation and count towards the tool's rating once an
admin approves them. Submitting needs a signed-in account; nothing is kept on
this machine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			identity, signedIn := a.session.Identity()
			if !signedIn {
				return common.NewAuthError("Please sign in to review tools", common.ErrMissingCredential)
			}

			draft := model.ReviewDraft{ToolID: args[0]}
			draft.Rating, _ = cmd.Flags().GetInt("rating")
			draft.Comment, _ = cmd.Flags().GetString("comment")
			draft.UserName, _ = cmd.Flags().GetString("name")
			draft.UserID = identity.Username
			if draft.UserName == "" {
				draft.UserName = identity.Username
			}

			store := a.loadCatalog(ctx, out, false)
			sub, err := store.SubmitReview(ctx, draft)
			if err != nil {
				return err
			}

			if !sub.Remote {
				reason := "no credential was sent"
				if sub.RemoteErr != nil {
					reason = common.UserMessage(sub.RemoteErr)
				}
				return common.NewUserError("The review was not submitted: "+reason, sub.RemoteErr)
			}
			fmt.Fprintln(out, cli.FormatSuccess("Review submitted for moderation"))
			return nil
		},
	}
	cmd.Flags().IntP("rating", "r", 0, "rating from 1 to 5")
	cmd.Flags().StringP("comment", "m", "", "review text")
	cmd.Flags().String("name", "", "display name (defaults to the signed-in username)")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func reviewsPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List reviews waiting for moderation (admin)",
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

			pending, err := a.client.PendingReviews(ctx, a.session.Token())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(pending) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No reviews waiting for moderation"))
				return nil
			}
			fmt.Fprintln(out, cli.ReviewTable(pending))
			return nil
		},
	}
}

type moderateFunc func(*catalog.Store, context.Context, string) (*catalog.Task, error)

func reviewsModerateCmd(verb, outcome, short string, decide moderateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <review-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireAdmin(); err != nil {
				return err
			}

			store := a.loadCatalog(ctx, out, false)
			id := args[0]
			before, known := findReview(store, id)
			if !known {
				return fmt.Errorf("review %q: %w", id, common.ErrNotFound)
			}

			task, err := decide(store, ctx, id)
			if err != nil {
				return err
			}
			if task == nil {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Review is already %s", before.Status)))
				return nil
			}
			if err := settle(ctx, "The decision", task); err != nil {
				return err
			}

			msg := "Review " + outcome
			if tool, ok := store.Tool(before.ToolID); ok {
				msg += fmt.Sprintf(". %s is now rated %s (%d reviews)", tool.Name, cli.Stars(tool.AverageRating), tool.TotalReviews)
			}
			fmt.Fprintln(out, cli.FormatSuccess(msg))
			return nil
		},
	}
}

func findReview(store *catalog.Store, id string) (model.Review, bool) {
	for _, r := range store.Reviews() {
		if r.ID == id {
			return r, true
		}
	}
	return model.Review{}, false
}
