package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/toolshed/internal/cli"
	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/filter"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/service"
)

func toolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List and curate catalog entries",
	}

	cmd.AddCommand(toolsListCmd())
	cmd.AddCommand(toolsShowCmd())
	cmd.AddCommand(toolsAddCmd())
	cmd.AddCommand(toolsUpdateCmd())
	cmd.AddCommand(toolsDeleteCmd())

	return cmd
}

func toolsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tools, optionally filtered",
		Args:  cobra.NoArgs,
		RunE:  runToolsList,
	}
	cmd.Flags().StringSliceP("category", "c", nil, "categories to include (NLP, Computer Vision, Dev Tools, Analytics, Automation)")
	cmd.Flags().StringSliceP("pricing", "p", nil, "pricing models to include (Free, Paid, Subscription)")
	cmd.Flags().Float64P("min-rating", "r", 0, "minimum average rating, in steps of 0.5")
	cmd.Flags().StringP("search", "s", "", "text to find in name, description or use case")
	return cmd
}

func filterFromFlags(cmd *cobra.Command) (model.FilterState, error) {
	var f model.FilterState

	cats, _ := cmd.Flags().GetStringSlice("category")
	for _, c := range cats {
		parsed, ok := model.ParseCategory(c)
		if !ok {
			return f, common.NewValidationError(fmt.Sprintf("Unknown category %q", c), "category", "unknown")
		}
		f.Categories = append(f.Categories, parsed)
	}
	prices, _ := cmd.Flags().GetStringSlice("pricing")
	for _, p := range prices {
		parsed, ok := model.ParsePricingModel(p)
		if !ok {
			return f, common.NewValidationError(fmt.Sprintf("Unknown pricing model %q", p), "pricing", "unknown")
		}
		f.PricingModels = append(f.PricingModels, parsed)
	}
	f.MinRating, _ = cmd.Flags().GetFloat64("min-rating")
	f.SearchQuery, _ = cmd.Flags().GetString("search")

	if err := f.Validate(); err != nil {
		return f, common.NewValidationError(err.Error(), "", "")
	}
	return f, nil
}

// serverQuery narrows the listing on the server where the API can express it.
func serverQuery(f model.FilterState) service.ToolQuery {
	q := service.ToolQuery{MinRating: f.MinRating}
	if len(f.Categories) == 1 {
		q.Category = f.Categories[0]
	}
	if len(f.PricingModels) == 1 {
		q.Pricing = f.PricingModels[0]
	}
	return q
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	f, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tools, err := a.client.ListTools(ctx, serverQuery(f))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.ToolTable(filter.Apply(tools, f)))
	return nil
}

func toolsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <tool-id>",
		Short: "Show a tool and its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			tool, err := a.client.GetTool(ctx, args[0])
			if err != nil {
				return err
			}
			// The detail record may carry a storage id instead of the route id.
			reviews, err := a.client.ApprovedReviews(ctx, args[0])
			if err != nil {
				common.LogDebug(ctx, err, "Failed to load reviews", common.Fields{"tool_id": args[0]})
				reviews = nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(tool.Name))
			fmt.Fprintln(out, cli.ToolDetail(*tool, reviews))
			return nil
		},
	}
}

func toolFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "tool name")
	cmd.Flags().String("description", "", "short description")
	cmd.Flags().String("use-case", "", "what the tool is for")
	cmd.Flags().String("category", "", "category (NLP, Computer Vision, Dev Tools, Analytics, Automation)")
	cmd.Flags().String("pricing", "", "pricing model (Free, Paid, Subscription)")
	cmd.Flags().String("website", "", "website URL")
}

func toolsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tool to the catalog (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			draft := model.ToolDraft{}
			draft.Name, _ = cmd.Flags().GetString("name")
			draft.Description, _ = cmd.Flags().GetString("description")
			draft.UseCase, _ = cmd.Flags().GetString("use-case")
			draft.Website, _ = cmd.Flags().GetString("website")
			draft.Category = parsedCategory(cmd)
			draft.PricingModel = parsedPricing(cmd)

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireAdmin(); err != nil {
				return err
			}

			store := a.loadCatalog(ctx, out, false)
			tool, task, err := store.AddTool(ctx, draft)
			if err != nil {
				return err
			}
			if err := settle(ctx, "The new tool", task); err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %s", tool.Name)))
			return nil
		},
	}
	toolFlags(cmd)
	return cmd
}

// parsedCategory returns the canonical category, or the raw text so validation can reject it.
func parsedCategory(cmd *cobra.Command) model.Category {
	raw, _ := cmd.Flags().GetString("category")
	if c, ok := model.ParseCategory(raw); ok {
		return c
	}
	return model.Category(strings.TrimSpace(raw))
}

func parsedPricing(cmd *cobra.Command) model.PricingModel {
	raw, _ := cmd.Flags().GetString("pricing")
	if p, ok := model.ParsePricingModel(raw); ok {
		return p
	}
	return model.PricingModel(strings.TrimSpace(raw))
}

// patchFromFlags builds a patch from the flags the user actually set.
func patchFromFlags(cmd *cobra.Command) model.ToolPatch {
	var p model.ToolPatch
	str := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetString(name)
		return &v
	}
	p.Name = str("name")
	p.Description = str("description")
	p.UseCase = str("use-case")
	p.Website = str("website")
	if cmd.Flags().Changed("category") {
		c := parsedCategory(cmd)
		p.Category = &c
	}
	if cmd.Flags().Changed("pricing") {
		pm := parsedPricing(cmd)
		p.PricingModel = &pm
	}
	return p
}

func toolsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <tool-id>",
		Short: "Edit a tool (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			patch := patchFromFlags(cmd)

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireAdmin(); err != nil {
				return err
			}

			store := a.loadCatalog(ctx, out, false)
			tool, task, err := store.UpdateTool(ctx, args[0], patch)
			if err != nil {
				return err
			}
			if err := settle(ctx, "The update", task); err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Updated %s", tool.Name)))
			return nil
		},
	}
	toolFlags(cmd)
	return cmd
}

func toolsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <tool-id>",
		Short: "Delete a tool and its reviews (admin)",
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
			tool, ok := store.Tool(args[0])
			if !ok {
				return fmt.Errorf("tool %q: %w", args[0], common.ErrNotFound)
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				reviews := len(store.ReviewsForTool(tool.ID))
				confirmed, err := cli.NewPrompter(cmd.InOrStdin(), out).Confirm(ctx,
					fmt.Sprintf("Delete %s and its %d reviews?", tool.Name, reviews))
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(out, cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			task, err := store.DeleteTool(ctx, tool.ID)
			if err != nil {
				return err
			}
			if err := settle(ctx, "The deletion", task); err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %s", tool.Name)))
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}
