package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/toolshed/internal/model"
)

const maxCellWidth = 40

// renderTable lays rows out in padded columns under a bold header.
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = TableCellStyle.Width(widths[i] + TableCellStyle.GetPaddingRight()).Render(cell)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}

	var b strings.Builder
	b.WriteString(line(header, TableHeaderStyle))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(line(row, lipgloss.NewStyle()))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ToolTable renders the catalog listing.
func ToolTable(tools []model.Tool) string {
	if len(tools) == 0 {
		return SubtleStyle.Render("No tools match.")
	}
	rows := make([][]string, 0, len(tools))
	for _, t := range tools {
		rows = append(rows, []string{
			t.ID,
			truncate(t.Name, maxCellWidth),
			string(t.Category),
			string(t.PricingModel),
			fmt.Sprintf("%.1f", t.AverageRating),
			fmt.Sprint(t.TotalReviews),
		})
	}
	return renderTable([]string{"ID", "NAME", "CATEGORY", "PRICING", "RATING", "REVIEWS"}, rows)
}

// ReviewTable renders reviews with their status.
func ReviewTable(reviews []model.Review) string {
	if len(reviews) == 0 {
		return SubtleStyle.Render("No reviews.")
	}
	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, []string{
			r.ID,
			r.ToolID,
			truncate(r.UserName, 20),
			fmt.Sprint(r.Rating),
			FormatStatus(r.Status),
			truncate(r.Comment, maxCellWidth),
		})
	}
	return renderTable([]string{"ID", "TOOL", "AUTHOR", "RATING", "STATUS", "COMMENT"}, rows)
}

// ToolDetail renders one tool and its public reviews.
func ToolDetail(t model.Tool, reviews []model.Review) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", SubtleStyle.Render(t.Description))
	fmt.Fprintf(&b, "\n%s %s\n", BoldStyle.Render("Use case:"), t.UseCase)
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Category:"), t.Category)
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Pricing: "), t.PricingModel)
	if t.Website != "" {
		fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Website: "), t.Website)
	}
	fmt.Fprintf(&b, "%s %s (%d reviews)\n", BoldStyle.Render("Rating:  "), Stars(t.AverageRating), t.TotalReviews)

	if len(reviews) > 0 {
		b.WriteString("\n")
		for _, r := range reviews {
			fmt.Fprintf(&b, "%s %s\n", StarStyle.Render(strings.Repeat(StarIcon, r.Rating)), BoldStyle.Render(r.UserName))
			if r.Comment != "" {
				fmt.Fprintf(&b, "  %s\n", r.Comment)
			}
		}
	}

	return RenderBox(t.Name, strings.TrimRight(b.String(), "\n"))
}
