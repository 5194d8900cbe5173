package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/toolshed/internal/cli"
	"github.com/Veraticus/toolshed/internal/common"
)

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case StateDetail:
		body = m.detailView()
	case StatePending:
		body = m.pendingView()
	default:
		body = m.listView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		body,
		m.footerView(),
	)
}

func (m Model) headerView() string {
	title := m.theme.Title.Render(cli.ToolIcon + " toolshed")
	if m.store.Syncing() {
		title += " " + m.theme.Muted.Render("syncing…")
	}
	return title + "\n" + m.filterSummary()
}

func (m Model) filterSummary() string {
	f := m.store.Filters()
	part := func(label, value string) string {
		if value == "" {
			return m.theme.Muted.Render(label + ": any")
		}
		return m.theme.FilterOn.Render(label + ": " + value)
	}

	cats := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		cats = append(cats, string(c))
	}
	prices := make([]string, 0, len(f.PricingModels))
	for _, p := range f.PricingModels {
		prices = append(prices, string(p))
	}
	rating := ""
	if f.MinRating > 0 {
		rating = fmt.Sprintf("≥ %.1f", f.MinRating)
	}

	return strings.Join([]string{
		part("category", strings.Join(cats, ", ")),
		part("pricing", strings.Join(prices, ", ")),
		part("rating", rating),
		part("search", strings.TrimSpace(f.SearchQuery)),
	}, "  ")
}

// visibleRows is how many list rows fit between header and footer.
func (m Model) visibleRows() int {
	return max(3, m.height-8)
}

func (m Model) listView() string {
	var b strings.Builder
	if m.state == StateSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	switch {
	case m.loading:
		b.WriteString(m.theme.Muted.Render("Loading catalog…"))
		return b.String()
	case len(m.tools) == 0:
		b.WriteString(m.theme.Muted.Render("No tools match."))
		return b.String()
	}

	rows := m.visibleRows()
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(len(m.tools), start+rows)

	for i := start; i < end; i++ {
		t := m.tools[i]
		line := fmt.Sprintf("%-28s %-16s %-13s %s",
			truncate(t.Name, 28), t.Category, t.PricingModel, cli.Stars(t.AverageRating))
		if i == m.cursor {
			line = m.theme.Selected.Render(line)
		} else {
			line = m.theme.Normal.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Muted.Render(fmt.Sprintf("%d tools", len(m.tools))))
	return b.String()
}

func (m Model) detailView() string {
	t, ok := m.store.Tool(m.selectedID)
	if !ok {
		return m.theme.Muted.Render("This tool is no longer in the catalog.")
	}
	return cli.ToolDetail(t, m.store.ApprovedReviewsForTool(t.ID))
}

func (m Model) pendingView() string {
	if len(m.pending) == 0 {
		return m.theme.Muted.Render("No reviews waiting for moderation.")
	}

	var b strings.Builder
	b.WriteString(m.theme.Bold.Render(fmt.Sprintf("%d pending reviews", len(m.pending))))
	b.WriteString("\n")
	for i, r := range m.pending {
		toolName := r.ToolID
		if t, ok := m.store.Tool(r.ToolID); ok {
			toolName = t.Name
		}
		line := fmt.Sprintf("%-20s %-14s %d★ %s", truncate(toolName, 20), truncate(r.UserName, 14), r.Rating, truncate(r.Comment, 40))
		if i == m.pendingCursor {
			line = m.theme.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) footerView() string {
	var lines []string
	if m.err != nil {
		lines = append(lines, m.theme.StatusError.Render("Could not load the catalog: "+common.UserMessage(m.err)))
	}
	if m.status != "" {
		lines = append(lines, m.theme.StatusInfo.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keymap))
	return "\n" + strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
