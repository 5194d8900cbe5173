package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/toolshed/internal/catalog"
)

// loadCatalog bootstraps the store off the UI goroutine.
func (m Model) loadCatalog() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return catalogLoadedMsg{err: store.Bootstrap(ctx)}
	}
}

// awaitTask turns a background task into a syncDoneMsg. A nil task needs no message.
func awaitTask(ctx context.Context, op string, task *catalog.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	return func() tea.Msg {
		err := task.Wait(ctx)
		if err != nil {
			slog.Debug("Background sync finished with error", "op", op, "error", err)
		}
		return syncDoneMsg{op: op, err: err}
	}
}
