// Package tui is the interactive catalog browser.
package tui

import (
	"context"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/toolshed/internal/catalog"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/tui/themes"
)

// Catalog is the part of the catalog store the browser drives.
type Catalog interface {
	Bootstrap(ctx context.Context) error
	FilteredTools() []model.Tool
	Filters() model.FilterState
	SetFilters(f model.FilterState) error
	Tool(id string) (model.Tool, bool)
	ApprovedReviewsForTool(toolID string) []model.Review
	PendingReviews() []model.Review
	ApproveReview(ctx context.Context, id string) (*catalog.Task, error)
	RejectReview(ctx context.Context, id string) (*catalog.Task, error)
	Syncing() bool
}

// State is the screen the browser shows.
type State int

const (
	StateList State = iota
	StateSearch
	StateDetail
	StatePending
)

const ratingStep = 0.5

// Model holds the browser state.
type Model struct {
	ctx           context.Context
	store         Catalog
	err           error
	theme         themes.Theme
	search        textinput.Model
	help          help.Model
	status        string
	selectedID    string
	tools         []model.Tool
	pending       []model.Review
	keymap        KeyMap
	config        Config
	cursor        int
	pendingCursor int
	width         int
	height        int
	state         State
	loading       bool
	quitting      bool
}

// New creates a browser over store.
func New(ctx context.Context, store Catalog, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	search := textinput.New()
	search.Placeholder = "name, description or use case"
	search.Prompt = "/ "
	search.CharLimit = 100

	m := Model{
		ctx:     ctx,
		store:   store,
		theme:   cfg.Theme,
		search:  search,
		help:    help.New(),
		keymap:  DefaultKeyMap(),
		config:  cfg,
		width:   cfg.Width,
		height:  cfg.Height,
		state:   StateList,
		loading: !cfg.SkipLoad,
	}
	if cfg.SkipLoad {
		m.refresh()
	}
	return m
}

// Init starts the bootstrap unless the store came preloaded.
func (m Model) Init() tea.Cmd {
	if m.config.SkipLoad {
		return nil
	}
	return m.loadCatalog()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case catalogLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.refresh()
		return m, nil

	case syncDoneMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.state {
		case StateSearch:
			return m.updateSearch(msg)
		case StateDetail:
			return m.updateDetail(msg)
		case StatePending:
			return m.updatePending(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap
	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, k.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, k.Down):
		m.cursor = min(len(m.tools)-1, m.cursor+1)
		m.cursor = max(0, m.cursor)
	case key.Matches(msg, k.Home):
		m.cursor = 0
	case key.Matches(msg, k.End):
		m.cursor = max(0, len(m.tools)-1)
	case key.Matches(msg, k.Open):
		if len(m.tools) > 0 {
			m.selectedID = m.tools[m.cursor].ID
			m.state = StateDetail
		}
	case key.Matches(msg, k.Search):
		m.state = StateSearch
		m.search.SetValue(m.store.Filters().SearchQuery)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, k.Category):
		f := m.store.Filters()
		f.Categories = cycle(f.Categories, model.Categories)
		m.applyFilters(f)
	case key.Matches(msg, k.Pricing):
		f := m.store.Filters()
		f.PricingModels = cycle(f.PricingModels, model.PricingModels)
		m.applyFilters(f)
	case key.Matches(msg, k.RatingUp):
		f := m.store.Filters()
		f.MinRating = min(model.MaxRating, f.MinRating+ratingStep)
		m.applyFilters(f)
	case key.Matches(msg, k.RatingDown):
		f := m.store.Filters()
		f.MinRating = max(0, f.MinRating-ratingStep)
		m.applyFilters(f)
	case key.Matches(msg, k.ClearFilters):
		m.applyFilters(model.FilterState{})
	case key.Matches(msg, k.Pending):
		if m.config.Privileged {
			m.state = StatePending
			m.refresh()
		} else {
			m.status = "Sign in as an admin to moderate reviews"
		}
	case key.Matches(msg, k.Refresh):
		m.loading = true
		return m, m.loadCatalog()
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.state = StateList
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.state = StateList
		m.search.Blur()
		m.search.SetValue("")
		f := m.store.Filters()
		f.SearchQuery = ""
		m.applyFilters(f)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	f := m.store.Filters()
	f.SearchQuery = m.search.Value()
	m.applyFilters(f)
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Back):
		m.state = StateList
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updatePending(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap
	switch {
	case key.Matches(msg, k.Back):
		m.state = StateList
		m.refresh()
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, k.Up):
		m.pendingCursor = max(0, m.pendingCursor-1)
	case key.Matches(msg, k.Down):
		m.pendingCursor = max(0, min(len(m.pending)-1, m.pendingCursor+1))
	case key.Matches(msg, k.Approve):
		return m.moderate("approved", m.store.ApproveReview)
	case key.Matches(msg, k.Reject):
		return m.moderate("rejected", m.store.RejectReview)
	}
	return m, nil
}

func (m Model) moderate(outcome string, decide func(context.Context, string) (*catalog.Task, error)) (tea.Model, tea.Cmd) {
	if len(m.pending) == 0 {
		return m, nil
	}
	id := m.pending[m.pendingCursor].ID
	task, err := decide(m.ctx, id)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = "Review " + id + " " + outcome
	m.refresh()
	return m, awaitTask(m.ctx, "review "+outcome, task)
}

// applyFilters stores f and refreshes the visible list. Invalid filters are ignored.
func (m *Model) applyFilters(f model.FilterState) {
	if err := m.store.SetFilters(f); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.cursor = 0
	m.refresh()
}

// refresh re-reads the visible collections from the store.
func (m *Model) refresh() {
	m.tools = m.store.FilteredTools()
	m.cursor = max(0, min(m.cursor, len(m.tools)-1))
	if m.config.Privileged {
		m.pending = m.store.PendingReviews()
		m.pendingCursor = max(0, min(m.pendingCursor, len(m.pending)-1))
	}
}

// cycle steps a single-selection filter through all, then back to none.
func cycle[T comparable](selected, all []T) []T {
	if len(selected) != 1 {
		return []T{all[0]}
	}
	i := slices.Index(all, selected[0])
	if i < 0 || i == len(all)-1 {
		return nil
	}
	return []T{all[i+1]}
}
