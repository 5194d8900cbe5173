package tui

import "github.com/Veraticus/toolshed/internal/tui/themes"

// Config holds TUI configuration.
type Config struct {
	Theme      themes.Theme
	Width      int
	Height     int
	Privileged bool
	SkipLoad   bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  80,
		Height: 24,
	}
}

// WithTheme sets a custom theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) { c.Theme = theme }
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPrivileged enables the moderation queue.
func WithPrivileged(privileged bool) Option {
	return func(c *Config) { c.Privileged = privileged }
}

// WithPreloaded skips the bootstrap on start; the store is already loaded.
func WithPreloaded() Option {
	return func(c *Config) { c.SkipLoad = true }
}
