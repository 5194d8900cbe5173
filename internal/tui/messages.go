package tui

// catalogLoadedMsg reports the end of a bootstrap.
type catalogLoadedMsg struct {
	err error
}

// syncDoneMsg reports the end of a background moderation sync.
// Failures are not shown; the local decision stands.
type syncDoneMsg struct {
	err error
	op  string
}
