package tui

import (
	"context"
	"errors"
	"time"

	"interviewprep/internal/resume"

	tea "github.com/charmbracelet/bubbletea"
)

// RunOptions configures Run
type RunOptions struct {
	Options

	// Watch reloads ResumePath whenever it changes on disk
	Watch         bool
	WatchDebounce time.Duration
}

// Run starts the program on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, opts RunOptions) error {
	m := New(ctx, opts.Options)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.Watch && opts.ResumePath != "" {
		path := opts.ResumePath
		w := resume.NewWatcher(path, opts.WatchDebounce, func() {
			p.Send(resumeChangedMsg{path: path})
		}, m.logger)
		if err := w.Start(); err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
