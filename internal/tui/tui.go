// Package tui is the interactive terminal front end of the blog client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/blogstory/internal/page"
	"github.com/blogstory/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the full-screen client on the current route of deps.Nav and
// blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, deps page.Deps, logFile string) error {
	// Standard logging would tear the alternate screen.
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "blogstory")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		prev := log.Writer()
		log.SetOutput(io.Discard)
		defer log.SetOutput(prev)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newAppModel(ctx, deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks until the event loop reads it; logout notifies from inside Update.
	unsubscribe := deps.Session.Subscribe(func(session.Session) {
		go p.Send(sessionMsg{})
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
