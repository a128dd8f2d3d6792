// Package cli wires the blogstory command: the interactive client when run
// bare, scriptable JSON subcommands otherwise.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/config"
	"github.com/blogstory/internal/nav"
	"github.com/blogstory/internal/page"
	"github.com/blogstory/internal/session"
	"github.com/blogstory/internal/tui"
	"github.com/spf13/cobra"
)

type App struct {
	APIURL      string
	SessionFile string
	LogFile     string
	Open        string
	PrettyJSON  bool

	client *api.Client
	store  *session.Store
}

func NewRootCmd() *cobra.Command {
	cfg := config.LoadClient()
	app := &App{}

	cmd := &cobra.Command{
		Use:          "blogstory",
		Short:        "BlogStory terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Browse and write posts interactively
  blogstory

  # Jump straight to a post
  blogstory --open /post/42

  # Scriptable commands
  blogstory login --email ann@example.com --password secret
  blogstory posts list --search go
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", cfg.APIURL, "API base URL")
	cmd.PersistentFlags().StringVar(&app.SessionFile, "session-file", cfg.SessionFile, "Where the login session is kept (empty: do not persist)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", cfg.LogFile, "Write logs of the interactive client to this file")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&app.Open, "open", nav.HomePath, "Route to open the interactive client on")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newProfileCmd(app))
	cmd.AddCommand(newPostsCmd(app))

	return cmd
}

// connect builds the API client and session store and restores any saved
// session. A server that cannot be reached keeps the saved session.
func (app *App) connect(ctx context.Context) {
	if app.client != nil {
		return
	}
	app.store = session.New(nil, app.SessionFile)
	app.client = api.New(app.APIURL, app.store)
	app.store.SetAuthenticator(app.client)

	if err := app.store.Restore(ctx); err != nil {
		log.Printf("[cli] restore session: %v", err)
	}
}

func (app *App) requireUser() (*api.User, error) {
	user := app.store.User()
	if user == nil {
		return nil, fmt.Errorf("not logged in: run `blogstory login` first")
	}
	return user, nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	app.connect(cmd.Context())

	deps := page.Deps{
		Posts:    app.client,
		Profiles: app.client,
		Session:  app.store,
		Nav:      nav.New(app.Open),
	}
	return tui.Run(cmd.Context(), deps, app.LogFile)
}

type envelope struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeOut(cmd *cobra.Command, app *App, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// reportedError marks an error writeErr already printed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func writeErr(cmd *cobra.Command, err error) error {
	msg := api.Message(err)
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return reportedError{err}
}

// Reported reports whether err was already printed by a command.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
