package cli

import (
	"errors"
	"os"

	"github.com/blogstory/internal/api"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var creds api.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Password == "" {
				creds.Password = os.Getenv("BLOGSTORY_PASSWORD")
			}
			if creds.Email == "" || creds.Password == "" {
				return writeErr(cmd, errors.New("email and password are required"))
			}
			app.connect(cmd.Context())
			user, err := app.store.Login(cmd.Context(), creds)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: user, Message: "Welcome back, " + user.Username + "!"})
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Account password (or BLOGSTORY_PASSWORD)")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var reg api.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reg.Password == "" {
				reg.Password = os.Getenv("BLOGSTORY_PASSWORD")
			}
			app.connect(cmd.Context())
			user, err := app.store.Register(cmd.Context(), reg)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: user, Message: "Account created. Welcome, " + user.Username + "!"})
		},
	}
	cmd.Flags().StringVar(&reg.Username, "username", "", "Username (3-20 characters)")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Password (or BLOGSTORY_PASSWORD)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.connect(cmd.Context())
			app.store.Logout()
			return writeOut(cmd, app, envelope{Message: "Logged out."})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.connect(cmd.Context())
			user, err := app.requireUser()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: user})
		},
	}
}

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Account details",
	}

	var upd api.ProfileUpdate
	update := &cobra.Command{
		Use:   "update",
		Short: "Change username or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.connect(cmd.Context())
			current, err := app.requireUser()
			if err != nil {
				return writeErr(cmd, err)
			}
			if upd.Username == "" {
				upd.Username = current.Username
			}
			if upd.Email == "" {
				upd.Email = current.Email
			}
			user, err := app.client.UpdateProfile(cmd.Context(), upd)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.store.SetUser(user)
			return writeOut(cmd, app, envelope{Data: user, Message: "Profile updated!"})
		},
	}
	update.Flags().StringVar(&upd.Username, "username", "", "New username")
	update.Flags().StringVar(&upd.Email, "email", "", "New email")

	cmd.AddCommand(update)
	return cmd
}
