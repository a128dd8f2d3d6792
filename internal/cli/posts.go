package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/draft"
	"github.com/blogstory/internal/page"
	"github.com/blogstory/internal/richtext"
	"github.com/spf13/cobra"
)

// postView is a post as printed by the CLI: the HTML body plus a plain-text rendering.
type postView struct {
	api.Post
	Text string `json:"text,omitempty"`
}

type postSummary struct {
	ID        api.ID `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

func summarize(posts []api.Post) []postSummary {
	out := make([]postSummary, 0, len(posts))
	for _, p := range posts {
		summary := p.Summary
		if summary == "" {
			summary = richtext.Summary(p.Content, 150)
		}
		out = append(out, postSummary{
			ID:        p.ID,
			Title:     p.Title,
			Author:    p.Author,
			Summary:   summary,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func newPostsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List, read and write posts",
	}
	cmd.AddCommand(newPostsListCmd(app))
	cmd.AddCommand(newPostsShowCmd(app))
	cmd.AddCommand(newPostsMineCmd(app))
	cmd.AddCommand(newPostsCreateCmd(app))
	cmd.AddCommand(newPostsEditCmd(app))
	cmd.AddCommand(newPostsDeleteCmd(app))
	return cmd
}

func newPostsListCmd(app *App) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all posts, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.connect(cmd.Context())
			posts, err := app.client.ListPosts(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: summarize(page.Filter(posts, search))})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive match on title, content or author")
	return cmd
}

func newPostsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.connect(cmd.Context())
			post, err := app.client.GetPost(cmd.Context(), api.ID(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: postView{Post: post, Text: richtext.Text(post.Content)}})
		},
	}
}

func newPostsMineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the posts of the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.connect(cmd.Context())
			if _, err := app.requireUser(); err != nil {
				return writeErr(cmd, err)
			}
			posts, err := app.client.ListMyPosts(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: summarize(posts)})
		},
	}
}

type bodyFlags struct {
	title   string
	content string
	file    string
}

func (f *bodyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Post title")
	cmd.Flags().StringVar(&f.content, "content", "", "Post body in markdown")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read the markdown body from a file")
}

// body returns the HTML of the requested content, or ok=false when none was given.
func (f *bodyFlags) body() (html string, ok bool, err error) {
	source := f.content
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return "", false, fmt.Errorf("read %s: %w", f.file, err)
		}
		source = string(data)
	}
	if source == "" {
		return "", false, nil
	}
	html, err = richtext.Render(source)
	return html, true, err
}

func validationErr(fields draft.FieldErrors) error {
	for _, field := range []string{draft.FieldTitle, draft.FieldContent} {
		if msg, ok := fields[field]; ok {
			return errors.New(msg)
		}
	}
	return nil
}

func newPostsCreateCmd(app *App) *cobra.Command {
	var flags bodyFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.connect(cmd.Context())
			if _, err := app.requireUser(); err != nil {
				return writeErr(cmd, err)
			}
			content, _, err := flags.body()
			if err != nil {
				return writeErr(cmd, err)
			}
			d := draft.Draft{Title: flags.title, Content: content}
			if err := validationErr(d.Validate()); err != nil {
				return writeErr(cmd, err)
			}
			post, err := app.client.CreatePost(cmd.Context(), d)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: post, Message: "Post created successfully!"})
		},
	}
	flags.register(cmd)
	return cmd
}

func newPostsEditCmd(app *App) *cobra.Command {
	var flags bodyFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or body of one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.connect(cmd.Context())
			user, err := app.requireUser()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := api.ID(args[0])
			post, err := app.client.GetPost(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if post.AuthorID != user.ID {
				return writeErr(cmd, errors.New("You can only edit your own posts."))
			}

			original := draft.Draft{Title: post.Title, Content: post.Content}
			next := original
			if flags.title != "" {
				next.Title = flags.title
			}
			content, ok, err := flags.body()
			if err != nil {
				return writeErr(cmd, err)
			}
			if ok {
				next.Content = content
			}
			if next.Equal(original) {
				return writeOut(cmd, app, envelope{Data: post, Message: "No changes were made to the post."})
			}
			if err := validationErr(next.Validate()); err != nil {
				return writeErr(cmd, err)
			}

			updated, err := app.client.UpdatePost(cmd.Context(), id, next)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: updated, Message: "Post updated successfully!"})
		},
	}
	flags.register(cmd)
	return cmd
}

func newPostsDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errors.New("deleting cannot be undone: pass --yes to confirm"))
			}
			app.connect(cmd.Context())
			if _, err := app.requireUser(); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.client.DeletePost(cmd.Context(), api.ID(args[0])); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Message: "Post deleted successfully!"})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
