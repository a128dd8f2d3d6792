package page

import (
	"context"
	"errors"
	"log"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/draft"
	"github.com/blogstory/internal/flash"
	"github.com/blogstory/internal/nav"
)

const (
	msgPostCreated    = "Post created successfully!"
	msgCreateFailed   = "Failed to create post. Please try again."
	msgEditorFailed   = "Editor failed to load. Please refresh the page."
	msgConfirmDiscard = "Are you sure you want to cancel? Your changes will be lost."
)

type postSavedMsg struct {
	tag  tag
	post api.Post
	err  error
}

// form is the editing state shared by Create and Edit.
type form struct {
	draft       draft.Draft
	fields      draft.FieldErrors
	general     string
	saving      bool
	editorReady bool
	confirming  bool
}

// SetTitle updates the title and clears its field error.
func (f *form) SetTitle(title string) {
	f.draft.Title = title
	f.fields.Clear(draft.FieldTitle)
}

// SetContent takes the editor's serialised HTML and clears its field error.
func (f *form) SetContent(html string) {
	f.draft.Content = html
	f.fields.Clear(draft.FieldContent)
}

// EditorReady records that the editor finished initialising.
func (f *form) EditorReady() { f.editorReady = true }

// EditorFailed surfaces an internal editor failure on the content field.
func (f *form) EditorFailed(err error) {
	log.Printf("[page] editor failure: %v", err)
	if f.fields == nil {
		f.fields = draft.FieldErrors{}
	}
	f.fields[draft.FieldContent] = msgEditorFailed
}

// validate fills the field errors and reports whether the draft passed.
func (f *form) validate() bool {
	f.fields = f.draft.Validate()
	return f.fields == nil
}

func (f *form) failed(err error, fallback string) {
	f.saving = false
	f.general = errorMessage(err, fallback)
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Kind == api.KindValidation && len(apiErr.Fields) > 0 {
		f.fields = draft.FieldErrors{}
		for k, v := range apiErr.Fields {
			f.fields[k] = v
		}
	}
}

// DismissConfirm closes the discard confirmation.
func (f *form) DismissConfirm() { f.confirming = false }

func (f *form) Draft() draft.Draft { return f.draft }
func (f *form) FieldErrors() draft.FieldErrors { return f.fields }
func (f *form) GeneralError() string { return f.general }
func (f *form) Saving() bool { return f.saving }
func (f *form) EditorIsReady() bool { return f.editorReady }
func (f *form) Confirming() bool { return f.confirming }
func (f *form) ConfirmPrompt() string { return msgConfirmDiscard }
func (f *form) TitleLength() int { return f.draft.TitleLength() }

// Create composes a new post.
type Create struct {
	base
	form
}

func NewCreate(deps Deps) *Create {
	return &Create{base: newBase(deps)}
}

func (c *Create) Enter() Cmd {
	c.mount()
	return nil
}

func (c *Create) Leave() { c.unmount() }

// CanSubmit is false while saving or before the editor is ready.
func (c *Create) CanSubmit() bool {
	return !c.saving && c.editorReady
}

// Submit validates locally and only then sends the post.
func (c *Create) Submit() Cmd {
	if !c.CanSubmit() {
		return nil
	}
	if !c.validate() {
		return nil
	}
	c.saving = true
	c.general = ""
	t := c.begin()
	posts, d := c.deps.Posts, c.draft
	return func(ctx context.Context) Msg {
		p, err := posts.CreatePost(ctx, d)
		return postSavedMsg{tag: t, post: p, err: err}
	}
}

func (c *Create) Update(msg Msg) Cmd {
	m, ok := msg.(postSavedMsg)
	if !ok || !c.current(m.tag) {
		return nil
	}
	if m.err != nil {
		c.failed(m.err, msgCreateFailed)
		return nil
	}
	c.saving = false
	c.deps.Nav.Navigate(nav.PostPath(m.post.ID.String()), flash.NewSuccess(msgPostCreated))
	return nil
}

// Cancel leaves at once when nothing was typed; otherwise it asks first.
func (c *Create) Cancel() {
	if c.draft.IsEmpty() {
		c.back()
		return
	}
	c.confirming = true
}

// ConfirmCancel discards the draft and leaves.
func (c *Create) ConfirmCancel() {
	if !c.confirming {
		return
	}
	c.confirming = false
	c.back()
}

func (c *Create) back() {
	if !c.deps.Nav.Back() {
		c.deps.Nav.Replace(nav.HomePath, nil)
	}
}
