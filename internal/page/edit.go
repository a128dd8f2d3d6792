package page

import (
	"context"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/draft"
	"github.com/blogstory/internal/flash"
	"github.com/blogstory/internal/nav"
)

const (
	msgNotYourPost    = "You can only edit your own posts."
	msgEditNotFound   = "Post not found."
	msgEditLoadFailed = "Failed to load post. Please try again."
	msgNoChanges      = "No changes were made to the post."
	msgPostUpdated    = "Post updated successfully!"
	msgUpdateFailed   = "Failed to update post. Please try again."
)

// Edit changes an existing post. Only its author gets past loading.
type Edit struct {
	base
	form
	postID   api.ID
	status   Status
	original draft.Draft
	loadErr  string
}

func NewEdit(deps Deps, id api.ID) *Edit {
	return &Edit{base: newBase(deps), postID: id}
}

func (e *Edit) Enter() Cmd {
	e.mount()
	return e.fetch()
}

func (e *Edit) Leave() { e.unmount() }

// Retry reloads after a failure.
func (e *Edit) Retry() Cmd { return e.fetch() }

func (e *Edit) fetch() Cmd {
	e.status = nextStatus(e.status, evFetch)
	e.loadErr = ""
	t := e.begin()
	posts, id := e.deps.Posts, e.postID
	return func(ctx context.Context) Msg {
		p, err := posts.GetPost(ctx, id)
		return postLoadedMsg{tag: t, post: p, err: err}
	}
}

func (e *Edit) Update(msg Msg) Cmd {
	switch m := msg.(type) {
	case postLoadedMsg:
		if !e.current(m.tag) {
			return nil
		}
		e.loaded(m.post, m.err)
	case postSavedMsg:
		if !e.current(m.tag) {
			return nil
		}
		if m.err != nil {
			e.failed(m.err, msgUpdateFailed)
			return nil
		}
		e.saving = false
		e.deps.Nav.Navigate(nav.PostPath(e.postID.String()), flash.NewSuccess(msgPostUpdated))
	}
	return nil
}

func (e *Edit) loaded(p api.Post, err error) {
	switch {
	case err == nil:
		// The edit screen is the one place authorship is enforced by redirect.
		if !isAuthor(e.deps.user(), p) {
			e.status = nextStatus(e.status, evFailed)
			e.deps.Nav.Replace(nav.HomePath, flash.NewError(msgNotYourPost))
			return
		}
		e.status = nextStatus(e.status, evLoaded)
		e.original = draft.Draft{Title: p.Title, Content: p.Content}
		e.draft = e.original
		e.fields = nil
	case api.IsNotFound(err):
		e.status = nextStatus(e.status, evMissing)
		e.deps.Nav.Replace(nav.HomePath, flash.NewError(msgEditNotFound))
	default:
		e.status = nextStatus(e.status, evFailed)
		e.loadErr = msgEditLoadFailed
	}
}

// HasChanges compares the draft with the loaded post field by field.
func (e *Edit) HasChanges() bool {
	return !e.draft.Equal(e.original)
}

// CanSubmit requires a loaded post, a ready editor, a change, no field
// errors and no save in flight.
func (e *Edit) CanSubmit() bool {
	return e.status == Ready && e.editorReady && !e.saving && e.HasChanges() && !e.fields.Any()
}

// Submit saves the draft. An unchanged draft never reaches the network: it
// goes back to the post with an informational notice.
func (e *Edit) Submit() Cmd {
	if e.status != Ready || e.saving {
		return nil
	}
	if !e.HasChanges() {
		e.deps.Nav.Navigate(nav.PostPath(e.postID.String()), flash.NewInfo(msgNoChanges))
		return nil
	}
	if !e.editorReady || !e.validate() {
		return nil
	}
	e.saving = true
	e.general = ""
	t := e.begin()
	posts, id, d := e.deps.Posts, e.postID, e.draft
	return func(ctx context.Context) Msg {
		p, err := posts.UpdatePost(ctx, id, d)
		return postSavedMsg{tag: t, post: p, err: err}
	}
}

// Cancel returns to the post, asking first when there are unsaved changes.
func (e *Edit) Cancel() {
	if e.HasChanges() {
		e.confirming = true
		return
	}
	e.deps.Nav.Navigate(nav.PostPath(e.postID.String()), nil)
}

// ConfirmCancel discards the changes and returns to the post.
func (e *Edit) ConfirmCancel() {
	if !e.confirming {
		return
	}
	e.confirming = false
	e.deps.Nav.Navigate(nav.PostPath(e.postID.String()), nil)
}

func (e *Edit) ID() api.ID { return e.postID }
func (e *Edit) Status() Status { return e.status }
func (e *Edit) Original() draft.Draft { return e.original }
func (e *Edit) LoadError() string { return e.loadErr }
