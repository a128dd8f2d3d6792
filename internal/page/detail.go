package page

import (
	"context"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/flash"
	"github.com/blogstory/internal/nav"
)

const (
	msgDetailNotFound    = "Post not found. It may have been deleted or the URL is incorrect."
	msgDetailLoadFailed  = "Failed to load post. Please try again later."
	msgDeleteFailed      = "Failed to delete post. Please try again."
	msgPostDeleted       = "Post deleted successfully!"
	msgConfirmDeletePost = "Are you sure you want to delete this post? This action cannot be undone."
)

type postLoadedMsg struct {
	tag  tag
	post api.Post
	err  error
}

type postDeletedMsg struct {
	tag tag
	id  api.ID
	err error
}

// Detail shows one post. Edit and delete are offered to its author only.
type Detail struct {
	base
	postID     api.ID
	status     Status
	post       api.Post
	err        string
	actionErr  string
	confirming bool
	deleting   bool
}

func NewDetail(deps Deps, id api.ID) *Detail {
	return &Detail{base: newBase(deps), postID: id}
}

func (d *Detail) Enter() Cmd {
	d.mount()
	return Batch(d.receiveNotice(), d.fetch())
}

func (d *Detail) Leave() { d.unmount() }

// SetID switches to another post; the old request is superseded. Staying on
// the same post only takes the notice carried by the navigation.
func (d *Detail) SetID(id api.ID) Cmd {
	if id == d.postID && d.status != Failed {
		return d.receiveNotice()
	}
	d.postID = id
	d.post = api.Post{}
	d.confirming = false
	d.deleting = false
	d.actionErr = ""
	return Batch(d.receiveNotice(), d.fetch())
}

// Retry reloads after a failure.
func (d *Detail) Retry() Cmd { return d.fetch() }

func (d *Detail) fetch() Cmd {
	d.status = nextStatus(d.status, evFetch)
	d.err = ""
	t := d.begin()
	posts, id := d.deps.Posts, d.postID
	return func(ctx context.Context) Msg {
		p, err := posts.GetPost(ctx, id)
		return postLoadedMsg{tag: t, post: p, err: err}
	}
}

func (d *Detail) Update(msg Msg) Cmd {
	if d.expire(msg) {
		return nil
	}
	switch m := msg.(type) {
	case postLoadedMsg:
		if !d.current(m.tag) {
			return nil
		}
		switch {
		case m.err == nil:
			d.status = nextStatus(d.status, evLoaded)
			d.post = m.post
		case api.IsNotFound(m.err):
			d.status = nextStatus(d.status, evMissing)
			d.err = msgDetailNotFound
		default:
			d.status = nextStatus(d.status, evFailed)
			d.err = msgDetailLoadFailed
		}
	case postDeletedMsg:
		if !d.owns(m.tag) || m.id != d.postID {
			return nil
		}
		d.deleting = false
		if m.err != nil {
			d.actionErr = msgDeleteFailed
			return nil
		}
		d.deps.Nav.Navigate(nav.MyPostsPath, flash.NewSuccess(msgPostDeleted))
	}
	return nil
}

// RequestDelete opens the confirmation step.
func (d *Detail) RequestDelete() {
	if d.CanModify() && !d.deleting {
		d.confirming = true
	}
}

// CancelDelete closes the confirmation without deleting.
func (d *Detail) CancelDelete() { d.confirming = false }

// ConfirmDelete deletes the post after the user agreed.
func (d *Detail) ConfirmDelete() Cmd {
	if !d.confirming || d.deleting {
		return nil
	}
	d.confirming = false
	d.deleting = true
	d.actionErr = ""
	t := d.action()
	posts, id := d.deps.Posts, d.postID
	return func(ctx context.Context) Msg {
		return postDeletedMsg{tag: t, id: id, err: posts.DeletePost(ctx, id)}
	}
}

// Edit navigates to the edit screen.
func (d *Detail) Edit() {
	if d.CanModify() {
		d.deps.Nav.Navigate(nav.EditPath(d.postID.String()), nil)
	}
}

// DismissError hides the inline action error.
func (d *Detail) DismissError() { d.actionErr = "" }

// CanModify reports whether the edit and delete controls are shown.
func (d *Detail) CanModify() bool {
	return d.status == Ready && isAuthor(d.deps.user(), d.post)
}

func (d *Detail) ID() api.ID { return d.postID }
func (d *Detail) Status() Status { return d.status }
func (d *Detail) Post() api.Post { return d.post }
func (d *Detail) Error() string { return d.err }
func (d *Detail) ActionError() string { return d.actionErr }
func (d *Detail) Confirming() bool { return d.confirming }
func (d *Detail) Deleting() bool { return d.deleting }
func (d *Detail) ConfirmPrompt() string { return msgConfirmDeletePost }
