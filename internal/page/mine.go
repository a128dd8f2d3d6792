package page

import (
	"context"
	"fmt"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/flash"
	"github.com/blogstory/internal/nav"
)

const msgMineLoadFailed = "Failed to load your posts. Please try again later."

type minePostDeletedMsg struct {
	tag tag
	id  api.ID
	err error
}

// Mine lists the session user's posts. Each post deletes independently.
type Mine struct {
	base
	status   Status
	posts    []api.Post
	err      string
	deleting map[api.ID]bool
	pending  *api.Post
}

func NewMine(deps Deps) *Mine {
	return &Mine{base: newBase(deps), deleting: make(map[api.ID]bool)}
}

func (m *Mine) Enter() Cmd {
	m.mount()
	return Batch(m.receiveNotice(), m.fetch())
}

func (m *Mine) Leave() { m.unmount() }

// Retry reloads after a failure.
func (m *Mine) Retry() Cmd { return m.fetch() }

func (m *Mine) fetch() Cmd {
	m.status = nextStatus(m.status, evFetch)
	m.err = ""
	t := m.begin()
	posts := m.deps.Posts
	return func(ctx context.Context) Msg {
		list, err := posts.ListMyPosts(ctx)
		return postsLoadedMsg{tag: t, posts: list, err: err}
	}
}

func (m *Mine) Update(msg Msg) Cmd {
	if m.expire(msg) {
		return nil
	}
	switch msg := msg.(type) {
	case postsLoadedMsg:
		if !m.current(msg.tag) {
			return nil
		}
		if msg.err != nil {
			m.status = nextStatus(m.status, evFailed)
			m.err = msgMineLoadFailed
			return nil
		}
		m.status = nextStatus(m.status, evLoaded)
		m.posts = msg.posts
	case minePostDeletedMsg:
		if !m.owns(msg.tag) {
			return nil
		}
		delete(m.deleting, msg.id)
		if msg.err != nil {
			m.err = msgDeleteFailed
			return nil
		}
		m.remove(msg.id)
		return m.showNotice(*flash.NewSuccess(msgPostDeleted))
	}
	return nil
}

func (m *Mine) remove(id api.ID) {
	kept := m.posts[:0:0]
	for _, p := range m.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.posts = kept
}

// RequestDelete asks for confirmation before deleting id. Posts of other
// authors are ignored.
func (m *Mine) RequestDelete(id api.ID) {
	if m.deleting[id] {
		return
	}
	if p, ok := m.find(id); ok && m.CanModify(p) {
		m.pending = &p
	}
}

func (m *Mine) find(id api.ID) (api.Post, bool) {
	for _, p := range m.posts {
		if p.ID == id {
			return p, true
		}
	}
	return api.Post{}, false
}

// CancelDelete closes the confirmation.
func (m *Mine) CancelDelete() { m.pending = nil }

// ConfirmDelete starts deleting the post awaiting confirmation. Other posts
// keep their controls.
func (m *Mine) ConfirmDelete() Cmd {
	if m.pending == nil {
		return nil
	}
	p := *m.pending
	m.pending = nil
	id := p.ID
	if m.deleting[id] || !m.CanModify(p) {
		return nil
	}
	m.deleting[id] = true
	t := m.action()
	posts := m.deps.Posts
	return func(ctx context.Context) Msg {
		return minePostDeletedMsg{tag: t, id: id, err: posts.DeletePost(ctx, id)}
	}
}

// Open navigates to a post; Edit to its edit screen.
func (m *Mine) Open(id api.ID) { m.deps.Nav.Navigate(nav.PostPath(id.String()), nil) }

func (m *Mine) Edit(id api.ID) {
	if p, ok := m.find(id); ok && m.CanModify(p) {
		m.deps.Nav.Navigate(nav.EditPath(id.String()), nil)
	}
}

// DismissError hides the page error.
func (m *Mine) DismissError() { m.err = "" }

// Confirming returns the post awaiting delete confirmation.
func (m *Mine) Confirming() (api.Post, bool) {
	if m.pending == nil {
		return api.Post{}, false
	}
	return *m.pending, true
}

// ConfirmPrompt names the post in the confirmation question.
func (m *Mine) ConfirmPrompt() string {
	if m.pending == nil {
		return ""
	}
	return fmt.Sprintf("Are you sure you want to delete %q? This action cannot be undone.", m.pending.Title)
}

// Deleting reports whether a delete of id is in flight.
func (m *Mine) Deleting(id api.ID) bool { return m.deleting[id] }

// CanModify is the advisory authorship check for a listed post.
func (m *Mine) CanModify(p api.Post) bool { return isAuthor(m.deps.user(), p) }

// Username is shown next to the post count.
func (m *Mine) Username() string {
	if u := m.deps.user(); u != nil {
		return u.Username
	}
	return ""
}

func (m *Mine) Status() Status { return m.status }
func (m *Mine) Posts() []api.Post { return m.posts }
func (m *Mine) Count() int { return len(m.posts) }
func (m *Mine) Error() string { return m.err }
