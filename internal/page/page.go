// Package page holds the screen controllers. A controller is a small state
// machine: Enter starts its work, Update folds in completions, Leave marks it
// unmounted. Side effects are returned as Cmds so any event loop can run them;
// results that arrive for a superseded request or after Leave are dropped.
package page

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/draft"
	"github.com/blogstory/internal/flash"
	"github.com/blogstory/internal/nav"
	"github.com/blogstory/internal/session"
)

// Msg is the result of a Cmd, fed back into Update.
type Msg interface{}

// Cmd performs one blocking action off the event loop.
type Cmd func(ctx context.Context) Msg

// BatchMsg asks the runner to execute several Cmds concurrently.
type BatchMsg []Cmd

// Batch combines cmds, dropping nils.
func Batch(cmds ...Cmd) Cmd {
	valid := make([]Cmd, 0, len(cmds))
	for _, c := range cmds {
		if c != nil {
			valid = append(valid, c)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	}
	return func(context.Context) Msg { return BatchMsg(valid) }
}

// Controller is implemented by every screen.
type Controller interface {
	Enter() Cmd
	Update(msg Msg) Cmd
	Leave()
}

// PostService is the post half of the API client.
type PostService interface {
	ListPosts(ctx context.Context) ([]api.Post, error)
	GetPost(ctx context.Context, id api.ID) (api.Post, error)
	CreatePost(ctx context.Context, d draft.Draft) (api.Post, error)
	UpdatePost(ctx context.Context, id api.ID, d draft.Draft) (api.Post, error)
	DeletePost(ctx context.Context, id api.ID) error
	ListMyPosts(ctx context.Context) ([]api.Post, error)
}

// ProfileService updates account details.
type ProfileService interface {
	UpdateProfile(ctx context.Context, upd api.ProfileUpdate) (api.User, error)
}

// Deps are the collaborators shared by all controllers. They are only
// touched from the event loop, except Session which is safe for any goroutine.
type Deps struct {
	Posts    PostService
	Profiles ProfileService
	Session  *session.Store
	Nav      *nav.Navigator
	// After starts a timer; tests replace it with a channel they control.
	After func(time.Duration) <-chan time.Time
}

func (d Deps) after(dur time.Duration) <-chan time.Time {
	if d.After != nil {
		return d.After(dur)
	}
	return time.After(dur)
}

func (d Deps) user() *api.User {
	if d.Session == nil {
		return nil
	}
	return d.Session.User()
}

// Status is the load state of a screen.
type Status int

const (
	Loading Status = iota
	Ready
	Failed
	NotFound
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	case NotFound:
		return "not-found"
	}
	return "unknown"
}

type event int

const (
	evFetch event = iota
	evLoaded
	evFailed
	evMissing
)

// nextStatus is the transition function shared by every fetching screen.
// Completions only move a screen out of Loading.
func nextStatus(s Status, e event) Status {
	if e == evFetch {
		return Loading
	}
	if s != Loading {
		return s
	}
	switch e {
	case evLoaded:
		return Ready
	case evFailed:
		return Failed
	case evMissing:
		return NotFound
	}
	return s
}

var instanceSeq atomic.Int64

// tag identifies which request of which controller a completion belongs to.
type tag struct {
	owner int64
	seq   int
}

// flashExpiredMsg fires when a notice's display time is over.
type flashExpiredMsg struct {
	owner int64
	seq   int
}

// base carries the lifecycle bookkeeping every controller needs.
type base struct {
	deps    Deps
	id      int64
	seq     int
	mounted bool
	done    chan struct{}
	notice  flash.Slot
}

func newBase(deps Deps) base {
	return base{deps: deps, id: instanceSeq.Add(1)}
}

func (b *base) mount() {
	b.mounted = true
	b.done = make(chan struct{})
}

// unmount drops interest in anything still in flight and stops timers.
func (b *base) unmount() {
	if !b.mounted {
		return
	}
	b.mounted = false
	b.seq++
	close(b.done)
}

// begin starts a request that supersedes the previous one.
func (b *base) begin() tag {
	b.seq++
	return tag{owner: b.id, seq: b.seq}
}

// current reports whether t is the latest request of a mounted controller.
func (b *base) current(t tag) bool {
	return b.mounted && t.owner == b.id && t.seq == b.seq
}

// action tags an independent request that later fetches must not supersede.
func (b *base) action() tag {
	return tag{owner: b.id}
}

// owns reports whether t belongs to this mounted controller, regardless of
// later requests. Independent actions such as per-post deletes use it.
func (b *base) owns(t tag) bool {
	return b.mounted && t.owner == b.id
}

// receiveNotice shows the notice carried by the navigation that led here.
func (b *base) receiveNotice() Cmd {
	if b.deps.Nav == nil {
		return nil
	}
	n, ok := b.deps.Nav.TakeNotice()
	if !ok {
		return nil
	}
	return b.showNotice(n)
}

// showNotice displays n and schedules its expiry.
func (b *base) showNotice(n flash.Notice) Cmd {
	seq := b.notice.Show(n)
	timer := b.deps.after(flash.DisplayDuration)
	owner, done := b.id, b.done
	return func(ctx context.Context) Msg {
		select {
		case <-timer:
			return flashExpiredMsg{owner: owner, seq: seq}
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// expire handles flashExpiredMsg; it reports whether msg was one.
func (b *base) expire(msg Msg) bool {
	m, ok := msg.(flashExpiredMsg)
	if !ok {
		return false
	}
	if b.mounted && m.owner == b.id {
		b.notice.Expire(m.seq)
	}
	return true
}

// Notice returns the notice on display.
func (b *base) Notice() (flash.Notice, bool) { return b.notice.Current() }

// DismissNotice hides the notice before its timer fires.
func (b *base) DismissNotice() { b.notice.Dismiss() }

// isAuthor is the advisory authorship check used to show controls.
func isAuthor(user *api.User, p api.Post) bool {
	return user != nil && user.ID != "" && user.ID == p.AuthorID
}

// errorMessage prefers the server's error field of a 4xx response over fallback.
func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.ServerMessage != "" {
		return apiErr.ServerMessage
	}
	return fallback
}
