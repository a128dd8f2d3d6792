package page

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/draft"
	"github.com/blogstory/internal/nav"
	"github.com/blogstory/internal/session"
)

var (
	errNetwork  = &api.Error{Kind: api.KindNetwork, Message: "Unable to reach the server.", Err: errors.New("dial tcp: refused")}
	errNotFound = &api.Error{Kind: api.KindNotFound, Status: 404, Message: "Post not found"}
	errServer   = &api.Error{Kind: api.KindServer, Status: 500, Message: "boom"}
)

// fakePosts is an in-memory PostService recording every call.
type fakePosts struct {
	mu      sync.Mutex
	posts   map[api.ID]api.Post
	order   []api.ID
	nextID  int
	listErr error
	getErr  error
	saveErr error
	delErr  map[api.ID]error
	calls   map[string]int
}

func newFakePosts(posts ...api.Post) *fakePosts {
	f := &fakePosts{
		posts:  make(map[api.ID]api.Post),
		delErr: make(map[api.ID]error),
		calls:  make(map[string]int),
		nextID: 100,
	}
	for _, p := range posts {
		f.posts[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return f
}

func (f *fakePosts) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakePosts) list(filter func(api.Post) bool) []api.Post {
	out := []api.Post{}
	for _, id := range f.order {
		if p, ok := f.posts[id]; ok && filter(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakePosts) ListPosts(ctx context.Context) ([]api.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list(func(api.Post) bool { return true }), nil
}

func (f *fakePosts) GetPost(ctx context.Context, id api.ID) (api.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["get"]++
	if f.getErr != nil {
		return api.Post{}, f.getErr
	}
	p, ok := f.posts[id]
	if !ok {
		return api.Post{}, errNotFound
	}
	return p, nil
}

func (f *fakePosts) CreatePost(ctx context.Context, d draft.Draft) (api.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.saveErr != nil {
		return api.Post{}, f.saveErr
	}
	f.nextID++
	p := api.Post{ID: api.ID(strconv.Itoa(f.nextID)), Title: d.Title, Content: d.Content, AuthorID: "1", Author: "ann"}
	f.posts[p.ID] = p
	f.order = append(f.order, p.ID)
	return p, nil
}

func (f *fakePosts) UpdatePost(ctx context.Context, id api.ID, d draft.Draft) (api.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.saveErr != nil {
		return api.Post{}, f.saveErr
	}
	p := f.posts[id]
	p.Title, p.Content = d.Title, d.Content
	f.posts[id] = p
	return p, nil
}

func (f *fakePosts) DeletePost(ctx context.Context, id api.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if err := f.delErr[id]; err != nil {
		return err
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePosts) ListMyPosts(ctx context.Context) ([]api.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["mine"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list(func(p api.Post) bool { return p.AuthorID == "1" }), nil
}

// fakeAuth signs everyone in as the user it holds.
type fakeAuth struct {
	user api.User
	err  error
}

func (a *fakeAuth) Login(ctx context.Context, creds api.Credentials) (api.AuthResult, error) {
	if a.err != nil {
		return api.AuthResult{}, a.err
	}
	return api.AuthResult{Token: "tok", User: a.user}, nil
}

func (a *fakeAuth) Register(ctx context.Context, reg api.Registration) (api.AuthResult, error) {
	if a.err != nil {
		return api.AuthResult{}, a.err
	}
	u := a.user
	u.Username = reg.Username
	return api.AuthResult{Token: "tok", User: u}, nil
}

func (a *fakeAuth) Me(ctx context.Context) (api.User, error) { return a.user, nil }

type fakeProfiles struct {
	err error
}

func (p *fakeProfiles) UpdateProfile(ctx context.Context, upd api.ProfileUpdate) (api.User, error) {
	if p.err != nil {
		return api.User{}, p.err
	}
	return api.User{ID: "1", Username: upd.Username, Email: upd.Email}, nil
}

// fakeClock hands out timers that only fire when told to.
type fakeClock struct {
	timers []chan time.Time
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.timers = append(c.timers, ch)
	return ch
}

func (c *fakeClock) fire() {
	for _, ch := range c.timers {
		ch <- time.Now()
	}
	c.timers = nil
}

type env struct {
	posts *fakePosts
	auth  *fakeAuth
	store *session.Store
	nav   *nav.Navigator
	clock *fakeClock
	deps  Deps
}

func newEnv(t *testing.T, start string, posts ...api.Post) *env {
	t.Helper()
	e := &env{
		posts: newFakePosts(posts...),
		auth:  &fakeAuth{user: api.User{ID: "1", Username: "ann", Email: "ann@example.com"}},
		nav:   nav.New(start),
		clock: &fakeClock{},
	}
	e.store = session.New(e.auth, "")
	e.deps = Deps{
		Posts:    e.posts,
		Profiles: &fakeProfiles{},
		Session:  e.store,
		Nav:      e.nav,
		After:    e.clock.After,
	}
	return e
}

func (e *env) signIn(t *testing.T) {
	t.Helper()
	if _, err := e.store.Login(context.Background(), api.Credentials{Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatalf("sign in: %v", err)
	}
}

// runner executes commands the way an event loop would, feeding results back
// into the controller. Commands still blocked after a short wait (timers) are
// parked until settle is called.
type runner struct {
	t      *testing.T
	c      Controller
	parked []chan Msg
}

func newRunner(t *testing.T, c Controller) *runner {
	return &runner{t: t, c: c}
}

func (r *runner) enter() {
	r.run(r.c.Enter())
}

func (r *runner) run(cmd Cmd) {
	queue := []Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		out := make(chan Msg, 1)
		go func(c Cmd) { out <- c(context.Background()) }(next)
		select {
		case msg := <-out:
			queue = append(queue, r.deliver(msg)...)
		case <-time.After(50 * time.Millisecond):
			r.parked = append(r.parked, out)
		}
	}
}

func (r *runner) deliver(msg Msg) []Cmd {
	switch m := msg.(type) {
	case nil:
		return nil
	case BatchMsg:
		return []Cmd(m)
	}
	if cmd := r.c.Update(msg); cmd != nil {
		return []Cmd{cmd}
	}
	return nil
}

// settle delivers whatever the parked commands produced since.
func (r *runner) settle() {
	parked := r.parked
	r.parked = nil
	for _, out := range parked {
		select {
		case msg := <-out:
			for _, cmd := range r.deliver(msg) {
				r.run(cmd)
			}
		case <-time.After(200 * time.Millisecond):
			r.parked = append(r.parked, out)
		}
	}
}

func post(id, title, content, author, authorID string) api.Post {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return api.Post{
		ID:        api.ID(id),
		Title:     title,
		Content:   content,
		Summary:   content,
		Author:    author,
		AuthorID:  api.ID(authorID),
		CreatedAt: created,
		UpdatedAt: created,
	}
}
