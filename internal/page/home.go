package page

import (
	"context"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/richtext"
)

const msgHomeLoadFailed = "Failed to load posts. Please try again later."

type postsLoadedMsg struct {
	tag   tag
	posts []api.Post
	err   error
}

// Home lists every post with a live search filter.
type Home struct {
	base
	status   Status
	posts    []api.Post
	filtered []api.Post
	search   string
	err      string
}

func NewHome(deps Deps) *Home {
	return &Home{base: newBase(deps)}
}

func (h *Home) Enter() Cmd {
	h.mount()
	return Batch(h.receiveNotice(), h.fetch())
}

func (h *Home) Leave() { h.unmount() }

// Retry re-issues the list request after a failure.
func (h *Home) Retry() Cmd { return h.fetch() }

func (h *Home) fetch() Cmd {
	h.status = nextStatus(h.status, evFetch)
	h.err = ""
	t := h.begin()
	posts := h.deps.Posts
	return func(ctx context.Context) Msg {
		list, err := posts.ListPosts(ctx)
		return postsLoadedMsg{tag: t, posts: list, err: err}
	}
}

func (h *Home) Update(msg Msg) Cmd {
	if h.expire(msg) {
		return nil
	}
	m, ok := msg.(postsLoadedMsg)
	if !ok || !h.current(m.tag) {
		return nil
	}
	if m.err != nil {
		h.status = nextStatus(h.status, evFailed)
		h.err = msgHomeLoadFailed
		return nil
	}
	h.status = nextStatus(h.status, evLoaded)
	h.posts = m.posts
	h.filtered = Filter(h.posts, h.search)
	return nil
}

// SetSearch refilters the loaded posts synchronously.
func (h *Home) SetSearch(term string) {
	h.search = term
	h.filtered = Filter(h.posts, term)
}

// ClearSearch shows every post again.
func (h *Home) ClearSearch() { h.SetSearch("") }

func (h *Home) Status() Status { return h.status }
func (h *Home) Error() string { return h.err }
func (h *Home) Search() string { return h.search }
func (h *Home) Posts() []api.Post { return h.posts }
func (h *Home) Filtered() []api.Post { return h.filtered }
func (h *Home) Authenticated() bool { return h.deps.user() != nil }

// NoPosts reports the true-empty state: nothing exists at all.
func (h *Home) NoPosts() bool {
	return h.status == Ready && len(h.posts) == 0
}

// NoMatch reports that posts exist but the search hides all of them.
func (h *Home) NoMatch() bool {
	return h.status == Ready && len(h.posts) > 0 && h.search != "" && len(h.filtered) == 0
}

// Filter keeps the posts whose title, stripped content or author contain
// term, ignoring case. An empty term keeps everything.
func Filter(posts []api.Post, term string) []api.Post {
	if term == "" {
		out := make([]api.Post, len(posts))
		copy(out, posts)
		return out
	}
	out := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		if richtext.ContainsFold(p.Title, term) ||
			richtext.ContainsFold(richtext.Strip(p.Content), term) ||
			richtext.ContainsFold(p.Author, term) {
			out = append(out, p)
		}
	}
	return out
}
