// Package nav models the client's routes and its navigation history. Notices
// handed to Navigate ride along to the destination through a flash.Queue.
package nav

import (
	"net/url"
	"strings"

	"github.com/blogstory/internal/flash"
)

// Name identifies a screen.
type Name string

const (
	Home     Name = "home"
	Login    Name = "login"
	Signup   Name = "signup"
	Post     Name = "post"
	Create   Name = "create"
	Edit     Name = "edit"
	MyPosts  Name = "my-posts"
	Profile  Name = "profile"
	NotFound Name = "not-found"
)

const (
	HomePath    = "/"
	LoginPath   = "/login"
	SignupPath  = "/signup"
	CreatePath  = "/create"
	MyPostsPath = "/my-posts"
	ProfilePath = "/profile"
)

// Route is a parsed location.
type Route struct {
	Name   Name
	Path   string
	Params map[string]string
}

// Param returns the named path parameter.
func (r Route) Param(key string) string {
	return r.Params[key]
}

// Protected reports whether the screen needs a signed-in user.
func (r Route) Protected() bool {
	switch r.Name {
	case Create, Edit, MyPosts, Profile:
		return true
	}
	return false
}

// PostPath is the detail location of a post.
func PostPath(id string) string { return "/post/" + url.PathEscape(id) }

// EditPath is the edit location of a post.
func EditPath(id string) string { return "/edit/" + url.PathEscape(id) }

// Parse maps a path to its route. Unknown paths yield the NotFound route.
func Parse(path string) Route {
	clean := "/" + strings.Trim(strings.TrimSpace(path), "/")
	route := Route{Path: clean, Params: map[string]string{}}

	switch clean {
	case HomePath:
		route.Name = Home
		return route
	case LoginPath:
		route.Name = Login
		return route
	case SignupPath:
		route.Name = Signup
		return route
	case CreatePath:
		route.Name = Create
		return route
	case MyPostsPath:
		route.Name = MyPosts
		return route
	case ProfilePath:
		route.Name = Profile
		return route
	}

	segments := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if len(segments) == 2 && segments[1] != "" {
		id, err := url.PathUnescape(segments[1])
		if err == nil {
			switch segments[0] {
			case "post":
				route.Name = Post
				route.Params["id"] = id
				return route
			case "edit":
				route.Name = Edit
				route.Params["id"] = id
				return route
			}
		}
	}

	route.Name = NotFound
	return route
}

// Navigator keeps the history stack. It is driven from the event loop only.
type Navigator struct {
	queue   *flash.Queue
	history []Route
	version int
}

// New starts a navigator at path.
func New(path string) *Navigator {
	return &Navigator{
		queue:   flash.NewQueue(),
		history: []Route{Parse(path)},
	}
}

// Navigate pushes path. A non-nil notice is delivered to the destination once.
func (n *Navigator) Navigate(path string, notice *flash.Notice) Route {
	route := Parse(path)
	n.carry(route, notice)
	n.history = append(n.history, route)
	n.version++
	return route
}

// Replace swaps the current entry for path, as redirects do.
func (n *Navigator) Replace(path string, notice *flash.Notice) Route {
	route := Parse(path)
	n.carry(route, notice)
	n.history[len(n.history)-1] = route
	n.version++
	return route
}

// Back pops one entry. It reports false at the first entry. Notices are never
// re-delivered: they were taken when the entry was first shown.
func (n *Navigator) Back() bool {
	if len(n.history) <= 1 {
		return false
	}
	n.history = n.history[:len(n.history)-1]
	n.version++
	return true
}

// Current returns the route on top of the history.
func (n *Navigator) Current() Route {
	return n.history[len(n.history)-1]
}

// TakeNotice consumes the notice carried to the current route.
func (n *Navigator) TakeNotice() (flash.Notice, bool) {
	return n.queue.Take(n.Current().Path)
}

// Version increases on every transition; renderers compare it to decide
// whether to mount a new screen.
func (n *Navigator) Version() int {
	return n.version
}

// Depth returns the number of history entries.
func (n *Navigator) Depth() int {
	return len(n.history)
}

func (n *Navigator) carry(route Route, notice *flash.Notice) {
	// A notice only travels with its own transition.
	n.queue.Take(route.Path)
	if notice != nil {
		n.queue.Put(route.Path, *notice)
	}
}
