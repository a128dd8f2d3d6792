package page

import (
	"log"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/nav"
)

// Missing is the screen for unknown locations.
type Missing struct {
	base
	path string
}

func NewMissing(deps Deps, path string) *Missing {
	return &Missing{base: newBase(deps), path: path}
}

func (m *Missing) Enter() Cmd {
	m.mount()
	return nil
}

func (m *Missing) Update(Msg) Cmd { return nil }

func (m *Missing) Leave() { m.unmount() }

func (m *Missing) Path() string { return m.path }

// GoHome leaves the dead end.
func (m *Missing) GoHome() { m.deps.Nav.Navigate(nav.HomePath, nil) }

// Resolve builds the controller for the navigator's current route. Protected
// routes without a session are replaced by the login screen.
func Resolve(deps Deps) Controller {
	route := deps.Nav.Current()
	if route.Protected() && (deps.Session == nil || !deps.Session.IsAuthenticated()) {
		log.Printf("[page] %s needs a session, redirecting to login", route.Path)
		deps.Nav.Replace(nav.LoginPath, nil)
		route = deps.Nav.Current()
	}

	switch route.Name {
	case nav.Home:
		return NewHome(deps)
	case nav.Login:
		return NewLogin(deps)
	case nav.Signup:
		return NewSignup(deps)
	case nav.Post:
		return NewDetail(deps, api.ID(route.Param("id")))
	case nav.Create:
		return NewCreate(deps)
	case nav.Edit:
		return NewEdit(deps, api.ID(route.Param("id")))
	case nav.MyPosts:
		return NewMine(deps)
	case nav.Profile:
		return NewProfile(deps)
	}
	return NewMissing(deps, route.Path)
}
