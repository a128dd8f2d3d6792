package page

import (
	"context"
	"strings"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/flash"
)

const (
	msgProfileUpdated = "Profile updated!"
	msgProfileFailed  = "Failed to update"
)

type profileSavedMsg struct {
	tag  tag
	user api.User
	err  error
}

// Profile edits the username and email of the signed-in user.
type Profile struct {
	base
	username string
	email    string
	saving   bool
}

func NewProfile(deps Deps) *Profile {
	return &Profile{base: newBase(deps)}
}

func (p *Profile) Enter() Cmd {
	p.mount()
	if u := p.deps.user(); u != nil {
		p.username = u.Username
		p.email = u.Email
	}
	return nil
}

func (p *Profile) Leave() { p.unmount() }

func (p *Profile) SetUsername(v string) { p.username = v }

func (p *Profile) SetEmail(v string) { p.email = v }

func (p *Profile) Submit() Cmd {
	if p.saving {
		return nil
	}
	p.saving = true
	t := p.begin()
	svc := p.deps.Profiles
	upd := api.ProfileUpdate{
		Username: strings.TrimSpace(p.username),
		Email:    strings.TrimSpace(p.email),
	}
	return func(ctx context.Context) Msg {
		u, err := svc.UpdateProfile(ctx, upd)
		return profileSavedMsg{tag: t, user: u, err: err}
	}
}

func (p *Profile) Update(msg Msg) Cmd {
	if p.expire(msg) {
		return nil
	}
	m, ok := msg.(profileSavedMsg)
	if !ok || !p.current(m.tag) {
		return nil
	}
	p.saving = false
	if m.err != nil {
		return p.showNotice(*flash.NewError(msgProfileFailed))
	}
	p.deps.Session.SetUser(m.user)
	p.username = m.user.Username
	p.email = m.user.Email
	return p.showNotice(*flash.NewSuccess(msgProfileUpdated))
}

func (p *Profile) Username() string { return p.username }
func (p *Profile) Email() string { return p.email }
func (p *Profile) Saving() bool { return p.saving }
