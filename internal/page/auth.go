package page

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/draft"
	"github.com/blogstory/internal/flash"
	"github.com/blogstory/internal/nav"
)

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"

	minUsernameLength = 3
	maxUsernameLength = 20
	minPasswordLength = 6
)

const (
	msgLoginFailed    = "Login failed. Please try again."
	msgSignupFailed   = "Registration failed. Please try again."
	msgEmailRequired  = "Email is required"
	msgEmailInvalid   = "Please enter a valid email address"
	msgPasswordNeeded = "Password is required"
	msgPasswordShort  = "Password must be at least 6 characters"
	msgUsernameLength = "Username must be between 3 and 20 characters"
)

type authDoneMsg struct {
	tag  tag
	user api.User
	err  error
}

// credentialsForm holds what the auth screens have in common.
type credentialsForm struct {
	email    string
	password string
	fields   draft.FieldErrors
	general  string
	busy     bool
}

func (f *credentialsForm) SetEmail(v string) {
	f.email = v
	f.fields.Clear(FieldEmail)
}

func (f *credentialsForm) SetPassword(v string) {
	f.password = v
	f.fields.Clear(FieldPassword)
}

func (f *credentialsForm) checkCredentials(errs draft.FieldErrors, minPassword int) {
	email := strings.TrimSpace(f.email)
	switch {
	case email == "":
		errs[FieldEmail] = msgEmailRequired
	case !strings.Contains(email, "@"):
		errs[FieldEmail] = msgEmailInvalid
	}
	switch {
	case f.password == "":
		errs[FieldPassword] = msgPasswordNeeded
	case utf8.RuneCountInString(f.password) < minPassword:
		errs[FieldPassword] = msgPasswordShort
	}
}

func (f *credentialsForm) Email() string { return f.email }
func (f *credentialsForm) Password() string { return f.password }
func (f *credentialsForm) FieldErrors() draft.FieldErrors { return f.fields }
func (f *credentialsForm) GeneralError() string { return f.general }
func (f *credentialsForm) Busy() bool { return f.busy }

// Login signs an existing user in.
type Login struct {
	base
	credentialsForm
}

func NewLogin(deps Deps) *Login {
	return &Login{base: newBase(deps)}
}

func (l *Login) Enter() Cmd {
	l.mount()
	return l.receiveNotice()
}

func (l *Login) Leave() { l.unmount() }

func (l *Login) Submit() Cmd {
	if l.busy {
		return nil
	}
	errs := draft.FieldErrors{}
	l.checkCredentials(errs, 1)
	if errs.Any() {
		l.fields = errs
		return nil
	}
	l.fields = nil
	l.general = ""
	l.busy = true
	t := l.begin()
	store := l.deps.Session
	creds := api.Credentials{Email: strings.TrimSpace(l.email), Password: l.password}
	return func(ctx context.Context) Msg {
		u, err := store.Login(ctx, creds)
		return authDoneMsg{tag: t, user: u, err: err}
	}
}

func (l *Login) Update(msg Msg) Cmd {
	if l.expire(msg) {
		return nil
	}
	m, ok := msg.(authDoneMsg)
	if !ok || !l.current(m.tag) {
		return nil
	}
	l.busy = false
	if m.err != nil {
		l.general = errorMessage(m.err, msgLoginFailed)
		l.password = ""
		return nil
	}
	l.deps.Nav.Navigate(nav.HomePath, flash.NewSuccess(fmt.Sprintf("Welcome back, %s!", m.user.Username)))
	return nil
}

// GoSignup switches to the registration screen.
func (l *Login) GoSignup() { l.deps.Nav.Navigate(nav.SignupPath, nil) }

// Signup registers a new account and signs it in.
type Signup struct {
	base
	credentialsForm
	username string
}

func NewSignup(deps Deps) *Signup {
	return &Signup{base: newBase(deps)}
}

func (s *Signup) Enter() Cmd {
	s.mount()
	return nil
}

func (s *Signup) Leave() { s.unmount() }

func (s *Signup) SetUsername(v string) {
	s.username = v
	s.fields.Clear(FieldUsername)
}

func (s *Signup) Username() string { return s.username }

func (s *Signup) Submit() Cmd {
	if s.busy {
		return nil
	}
	errs := draft.FieldErrors{}
	if n := utf8.RuneCountInString(strings.TrimSpace(s.username)); n < minUsernameLength || n > maxUsernameLength {
		errs[FieldUsername] = msgUsernameLength
	}
	s.checkCredentials(errs, minPasswordLength)
	if errs.Any() {
		s.fields = errs
		return nil
	}
	s.fields = nil
	s.general = ""
	s.busy = true
	t := s.begin()
	store := s.deps.Session
	reg := api.Registration{
		Username: strings.TrimSpace(s.username),
		Email:    strings.TrimSpace(s.email),
		Password: s.password,
	}
	return func(ctx context.Context) Msg {
		u, err := store.Register(ctx, reg)
		return authDoneMsg{tag: t, user: u, err: err}
	}
}

func (s *Signup) Update(msg Msg) Cmd {
	m, ok := msg.(authDoneMsg)
	if !ok || !s.current(m.tag) {
		return nil
	}
	s.busy = false
	if m.err != nil {
		s.general = errorMessage(m.err, msgSignupFailed)
		return nil
	}
	s.deps.Nav.Navigate(nav.HomePath, flash.NewSuccess(fmt.Sprintf("Account created. Welcome, %s!", m.user.Username)))
	return nil
}

// GoLogin switches to the login screen.
func (s *Signup) GoLogin() { s.deps.Nav.Navigate(nav.LoginPath, nil) }

// Logout clears the session and returns home.
func Logout(deps Deps) {
	deps.Session.Logout()
	deps.Nav.Navigate(nav.HomePath, nil)
}
