package page

import (
	"testing"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/flash"
	"github.com/blogstory/internal/nav"
)

func TestLoginValidatesThenSignsIn(t *testing.T) {
	e := newEnv(t, "/login")
	l := NewLogin(e.deps)
	r := newRunner(t, l)
	r.enter()

	r.run(l.Submit())
	if !l.FieldErrors().Has(FieldEmail) || !l.FieldErrors().Has(FieldPassword) {
		t.Fatalf("expected both fields to be required, got %+v", l.FieldErrors())
	}

	l.SetEmail("ann@example.com")
	l.SetPassword("secret")
	r.run(l.Submit())
	if !e.store.IsAuthenticated() {
		t.Fatalf("expected a session")
	}
	if e.nav.Current().Name != nav.Home {
		t.Fatalf("expected home after login")
	}
	if n, _ := e.nav.TakeNotice(); n.Message != "Welcome back, ann!" {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	e := newEnv(t, "/login")
	e.auth.err = &api.Error{Kind: api.KindUnauthorized, Status: 401, Message: "Invalid credentials", ServerMessage: "Invalid credentials"}
	l := NewLogin(e.deps)
	r := newRunner(t, l)
	r.enter()

	l.SetEmail("ann@example.com")
	l.SetPassword("wrong")
	r.run(l.Submit())
	if l.GeneralError() != "Invalid credentials" || l.Busy() || l.Password() != "" {
		t.Fatalf("unexpected state %q busy=%v", l.GeneralError(), l.Busy())
	}
	if e.nav.Current().Name != nav.Login {
		t.Fatalf("failed login must stay on the form")
	}
}

func TestSignupRules(t *testing.T) {
	e := newEnv(t, "/signup")
	s := NewSignup(e.deps)
	r := newRunner(t, s)
	r.enter()

	s.SetUsername("ab")
	s.SetEmail("not-an-email")
	s.SetPassword("12345")
	r.run(s.Submit())
	errs := s.FieldErrors()
	if errs[FieldUsername] != "Username must be between 3 and 20 characters" ||
		errs[FieldEmail] != "Please enter a valid email address" ||
		errs[FieldPassword] != "Password must be at least 6 characters" {
		t.Fatalf("unexpected errors %+v", errs)
	}

	s.SetUsername("newbie")
	s.SetEmail("new@example.com")
	s.SetPassword("123456")
	r.run(s.Submit())
	if e.store.User() == nil || e.store.User().Username != "newbie" {
		t.Fatalf("expected the new account to be signed in")
	}
	if n, _ := e.nav.TakeNotice(); n.Message != "Account created. Welcome, newbie!" {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestLogout(t *testing.T) {
	e := newEnv(t, "/my-posts")
	e.signIn(t)
	Logout(e.deps)
	if e.store.IsAuthenticated() || e.nav.Current().Name != nav.Home {
		t.Fatalf("logout should clear the session and go home")
	}
}

func TestProfileUpdate(t *testing.T) {
	e := newEnv(t, "/profile")
	e.signIn(t)
	p := NewProfile(e.deps)
	r := newRunner(t, p)
	r.enter()
	if p.Username() != "ann" || p.Email() != "ann@example.com" {
		t.Fatalf("form should start from the session user")
	}

	p.SetUsername("anne")
	r.run(p.Submit())
	if e.store.User().Username != "anne" {
		t.Fatalf("session user should be replaced")
	}
	if n, ok := p.Notice(); !ok || n.Message != "Profile updated!" {
		t.Fatalf("unexpected notice %+v", n)
	}

	e.deps.Profiles.(*fakeProfiles).err = errServer
	r.run(p.Submit())
	if n, _ := p.Notice(); n.Kind != flash.Error || n.Message != "Failed to update" {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestResolve(t *testing.T) {
	e := newEnv(t, "/")
	tests := []struct {
		path string
		want interface{}
	}{
		{path: "/", want: &Home{}},
		{path: "/login", want: &Login{}},
		{path: "/signup", want: &Signup{}},
		{path: "/post/5", want: &Detail{}},
		{path: "/nope", want: &Missing{}},
	}
	for _, tt := range tests {
		e.nav.Navigate(tt.path, nil)
		got := Resolve(e.deps)
		if typeName(got) != typeName(tt.want) {
			t.Fatalf("%s resolved to %T", tt.path, got)
		}
	}

	e.nav.Navigate("/create", nil)
	if _, ok := Resolve(e.deps).(*Login); !ok {
		t.Fatalf("protected route without a session should resolve to login")
	}
	if e.nav.Current().Name != nav.Login {
		t.Fatalf("redirect should replace the route, at %s", e.nav.Current().Path)
	}

	e.signIn(t)
	for path, want := range map[string]interface{}{
		"/create":   &Create{},
		"/edit/1":   &Edit{},
		"/my-posts": &Mine{},
		"/profile":  &Profile{},
	} {
		e.nav.Navigate(path, nil)
		if got := Resolve(e.deps); typeName(got) != typeName(want) {
			t.Fatalf("%s resolved to %T", path, got)
		}
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *Home:
		return "home"
	case *Login:
		return "login"
	case *Signup:
		return "signup"
	case *Detail:
		return "detail"
	case *Create:
		return "create"
	case *Edit:
		return "edit"
	case *Mine:
		return "mine"
	case *Profile:
		return "profile"
	case *Missing:
		return "missing"
	}
	return "unknown"
}
