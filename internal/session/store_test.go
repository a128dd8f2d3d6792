package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/token"
)

type fakeAuth struct {
	loginErr error
	meErr    error
	meCalls  int
	user     api.User
	token    string
	seenTok  string
	store    *Store
}

func (f *fakeAuth) Login(ctx context.Context, creds api.Credentials) (api.AuthResult, error) {
	if f.loginErr != nil {
		return api.AuthResult{}, f.loginErr
	}
	return api.AuthResult{Token: f.token, User: f.user}, nil
}

func (f *fakeAuth) Register(ctx context.Context, reg api.Registration) (api.AuthResult, error) {
	u := f.user
	u.Username = reg.Username
	return api.AuthResult{Token: f.token, User: u}, nil
}

func (f *fakeAuth) Me(ctx context.Context) (api.User, error) {
	f.meCalls++
	if f.store != nil {
		f.seenTok = f.store.Token()
	}
	if f.meErr != nil {
		return api.User{}, f.meErr
	}
	return f.user, nil
}

func validToken(t *testing.T) string {
	t.Helper()
	raw, err := token.NewIssuer("secret", time.Hour).Issue(1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return raw
}

func expiredToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func TestLoginLogoutNotifiesSubscribers(t *testing.T) {
	auth := &fakeAuth{user: api.User{ID: "1", Username: "ann"}, token: "tok"}
	s := New(auth, "")

	var seen []Session
	cancel := s.Subscribe(func(sess Session) { seen = append(seen, sess) })

	if s.IsAuthenticated() {
		t.Fatalf("new store must be anonymous")
	}
	user, err := s.Login(context.Background(), api.Credentials{Email: "a@x.io", Password: "pw"})
	if err != nil || user.Username != "ann" {
		t.Fatalf("login: %+v %v", user, err)
	}
	if !s.IsAuthenticated() || s.Token() != "tok" || s.User().ID != "1" {
		t.Fatalf("unexpected session %+v", s.Current())
	}

	s.Logout()
	if s.IsAuthenticated() || s.User() != nil {
		t.Fatalf("logout must clear the session")
	}
	if len(seen) != 2 || !seen[0].Authenticated() || seen[1].Authenticated() {
		t.Fatalf("unexpected notifications %+v", seen)
	}

	cancel()
	s.Logout()
	if len(seen) != 2 {
		t.Fatalf("cancelled subscriber was called")
	}
}

func TestFailedLoginKeepsPreviousSession(t *testing.T) {
	auth := &fakeAuth{user: api.User{ID: "1", Username: "ann"}, token: "tok"}
	s := New(auth, "")
	if _, err := s.Login(context.Background(), api.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	auth.loginErr = &api.Error{Kind: api.KindUnauthorized, Message: "Invalid credentials"}
	if _, err := s.Login(context.Background(), api.Credentials{}); err == nil {
		t.Fatalf("expected error")
	}
	if s.User() == nil || s.User().Username != "ann" {
		t.Fatalf("failed login must not clear the session")
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := New(&fakeAuth{user: api.User{ID: "1", Username: "ann"}, token: "tok"}, "")
	_, _ = s.Login(context.Background(), api.Credentials{})

	s.Current().User.Username = "mallory"
	if s.User().Username != "ann" {
		t.Fatalf("readers must not be able to mutate the store")
	}
}

func TestSetUserKeepsToken(t *testing.T) {
	s := New(&fakeAuth{user: api.User{ID: "1", Username: "ann"}, token: "tok"}, "")
	s.SetUser(api.User{ID: "1", Username: "ignored"})
	if s.User() != nil {
		t.Fatalf("SetUser without a session must be a no-op")
	}

	_, _ = s.Login(context.Background(), api.Credentials{})
	s.SetUser(api.User{ID: "1", Username: "anne"})
	if s.User().Username != "anne" || s.Token() != "tok" {
		t.Fatalf("unexpected session %+v", s.Current())
	}
}

func TestPersistAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	tok := validToken(t)
	auth := &fakeAuth{user: api.User{ID: "1", Username: "ann"}, token: tok}

	first := New(auth, path)
	if _, err := first.Login(context.Background(), api.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session file missing: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("session file must be private, got %v", info.Mode().Perm())
	}

	second := New(auth, path)
	auth.store = second
	if err := second.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !second.IsAuthenticated() || auth.seenTok != tok {
		t.Fatalf("restore should confirm the stored token, saw %q", auth.seenTok)
	}

	second.Logout()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("logout should remove the session file, got %v", err)
	}
}

func TestRestoreDropsExpiredTokenWithoutRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	auth := &fakeAuth{user: api.User{ID: "1", Username: "ann"}, token: expiredToken(t)}
	_, _ = New(auth, path).Login(context.Background(), api.Credentials{})

	s := New(auth, path)
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.IsAuthenticated() || auth.meCalls != 0 {
		t.Fatalf("expired token must be dropped locally (me calls=%d)", auth.meCalls)
	}
}

func TestRestoreClearsRejectedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	auth := &fakeAuth{user: api.User{ID: "1", Username: "ann"}, token: validToken(t)}
	_, _ = New(auth, path).Login(context.Background(), api.Credentials{})

	auth.meErr = &api.Error{Kind: api.KindUnauthorized, Status: 401}
	s := New(auth, path)
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("rejected token must clear the session")
	}
}

func TestRestoreKeepsSessionWhenOffline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	auth := &fakeAuth{user: api.User{ID: "1", Username: "ann"}, token: validToken(t)}
	_, _ = New(auth, path).Login(context.Background(), api.Credentials{})

	auth.meErr = &api.Error{Kind: api.KindNetwork}
	s := New(auth, path)
	if err := s.Restore(context.Background()); api.KindOf(err) != api.KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if !s.IsAuthenticated() {
		t.Fatalf("offline restore should keep the stored session")
	}
}

func TestRestoreWithoutFile(t *testing.T) {
	s := New(&fakeAuth{}, filepath.Join(t.TempDir(), "missing.json"))
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("missing file is not an error: %v", err)
	}
}
