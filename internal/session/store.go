// Package session holds the process-wide authentication state. Only auth
// actions write it; every page controller reads it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blogstory/internal/api"
	"github.com/blogstory/internal/token"
)

// Authenticator is the subset of the API client the store drives.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (api.AuthResult, error)
	Register(ctx context.Context, reg api.Registration) (api.AuthResult, error)
	Me(ctx context.Context) (api.User, error)
}

// Session is a snapshot of the authentication state. A nil User is anonymous.
type Session struct {
	User  *api.User `json:"user"`
	Token string    `json:"token"`
}

// Authenticated reports whether the snapshot carries a user.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Store is safe for concurrent use. Writes are last-write-wins.
type Store struct {
	auth Authenticator
	path string
	now  func() time.Time

	mu      sync.RWMutex
	current Session

	subMu  sync.Mutex
	subs   map[int]func(Session)
	nextID int
}

// New returns an anonymous store. path is where the session is persisted;
// empty disables persistence.
func New(auth Authenticator, path string) *Store {
	return &Store{
		auth: auth,
		path: path,
		now:  time.Now,
		subs: make(map[int]func(Session)),
	}
}

// SetAuthenticator wires the client after construction; the client itself
// reads tokens from the store.
func (s *Store) SetAuthenticator(auth Authenticator) {
	s.mu.Lock()
	s.auth = auth
	s.mu.Unlock()
}

// Current returns a copy of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.current)
}

// User returns the signed-in user, or nil.
func (s *Store) User() *api.User {
	return s.Current().User
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	return s.Current().Authenticated()
}

// Login authenticates and replaces the session on success. On failure the
// previous session is left untouched.
func (s *Store) Login(ctx context.Context, creds api.Credentials) (api.User, error) {
	res, err := s.authenticator().Login(ctx, creds)
	if err != nil {
		return api.User{}, err
	}
	s.set(Session{User: &res.User, Token: res.Token})
	log.Printf("[session] signed in as %s", res.User.Username)
	return res.User, nil
}

// Register creates an account and signs it in.
func (s *Store) Register(ctx context.Context, reg api.Registration) (api.User, error) {
	res, err := s.authenticator().Register(ctx, reg)
	if err != nil {
		return api.User{}, err
	}
	s.set(Session{User: &res.User, Token: res.Token})
	log.Printf("[session] registered %s", res.User.Username)
	return res.User, nil
}

// Logout clears the session.
func (s *Store) Logout() {
	s.set(Session{})
	log.Printf("[session] signed out")
}

// SetUser replaces the user after a profile edit, keeping the token.
func (s *Store) SetUser(user api.User) {
	cur := s.Current()
	if cur.Token == "" {
		return
	}
	cur.User = &user
	s.set(cur)
}

// Subscribe calls fn after every change. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Session)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Restore loads the persisted session. Expired tokens are discarded without
// a request; otherwise the token is confirmed with the server and cleared
// when the server rejects it. When the server cannot be reached the persisted
// session is kept and the error returned.
func (s *Store) Restore(ctx context.Context) error {
	saved, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if !saved.Authenticated() {
		return nil
	}

	if exp, ok := token.ExpiresAt(saved.Token); ok && !exp.After(s.now()) {
		log.Printf("[session] stored token expired at %s", exp.Format(time.RFC3339))
		s.set(Session{})
		return nil
	}

	s.setQuiet(saved)
	user, err := s.authenticator().Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			log.Printf("[session] stored token rejected")
			s.set(Session{})
			return nil
		}
		s.notify(saved)
		return err
	}
	s.set(Session{User: &user, Token: saved.Token})
	return nil
}

func (s *Store) authenticator() Authenticator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

func (s *Store) set(next Session) {
	s.setQuiet(next)
	if err := s.persist(next); err != nil {
		log.Printf("[session] persist failed: %v", err)
	}
	s.notify(next)
}

func (s *Store) setQuiet(next Session) {
	s.mu.Lock()
	s.current = copySession(next)
	s.mu.Unlock()
}

func (s *Store) notify(snapshot Session) {
	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(copySession(snapshot))
	}
}

func (s *Store) persist(sess Session) error {
	if s.path == "" {
		return nil
	}
	if !sess.Authenticated() {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) load() (Session, error) {
	if s.path == "" {
		return Session{}, os.ErrNotExist
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session file: %w", err)
	}
	return sess, nil
}

func copySession(s Session) Session {
	if s.User == nil {
		return s
	}
	u := *s.User
	return Session{User: &u, Token: s.Token}
}
