package handler

import (
	"net/http"
	"testing"
)

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func TestRegisterThenLogin(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newContext(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "newbie",
		"email":    "newbie@example.com",
		"password": "secret1",
	}, 0)
	api.Register(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var reg authResponse
	decode(t, w, &reg)
	if reg.Token == "" || reg.User.Username != "newbie" {
		t.Fatalf("unexpected register response %+v", reg)
	}
	if id, err := api.tokens.Validate(reg.Token); err != nil || id != reg.User.ID {
		t.Fatalf("token does not resolve to the new user: %d, %v", id, err)
	}

	c, w = newContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "newbie@example.com",
		"password": "wrong",
	}, 0)
	api.Login(c)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", w.Code)
	}

	c, w = newContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "newbie@example.com",
		"password": "secret1",
	}, 0)
	api.Login(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var login authResponse
	decode(t, w, &login)
	if login.User.Email != "newbie@example.com" {
		t.Fatalf("unexpected login user %+v", login.User)
	}
}

func TestRegisterDuplicateReportsField(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newContext(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "tester",
		"email":    "fresh@example.com",
		"password": "secret1",
	}, 0)
	api.Register(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &resp)
	if resp.Fields["username"] != "Username is already taken" {
		t.Fatalf("unexpected fields %v", resp.Fields)
	}
}

func TestMeAndUpdateProfile(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newContext(http.MethodGet, "/api/auth/me", nil, 1)
	api.Me(c)
	var me struct {
		User userResponse `json:"user"`
	}
	decode(t, w, &me)
	if me.User.Username != "tester" {
		t.Fatalf("unexpected user %+v", me.User)
	}

	c, w = newContext(http.MethodGet, "/api/auth/me", nil, 99)
	api.Me(c)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a deleted account, got %d", w.Code)
	}

	c, w = newContext(http.MethodPut, "/api/auth/profile", map[string]string{
		"username": "renamed",
		"email":    "tester@example.com",
	}, 1)
	api.UpdateProfile(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var updated struct {
		Message string       `json:"message"`
		User    userResponse `json:"user"`
	}
	decode(t, w, &updated)
	if updated.User.Username != "renamed" {
		t.Fatalf("unexpected username %q", updated.User.Username)
	}
}
