package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blogstory/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:post-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, username string) db.User {
	t.Helper()
	user := db.User{Username: username, Email: username + "@example.com", Password: "x"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestPostService_CreateSetsSummaryAndTimestamps(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	user := createUser(t, gdb, "ann")

	post, err := svc.Create(PostInput{
		Title:   "  Hello  ",
		Content: "<p>Hello <strong>world</strong></p><script>alert(1)</script>",
		UserID:  user.ID,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if post.Title != "Hello" {
		t.Fatalf("expected trimmed title, got %q", post.Title)
	}
	if strings.Contains(post.Content, "script") {
		t.Fatalf("expected script to be stripped, got %q", post.Content)
	}
	if post.Summary != "Hello world" {
		t.Fatalf("unexpected summary %q", post.Summary)
	}
	if !post.CreatedAt.Equal(post.UpdatedAt) {
		t.Fatalf("expected created_at == updated_at, got %v and %v", post.CreatedAt, post.UpdatedAt)
	}
	if post.User.Username != "ann" {
		t.Fatalf("expected author preloaded, got %q", post.User.Username)
	}
}

func TestPostService_CreateRejectsInvalidDraft(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	user := createUser(t, gdb, "ann")

	_, err := svc.Create(PostInput{Title: "", Content: "   ", UserID: user.ID})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["title"] != "Title is required" {
		t.Fatalf("unexpected title message %q", verr.Fields["title"])
	}
	if verr.Fields["content"] != "Content is required" {
		t.Fatalf("unexpected content message %q", verr.Fields["content"])
	}

	_, err = svc.Create(PostInput{Title: "t", Content: "<script>x</script>", UserID: user.ID})
	if !errors.As(err, &verr) || verr.Fields["content"] == "" {
		t.Fatalf("expected content rejected after sanitising, got %v", err)
	}
}

func TestPostService_UpdateEnforcesAuthor(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	ann := createUser(t, gdb, "ann")
	bob := createUser(t, gdb, "bob")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	post, err := svc.Create(PostInput{Title: "First", Content: "<p>one</p>", UserID: ann.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if _, err := svc.Update(post.ID, PostInput{Title: "Stolen", Content: "<p>x</p>", UserID: bob.ID}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(9999, PostInput{Title: "t", Content: "<p>x</p>", UserID: ann.ID}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}

	svc.now = func() time.Time { return base.Add(time.Hour) }
	updated, err := svc.Update(post.ID, PostInput{Title: "Second", Content: "<p>two</p>", UserID: ann.ID})
	if err != nil {
		t.Fatalf("update post: %v", err)
	}
	if updated.Title != "Second" || updated.Summary != "two" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updated_at after created_at")
	}
}

func TestPostService_DeleteAndListByUser(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	ann := createUser(t, gdb, "ann")
	bob := createUser(t, gdb, "bob")

	var annPosts []uint
	for i := 0; i < 2; i++ {
		post, err := svc.Create(PostInput{Title: fmt.Sprintf("ann %d", i), Content: "<p>body</p>", UserID: ann.ID})
		if err != nil {
			t.Fatalf("create post: %v", err)
		}
		annPosts = append(annPosts, post.ID)
	}
	if _, err := svc.Create(PostInput{Title: "bob", Content: "<p>body</p>", UserID: bob.ID}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := svc.Delete(annPosts[0], bob.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(annPosts[0], ann.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(annPosts[0]); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected deleted post to be gone, got %v", err)
	}

	mine, err := svc.ListByUser(ann.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != annPosts[1] {
		t.Fatalf("unexpected posts for ann: %+v", mine)
	}

	all, err := svc.ListAll()
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(all))
	}
}
