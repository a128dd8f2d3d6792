package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/blogstory/internal/db"
)

func TestSeedIsIdempotent(t *testing.T) {
	gdb, err := db.Open(db.Options{
		Path:   fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano()),
		Silent: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	created, err := seed(gdb)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if created != len(demoPosts) {
		t.Fatalf("expected %d posts, got %d", len(demoPosts), created)
	}

	created, err = seed(gdb)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected second run to add nothing, got %d", created)
	}

	var users int64
	gdb.Model(&db.User{}).Count(&users)
	if users != int64(len(demoUsers)) {
		t.Fatalf("expected %d users, got %d", len(demoUsers), users)
	}

	var post db.Post
	if err := gdb.Where("title = ?", "Writing posts in markdown").First(&post).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if post.Summary == "" || post.Content == post.Summary {
		t.Fatalf("expected rendered content with a plain summary, got %+v", post)
	}
}
