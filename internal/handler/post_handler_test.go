package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/blogstory/internal/db"
	"github.com/blogstory/internal/middleware"
	"github.com/blogstory/internal/token"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) (*API, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	for _, name := range []string{"tester", "other"} {
		if err := gdb.Create(&db.User{Username: name, Email: name + "@example.com", Password: "hashed"}).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	return NewAPI(gdb, token.NewIssuer("test-secret", time.Hour)), func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// newContext builds a test context, optionally as the user with userID.
func newContext(method, target string, payload interface{}, userID uint) (*gin.Context, *httptest.ResponseRecorder) {
	var body *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != 0 {
		c.Set(middleware.UserIDKey, userID)
	}
	return c, w
}

func withID(c *gin.Context, id uint) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(uint64(id), 10)}}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestCreatePostReturnsEnvelope(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newContext(http.MethodPost, "/api/posts", map[string]string{
		"title":   "Test Post",
		"content": "<p>Content</p>",
	}, 1)
	api.CreatePost(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", w.Code, w.Body.String())
	}

	var resp struct {
		Message string       `json:"message"`
		Post    postResponse `json:"post"`
	}
	decode(t, w, &resp)
	if resp.Message != "Post created successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Post.Author != "tester" || resp.Post.AuthorID != 1 {
		t.Fatalf("unexpected author %q/%d", resp.Post.Author, resp.Post.AuthorID)
	}
	if !resp.Post.CreatedAt.Equal(resp.Post.UpdatedAt) {
		t.Fatalf("expected equal timestamps on create")
	}
}

func TestCreatePostValidationFields(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newContext(http.MethodPost, "/api/posts", map[string]string{"title": "", "content": ""}, 1)
	api.CreatePost(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &resp)
	if resp.Fields["title"] != "Title is required" || resp.Fields["content"] != "Content is required" {
		t.Fatalf("unexpected fields %v", resp.Fields)
	}
}

func TestUpdateAndDeleteRequireAuthor(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newContext(http.MethodPost, "/api/posts", map[string]string{"title": "Mine", "content": "<p>x</p>"}, 1)
	api.CreatePost(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}

	c, w = newContext(http.MethodPut, "/api/posts/1", map[string]string{"title": "Theirs", "content": "<p>y</p>"}, 2)
	withID(c, 1)
	api.UpdatePost(c)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on foreign update, got %d", w.Code)
	}
	var errResp map[string]string
	decode(t, w, &errResp)
	if errResp["error"] != "You can only edit your own posts" {
		t.Fatalf("unexpected error %q", errResp["error"])
	}

	c, w = newContext(http.MethodDelete, "/api/posts/1", nil, 2)
	withID(c, 1)
	api.DeletePost(c)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on foreign delete, got %d", w.Code)
	}
	decode(t, w, &errResp)
	if errResp["error"] != "You can only delete your own posts" {
		t.Fatalf("unexpected error %q", errResp["error"])
	}

	c, w = newContext(http.MethodDelete, "/api/posts/1", nil, 1)
	withID(c, 1)
	api.DeletePost(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on own delete, got %d", w.Code)
	}

	c, w = newContext(http.MethodGet, "/api/posts/1", nil, 0)
	withID(c, 1)
	api.GetPost(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
	decode(t, w, &errResp)
	if errResp["error"] != "Post not found" {
		t.Fatalf("unexpected error %q", errResp["error"])
	}
}

func TestListPostsIsBareArray(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	for i, userID := range []uint{1, 2, 1} {
		c, w := newContext(http.MethodPost, "/api/posts", map[string]string{
			"title":   fmt.Sprintf("post %d", i),
			"content": "<p>body</p>",
		}, userID)
		api.CreatePost(c)
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d failed: %d", i, w.Code)
		}
	}

	c, w := newContext(http.MethodGet, "/api/posts", nil, 0)
	api.ListPosts(c)
	var all []postResponse
	decode(t, w, &all)
	if len(all) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(all))
	}

	c, w = newContext(http.MethodGet, "/api/posts/user/my-posts", nil, 1)
	api.ListMyPosts(c)
	var mine []postResponse
	decode(t, w, &mine)
	if len(mine) != 2 {
		t.Fatalf("expected 2 posts for tester, got %d", len(mine))
	}
	for _, p := range mine {
		if p.AuthorID != 1 {
			t.Fatalf("unexpected author id %d", p.AuthorID)
		}
	}
}

func TestGetPostRejectsBadID(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newContext(http.MethodGet, "/api/posts/abc", nil, 0)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	api.GetPost(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
