package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blogstory/internal/db"
	"github.com/blogstory/internal/service"
	"github.com/gin-gonic/gin"
)

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type postResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary"`
	Author    string    `json:"author"`
	AuthorID  uint      `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newPostResponse(post db.Post) postResponse {
	return postResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Summary:   post.Summary,
		Author:    post.User.Username,
		AuthorID:  post.UserID,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func newPostResponses(posts []db.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, newPostResponse(post))
	}
	return out
}

// ListPosts 返回全部文章，按创建时间倒序。
func (a *API) ListPosts(c *gin.Context) {
	posts, err := a.posts.ListAll()
	if err != nil {
		respondServiceError(c, err, "Failed to load posts")
		return
	}
	c.JSON(http.StatusOK, newPostResponses(posts))
}

// ListMyPosts returns the posts of the authenticated user.
func (a *API) ListMyPosts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	posts, err := a.posts.ListByUser(userID)
	if err != nil {
		respondServiceError(c, err, "Failed to load posts")
		return
	}
	c.JSON(http.StatusOK, newPostResponses(posts))
}

func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		respondServiceError(c, err, "Failed to load post")
		return
	}
	c.JSON(http.StatusOK, newPostResponse(*post))
}

func (a *API) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req postRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	post, err := a.posts.Create(service.PostInput{Title: req.Title, Content: req.Content, UserID: userID})
	if err != nil {
		respondServiceError(c, err, "Failed to create post")
		return
	}

	c.Header("Location", "/api/posts/"+strconv.FormatUint(uint64(post.ID), 10))
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully", "post": newPostResponse(*post)})
}

func (a *API) UpdatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	var req postRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	post, err := a.posts.Update(id, service.PostInput{Title: req.Title, Content: req.Content, UserID: userID})
	if errors.Is(err, service.ErrForbidden) {
		respondError(c, http.StatusForbidden, "You can only edit your own posts")
		return
	}
	if err != nil {
		respondServiceError(c, err, "Failed to update post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully", "post": newPostResponse(*post)})
}

func (a *API) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	if err := a.posts.Delete(id, userID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			respondError(c, http.StatusForbidden, "You can only delete your own posts")
			return
		}
		respondServiceError(c, err, "Failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
