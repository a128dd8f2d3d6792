package service

import (
	"errors"
	"strings"
	"time"

	"github.com/blogstory/internal/db"
	"github.com/blogstory/internal/draft"
	"github.com/blogstory/internal/richtext"
	"gorm.io/gorm"
)

// SummaryLength is the number of characters kept in a post summary.
const SummaryLength = 150

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("not the author of this post")
)

// ValidationError carries per-field messages for a rejected input.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

// PostService wraps post related database operations.
type PostService struct {
	db  *gorm.DB
	now func() time.Time
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title   string
	Content string
	UserID  uint
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb, now: time.Now}
}

// ListAll returns all posts ordered by created time descending.
func (s *PostService) ListAll() ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.Preload("User").Order("created_at desc, id desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByUser returns the posts written by userID, newest first.
func (s *PostService) ListByUser(userID uint) ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.Preload("User").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Get fetches a post by id with its author preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create validates and persists a post. CreatedAt and UpdatedAt are equal on a new post.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	title, content, err := normalizePostInput(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := db.Post{
		Title:   title,
		Content: content,
		Summary: richtext.Summary(content, SummaryLength),
		UserID:  input.UserID,
	}
	post.CreatedAt = now
	post.UpdatedAt = now

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return s.Get(post.ID)
}

// Update applies updates to an existing post owned by input.UserID.
func (s *PostService) Update(id uint, input PostInput) (*db.Post, error) {
	existing, err := s.owned(id, input.UserID)
	if err != nil {
		return nil, err
	}

	title, content, err := normalizePostInput(input)
	if err != nil {
		return nil, err
	}

	// UpdateColumns 跳过 gorm 的自动时间戳，以便使用注入的时钟。
	if err := s.db.Model(existing).UpdateColumns(map[string]interface{}{
		"title":      title,
		"content":    content,
		"summary":    richtext.Summary(content, SummaryLength),
		"updated_at": s.now(),
	}).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a post owned by userID.
func (s *PostService) Delete(id, userID uint) error {
	post, err := s.owned(id, userID)
	if err != nil {
		return err
	}
	return s.db.Delete(post).Error
}

func (s *PostService) owned(id, userID uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrForbidden
	}
	return &post, nil
}

// normalizePostInput 校验标题与正文，并对正文 HTML 做清洗。
func normalizePostInput(input PostInput) (string, string, error) {
	d := draft.Draft{Title: strings.TrimSpace(input.Title), Content: input.Content}
	if fields := d.Validate(); fields.Any() {
		return "", "", &ValidationError{Message: "Invalid post", Fields: fields}
	}

	content := richtext.Sanitize(d.Content)
	if strings.TrimSpace(content) == "" {
		return "", "", &ValidationError{
			Message: "Invalid post",
			Fields:  map[string]string{draft.FieldContent: "Content is required"},
		}
	}
	return d.Title, content, nil
}
