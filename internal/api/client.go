// Package api is the typed HTTP client for the blog service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blogstory/internal/draft"
)

// DefaultBaseURL is where the development server listens.
const DefaultBaseURL = "http://localhost:8080/api"

const maxResponseBytes = 4 << 20

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the call is made anonymously.
type TokenSource interface {
	Token() string
}

// Client issues one request per call: no retry and no caching.
type Client struct {
	base   string
	http   httpDoer
	tokens TokenSource
}

// New returns a client rooted at baseURL. tokens may be nil.
func New(baseURL string, tokens TokenSource) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base:   base,
		http:   &http.Client{},
		tokens: tokens,
	}
}

// SetHTTPClient swaps the transport; nil restores the default.
func (c *Client) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{}
		return
	}
	c.http = client
}

// SetTokenSource replaces the token source.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.base }

// ListPosts returns every post.
func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns the post with id.
func (c *Client) GetPost(ctx context.Context, id ID) (Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodGet, postPath(id), nil, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// CreatePost validates d and, when it passes, creates the post.
func (c *Client) CreatePost(ctx context.Context, d draft.Draft) (Post, error) {
	if err := validationError(d); err != nil {
		return Post{}, err
	}
	var env postEnvelope
	if err := c.do(ctx, http.MethodPost, "/posts", d, &env); err != nil {
		return Post{}, err
	}
	return env.Post, nil
}

// UpdatePost validates d and, when it passes, replaces the title and content of id.
func (c *Client) UpdatePost(ctx context.Context, id ID, d draft.Draft) (Post, error) {
	if err := validationError(d); err != nil {
		return Post{}, err
	}
	var env postEnvelope
	if err := c.do(ctx, http.MethodPut, postPath(id), d, &env); err != nil {
		return Post{}, err
	}
	return env.Post, nil
}

// DeletePost removes id.
func (c *Client) DeletePost(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, postPath(id), nil, nil)
}

// ListMyPosts returns the posts owned by the session user.
func (c *Client) ListMyPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.do(ctx, http.MethodGet, "/posts/user/my-posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &res); err != nil {
		return AuthResult{}, err
	}
	return res, nil
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", reg, &res); err != nil {
		return AuthResult{}, err
	}
	return res, nil
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (User, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &env); err != nil {
		return User{}, err
	}
	return env.User, nil
}

// UpdateProfile changes the username and email of the current user.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (User, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodPut, "/auth/profile", upd, &env); err != nil {
		return User{}, err
	}
	return env.User, nil
}

func postPath(id ID) string {
	return "/posts/" + url.PathEscape(id.String())
}

func validationError(d draft.Draft) error {
	fields := d.Validate()
	if fields == nil {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return &Error{
		Kind:    KindValidation,
		Message: strings.Join(msgs, "; "),
		Fields:  fields,
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("[api] %s %s -> transport error: %v", method, path, err)
		return &Error{Kind: KindNetwork, Message: "Unable to reach the server.", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Printf("[api] %s %s -> read error: %v", method, path, err)
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "Connection interrupted.", Err: err}
	}
	log.Printf("[api] %s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode >= http.StatusBadRequest {
		return classify(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: "Unexpected response from server.",
			Err:     fmt.Errorf("decode %s %s: %w", method, path, err),
		}
	}
	return nil
}
