package handler

import (
	"github.com/blogstory/internal/service"
	"github.com/blogstory/internal/token"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db     *gorm.DB
	posts  *service.PostService
	users  *service.UserService
	tokens *token.Issuer
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, tokens *token.Issuer) *API {
	return &API{
		db:     db,
		posts:  service.NewPostService(db),
		users:  service.NewUserService(db),
		tokens: tokens,
	}
}

// Tokens exposes the issuer so the router can build the auth middleware.
func (a *API) Tokens() *token.Issuer {
	return a.tokens
}
