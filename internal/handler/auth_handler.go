package handler

import (
	"errors"
	"net/http"

	"github.com/blogstory/internal/db"
	"github.com/blogstory/internal/service"
	"github.com/gin-gonic/gin"
)

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newUserResponse(user db.User) userResponse {
	return userResponse{ID: user.ID, Username: user.Username, Email: user.Email}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (a *API) respondWithToken(c *gin.Context, status int, user *db.User) {
	signed, err := a.tokens.Issue(user.ID)
	if err != nil {
		respondServiceError(c, err, "Failed to issue token")
		return
	}
	c.JSON(status, gin.H{"token": signed, "user": newUserResponse(*user)})
}

// Login 校验邮箱与密码并签发 JWT。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := a.users.Authenticate(req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		respondServiceError(c, err, "Login failed")
		return
	}

	a.respondWithToken(c, http.StatusOK, user)
}

func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	user, err := a.users.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err, "Registration failed")
		return
	}

	a.respondWithToken(c, http.StatusCreated, user)
}

// Me returns the authenticated user.
func (a *API) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := a.users.Get(userID)
	if errors.Is(err, service.ErrUserNotFound) {
		// 令牌有效但账号已不存在
		respondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}
	if err != nil {
		respondServiceError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(*user)})
}

func (a *API) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req profileRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	user, err := a.users.UpdateProfile(userID, service.ProfileInput{Username: req.Username, Email: req.Email})
	if err != nil {
		respondServiceError(c, err, "Failed to update")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": newUserResponse(*user)})
}
