package service

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/blogstory/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 20
	minPasswordLength = 6
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService handles accounts and password checks.
type UserService struct {
	db *gorm.DB
}

// RegisterInput is what a new account needs.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ProfileInput holds the editable account fields.
type ProfileInput struct {
	Username string
	Email    string
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register validates the input, hashes the password and stores the user.
func (s *UserService) Register(input RegisterInput) (*db.User, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)

	fields := map[string]string{}
	checkUsername(fields, username)
	checkEmail(fields, email)
	switch {
	case input.Password == "":
		fields["password"] = "Password is required"
	case utf8.RuneCountInString(input.Password) < minPasswordLength:
		fields["password"] = "Password must be at least 6 characters"
	}
	if len(fields) == 0 {
		s.checkTaken(fields, username, email, 0)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: firstMessage(fields, "Registration failed"), Fields: fields}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{Username: username, Email: email, Password: string(hashed)}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the user matching email and password.
func (s *UserService) Authenticate(email, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get fetches a user by id.
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes username and email of the user with id.
func (s *UserService) UpdateProfile(id uint, input ProfileInput) (*db.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)

	fields := map[string]string{}
	checkUsername(fields, username)
	checkEmail(fields, email)
	if len(fields) == 0 {
		s.checkTaken(fields, username, email, id)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: firstMessage(fields, "Failed to update"), Fields: fields}
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"username": username,
		"email":    email,
	}).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *UserService) checkTaken(fields map[string]string, username, email string, except uint) {
	var count int64
	if err := s.db.Model(&db.User{}).Where("username = ? AND id <> ?", username, except).Count(&count).Error; err == nil && count > 0 {
		fields["username"] = "Username is already taken"
	}
	count = 0
	if err := s.db.Model(&db.User{}).Where("email = ? AND id <> ?", email, except).Count(&count).Error; err == nil && count > 0 {
		fields["email"] = "Email is already registered"
	}
}

func checkUsername(fields map[string]string, username string) {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		fields["username"] = "Username must be between 3 and 20 characters"
	}
}

func checkEmail(fields map[string]string, email string) {
	if email == "" {
		fields["email"] = "Email is required"
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "Please enter a valid email address"
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func firstMessage(fields map[string]string, fallback string) string {
	for _, key := range []string{"username", "email", "password"} {
		if msg, ok := fields[key]; ok {
			return msg
		}
	}
	return fallback
}
