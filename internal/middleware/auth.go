// Package middleware holds the gin middleware of the reference server.
package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the context key the authenticated user id is stored under.
const UserIDKey = "user_id"

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	Validate(raw string) (uint, error)
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			log.Printf("[auth] token rejected (request %s): %v", c.GetString(RequestIDKey), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
