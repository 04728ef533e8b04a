package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matehackers/badges-engine/ports"
)

// AdminMiddleware creates middleware that validates admin bearer tokens
func AdminMiddleware(tokenizer ports.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		// Check if the Authorization header is present and in correct format
		if len(auth) < 8 || auth[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		// Validate the token
		subject, err := tokenizer.VerifyAdminToken(auth[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// Set the admin subject in the context
		c.Set("adminSubject", subject)

		c.Next()
	}
}
