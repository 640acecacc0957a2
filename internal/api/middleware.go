package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/spotcheck/spotfeed/pkg/config"
)

const userIDKey = "user_id"

// authenticate parses a Bearer token and stores the subject user id in the
// request context. With required=false an absent or invalid token leaves
// the request anonymous; viewers without an identity get neutral vote
// projections.
func authenticate(cfg *config.AuthConfig, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
				return
			}
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer token"})
				return
			}
			c.Next()
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
				return
			}
			c.Next()
			return
		}

		c.Set(userIDKey, subject)
		c.Next()
	}
}

// currentUserID returns the authenticated user id, or "" for anonymous
// requests.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
