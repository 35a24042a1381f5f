package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/addons-front/listing-api/internal/config"
	"github.com/addons-front/listing-api/internal/security"
	"github.com/gin-gonic/gin"
)

// editorAuthMiddleware validates editor JWTs and stores the editor name in context.
func editorAuthMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseEditorToken(jwtCfg.Secret, token)
		if errJWT != nil {
			msg := "invalid token"
			if errors.Is(errJWT, security.ErrExpiredToken) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set("editor", claims.Username)
		c.Next()
	}
}
