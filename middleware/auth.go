package middleware

import (
	"net/http"
	"strings"

	"blog-game/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuth 校验 Authorization: Bearer <token>，通过后把 userID 放进上下文
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == "" || token == auth {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少访问令牌"})
			return
		}

		userID, err := utils.ParseAccessToken(token)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "令牌无效"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
