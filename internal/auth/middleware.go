package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "userId"

// AuthMiddleware checks the bearer token. Browsers opening a websocket
// cannot set headers, so an access_token query parameter is accepted too.
// With rdb set the token must also match the live session, which is then
// extended. A userId query parameter, when present, must name the token's
// user.
func AuthMiddleware(secret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("access_token")
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Missing or invalid Authorization header"}})
			return
		}
		claims, err := ParseJWT(secret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid or expired token"}})
			return
		}
		if rdb != nil {
			ctx := c.Request.Context()
			sessionToken, err := GetSession(ctx, rdb, claims.UserID)
			if err != nil || sessionToken != tokenStr {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Session expired or invalid"}})
				return
			}
			_ = SetSession(ctx, rdb, claims.UserID, tokenStr, SessionTTL)
		}

		if q := c.Query("userId"); q != "" {
			id, err := strconv.ParseUint(q, 10, 64)
			if err != nil || uint(id) != claims.UserID {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Token does not belong to this user"}})
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
