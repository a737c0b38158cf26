package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/server/respond"
)

const userIDKey = "userId"

// Identity reads the operator identity from the trusted X-User-Id header.
// Authentication itself happens upstream (session gateway, out of scope
// here); this service only requires that an identity is present so every
// document write carries its author.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		raw := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if raw == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid identity", nil)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the Identity middleware.
func UserIDFromContext(c *gin.Context) int64 {
	if c == nil {
		return 0
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(int64); ok {
		return id
	}
	return 0
}
