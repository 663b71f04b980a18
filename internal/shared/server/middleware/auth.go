package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"review-backend/internal/shared/server/respond"
)

const reviewerIDKey = "reviewerId"

// Identity records the caller's reviewer id (if any) from the identity
// header set by the upstream identity provider. Authentication itself is
// delegated; this process only consumes the result.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader("X-Reviewer-Id")); id != "" {
			c.Set(reviewerIDKey, id)
		}
		c.Next()
	}
}

// ReviewerIDFromContext fetches the reviewer id stored by Identity.
func ReviewerIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(reviewerIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// RequireAdmin answers the only authorization question this service asks:
// is this caller an admin? The capability is a bearer token handed out by
// the deployment, compared in constant time.
func RequireAdmin(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminToken == "" {
			respond.Error(c, http.StatusServiceUnavailable, "admin_unconfigured", "admin capability is not configured in this environment", nil)
			return
		}
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			respond.Error(c, http.StatusForbidden, "forbidden", "admin capability required", nil)
			return
		}
		c.Next()
	}
}
