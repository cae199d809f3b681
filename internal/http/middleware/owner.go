// Package middleware holds the gin middleware shared by the API routes.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OwnerHeader identifies the requesting user. The API trusts the header;
// authenticating it is the job of the gateway in front of this service.
const OwnerHeader = "X-Owner-ID"

const ownerKey = "owner_id"

// RequireOwner rejects requests without an owner identity and stashes it on
// the context for handlers.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetHeader(OwnerHeader)
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + OwnerHeader + " header"})
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

// OwnerID returns the owner identity set by RequireOwner.
func OwnerID(c *gin.Context) string {
	return c.GetString(ownerKey)
}
