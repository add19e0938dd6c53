// Package middleware holds the gin middleware chain: request logging,
// CORS, and client-asserted identity.
package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zaliyaya/RunConnect/internal/models"
)

// ContextUser is the gin context key for the acting user.
const ContextUser = "acting_user"

// Identity reads the acting user from Telegram mini-app headers. The
// identity is asserted by the client and trusted as-is: there is no
// session or signature verification in this design, so ownership
// checks downstream are trust-based.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader("X-Telegram-User-ID")
		if idStr == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id == 0 {
			c.Next()
			return
		}
		c.Set(ContextUser, models.User{
			ID:        id,
			FirstName: c.GetHeader("X-Telegram-First-Name"),
			LastName:  c.GetHeader("X-Telegram-Last-Name"),
			Username:  c.GetHeader("X-Telegram-Username"),
			Avatar:    c.GetHeader("X-Telegram-Avatar"),
		})
		c.Next()
	}
}

// ActingUser returns the asserted identity, or false when the request
// carried none.
func ActingUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
