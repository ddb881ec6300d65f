package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/filehub/internal/common"
	"github.com/dmitrijs2005/filehub/internal/server/identity"
)

const identityKey = "identity.user"

// requestLogger tags every request with a fresh id and logs it on completion.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)

		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// resolveIdentity resolves the acting user from the session cookie. Absent
// or unknown cookies resolve to guest, so handlers never branch on "no user".
func (s *Server) resolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(common.SessionCookieName)
		c.Set(identityKey, s.manager.LookupBySession(token))
		c.Next()
	}
}

// currentUser returns the acting identity set by resolveIdentity.
func currentUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(identityKey); ok {
		if u, ok := v.(*identity.User); ok {
			return u
		}
	}
	return identity.NewGuest()
}
