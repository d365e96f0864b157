package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/techtech-dev-team/stranger-backoffice/internal/authctx"
)

const sessionCookieName = "_sid"

// bearerToken extracts the credential from the Authorization header or,
// for browser clients, from the session cookie.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := authctx.WithActor(c.Request.Context(), authctx.Actor{
			UserID:   user.ID,
			Role:     user.Role,
			RegionID: user.RegionID,
			BranchID: user.BranchID,
			CentreID: user.CentreID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := authctx.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !actor.HasRole(roles...) {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}
