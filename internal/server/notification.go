package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techtech-dev-team/stranger-backoffice/internal/authctx"
)

func (s *Server) ListNotifications(c *gin.Context) {
	actor, ok := authctx.ActorFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	unseenOnly, err := parseOptionalBool(c.Query("unseen"))
	if err != nil {
		AbortWithError(c, newValidationError("unseen", "invalid_unseen", "invalid unseen"))
		return
	}

	notifications, err := s.notificationSvc.ListForUser(c.Request.Context(), actor.UserID, unseenOnly != nil && *unseenOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

func (s *Server) MarkNotificationSeen(c *gin.Context) {
	actor, ok := authctx.ActorFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.notificationSvc.MarkSeen(c.Request.Context(), actor.UserID, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"seen": true}})
}
