package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reconciledomain "github.com/techtech-dev-team/stranger-backoffice/internal/reconcile/domain"
)

func (s *Server) ListMissedEntries(c *gin.Context) {
	centreID, err := parseOptionalSnowflakeID(c.Query("centre_id"))
	if err != nil {
		AbortWithError(c, newValidationError("centre_id", "invalid_centre_id", "invalid centre_id"))
		return
	}
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	entries, err := s.reconcileSvc.ListMissed(c.Request.Context(), reconciledomain.ListMissedFilter{
		CentreID: centreID,
		Type:     strings.TrimSpace(c.Query("type")),
		From:     from,
		To:       to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
