package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	visiondomain "github.com/techtech-dev-team/stranger-backoffice/internal/vision/domain"
)

func (s *Server) CreateVisionEntry(c *gin.Context) {
	var req visiondomain.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entry, err := s.visionSvc.CreateEntry(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (s *Server) ListVisionEntries(c *gin.Context) {
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

	entries, err := s.visionSvc.ListEntries(c.Request.Context(), visiondomain.ListEntryFilter{
		CentreID: centreID,
		Code:     strings.TrimSpace(c.Query("code")),
		From:     from,
		To:       to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) GetVisionEntryByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	entry, err := s.visionSvc.GetEntry(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}
