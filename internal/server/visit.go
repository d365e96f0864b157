package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	visitdomain "github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"github.com/techtech-dev-team/stranger-backoffice/pkg/db/pagination"
)

func (s *Server) CheckInVisit(c *gin.Context) {
	var req visitdomain.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	visit, err := s.visitSvc.CheckIn(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": visit})
}

func (s *Server) CheckOutVisit(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req visitdomain.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	visit, err := s.visitSvc.CheckOut(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": visit})
}

func (s *Server) GetVisitByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	visit, err := s.visitSvc.GetVisit(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": visit})
}

func (s *Server) ListVisits(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CentreID string `form:"centre_id"`
		Phone    string `form:"phone"`
		Open     string `form:"open"`
		From     string `form:"from"`
		To       string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	centreID, err := parseOptionalSnowflakeID(query.CentreID)
	if err != nil {
		AbortWithError(c, newValidationError("centre_id", "invalid_centre_id", "invalid centre_id"))
		return
	}
	open, err := parseOptionalBool(query.Open)
	if err != nil {
		AbortWithError(c, newValidationError("open", "invalid_open", "invalid open"))
		return
	}
	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	visits, pageInfo, err := s.visitSvc.ListVisits(c.Request.Context(), visitdomain.ListVisitFilter{
		CentreID: centreID,
		Phone:    strings.TrimSpace(query.Phone),
		Open:     open,
		From:     from,
		To:       to,
	}, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": visits, "page_info": pageInfo})
}
