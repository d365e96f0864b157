package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/techtech-dev-team/stranger-backoffice/internal/report/domain"
)

func (s *Server) SalesReport(c *gin.Context) {
	regionID, err := parseOptionalSnowflakeID(c.Query("region_id"))
	if err != nil {
		AbortWithError(c, newValidationError("region_id", "invalid_region_id", "invalid region_id"))
		return
	}
	branchID, err := parseOptionalSnowflakeID(c.Query("branch_id"))
	if err != nil {
		AbortWithError(c, newValidationError("branch_id", "invalid_branch_id", "invalid branch_id"))
		return
	}
	centreID, err := parseOptionalSnowflakeID(c.Query("centre_id"))
	if err != nil {
		AbortWithError(c, newValidationError("centre_id", "invalid_centre_id", "invalid centre_id"))
		return
	}

	result, err := s.reportSvc.SalesReport(c.Request.Context(), reportdomain.SalesFilter{
		FromDate: strings.TrimSpace(c.Query("from_date")),
		ToDate:   strings.TrimSpace(c.Query("to_date")),
		RegionID: regionID,
		BranchID: branchID,
		CentreID: centreID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) FindVisitsByTID(c *gin.Context) {
	tid := strings.TrimSpace(c.Param("tid"))
	visits, err := s.reportSvc.FindByTID(c.Request.Context(), tid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": visits})
}

func (s *Server) ListDailySummaries(c *gin.Context) {
	centreID, err := parseOptionalSnowflakeID(c.Query("centre_id"))
	if err != nil {
		AbortWithError(c, newValidationError("centre_id", "invalid_centre_id", "invalid centre_id"))
		return
	}

	summaries, err := s.summarySvc.ListSummaries(c.Request.Context(), centreID,
		strings.TrimSpace(c.Query("from_date")), strings.TrimSpace(c.Query("to_date")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func (s *Server) ListCentreBalances(c *gin.Context) {
	centreID, err := parseOptionalSnowflakeID(c.Query("centre_id"))
	if err != nil {
		AbortWithError(c, newValidationError("centre_id", "invalid_centre_id", "invalid centre_id"))
		return
	}

	balances, err := s.summarySvc.ListBalances(c.Request.Context(), centreID,
		strings.TrimSpace(c.Query("from_date")), strings.TrimSpace(c.Query("to_date")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": balances})
}
