package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orgdomain "github.com/techtech-dev-team/stranger-backoffice/internal/org/domain"
)

func (s *Server) CreateRegion(c *gin.Context) {
	var req orgdomain.CreateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	region, err := s.orgSvc.CreateRegion(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": region})
}

func (s *Server) ListRegions(c *gin.Context) {
	regions, err := s.orgSvc.ListRegions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": regions})
}

func (s *Server) GetRegionByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	region, err := s.orgSvc.GetRegion(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": region})
}

func (s *Server) UpdateRegion(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req orgdomain.UpdateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	region, err := s.orgSvc.UpdateRegion(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": region})
}

func (s *Server) CreateBranch(c *gin.Context) {
	var req orgdomain.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	branch, err := s.orgSvc.CreateBranch(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": branch})
}

func (s *Server) ListBranches(c *gin.Context) {
	regionID, err := parseOptionalSnowflakeID(c.Query("region_id"))
	if err != nil {
		AbortWithError(c, newValidationError("region_id", "invalid_region_id", "invalid region_id"))
		return
	}

	branches, err := s.orgSvc.ListBranches(c.Request.Context(), regionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": branches})
}

func (s *Server) GetBranchByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	branch, err := s.orgSvc.GetBranch(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": branch})
}

func (s *Server) UpdateBranch(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req orgdomain.UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	branch, err := s.orgSvc.UpdateBranch(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": branch})
}
