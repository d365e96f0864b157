package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/techtech-dev-team/stranger-backoffice/internal/auth/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/authctx"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	ledgerdomain "github.com/techtech-dev-team/stranger-backoffice/internal/ledger/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/liveevents"
	notificationdomain "github.com/techtech-dev-team/stranger-backoffice/internal/notification/domain"
	"go.uber.org/zap"
)

func (s *Server) CreateCentre(c *gin.Context) {
	var req centredomain.CreateCentreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	centre, err := s.centreSvc.CreateCentre(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": centre})
}

func (s *Server) ListCentres(c *gin.Context) {
	branchID, err := parseOptionalSnowflakeID(c.Query("branch_id"))
	if err != nil {
		AbortWithError(c, newValidationError("branch_id", "invalid_branch_id", "invalid branch_id"))
		return
	}
	regionID, err := parseOptionalSnowflakeID(c.Query("region_id"))
	if err != nil {
		AbortWithError(c, newValidationError("region_id", "invalid_region_id", "invalid region_id"))
		return
	}
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	centres, err := s.centreSvc.ListCentres(c.Request.Context(), centredomain.ListCentreFilter{
		BranchID: branchID,
		RegionID: regionID,
		Active:   active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": centres})
}

func (s *Server) GetCentreByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	centre, err := s.centreSvc.GetCentre(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": centre})
}

func (s *Server) UpdateCentre(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req centredomain.UpdateCentreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	centre, err := s.centreSvc.UpdateCentre(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": centre})
}

type collectCashRequest struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
	Remark   string `json:"remark"`
}

func (s *Server) CollectCash(c *gin.Context) {
	centreID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req collectCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	fromDate, err := parseOptionalTime(req.FromDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("from_date", "invalid_from_date", "invalid from_date"))
		return
	}
	toDate, err := parseOptionalTime(req.ToDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("to_date", "invalid_to_date", "invalid to_date"))
		return
	}

	collectedBy, _ := authctx.UserIDFromContext(c.Request.Context())
	collectReq := ledgerdomain.CollectRequest{
		CentreID:    centreID,
		Remark:      req.Remark,
		CollectedBy: collectedBy,
	}
	if fromDate != nil {
		collectReq.FromDate = *fromDate
	}
	if toDate != nil {
		collectReq.ToDate = *toDate
	}

	collection, err := s.ledgerSvc.Collect(c.Request.Context(), collectReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.liveEvents != nil {
		s.liveEvents.Publish(liveevents.LiveEvent{
			Kind:       liveevents.KindCollection,
			CentreID:   centreID.String(),
			Amount:     collection.Amount,
			OccurredAt: collection.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	// Centre managers learn about pickups out of band; a failed
	// notification never unwinds the booked collection.
	managers, listErr := s.authSvc.ListUsers(c.Request.Context(), authdomain.RoleCentreManager, centreID)
	if listErr != nil {
		s.log.Warn("collection notification target lookup failed",
			zap.String("centre_id", centreID.String()),
			zap.Error(listErr),
		)
	}
	for _, manager := range managers {
		if err := s.notificationSvc.Notify(c.Request.Context(), manager.ID,
			notificationdomain.KindCollection,
			"cash collected",
			fmt.Sprintf("collection of %d booked for centre %s", collection.Amount, centreID.String()),
		); err != nil {
			s.log.Warn("collection notification failed",
				zap.String("user_id", manager.ID.String()),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": collection})
}

func (s *Server) ListCollections(c *gin.Context) {
	centreID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	collections, err := s.ledgerSvc.ListCollections(c.Request.Context(), centreID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": collections})
}
