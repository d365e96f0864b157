package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	expensedomain "github.com/techtech-dev-team/stranger-backoffice/internal/expense/domain"
)

func (s *Server) CreateExpense(c *gin.Context) {
	var req expensedomain.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	expense, err := s.expenseSvc.CreateExpense(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": expense})
}

func (s *Server) ListExpenses(c *gin.Context) {
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

	expenses, err := s.expenseSvc.ListExpenses(c.Request.Context(), expensedomain.ListExpenseFilter{
		CentreID: centreID,
		From:     from,
		To:       to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": expenses})
}

func (s *Server) GetExpenseByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	expense, err := s.expenseSvc.GetExpense(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": expense})
}
