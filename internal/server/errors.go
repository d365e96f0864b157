package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/techtech-dev-team/stranger-backoffice/internal/auth/domain"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	expensedomain "github.com/techtech-dev-team/stranger-backoffice/internal/expense/domain"
	ledgerdomain "github.com/techtech-dev-team/stranger-backoffice/internal/ledger/domain"
	notificationdomain "github.com/techtech-dev-team/stranger-backoffice/internal/notification/domain"
	orgdomain "github.com/techtech-dev-team/stranger-backoffice/internal/org/domain"
	reportdomain "github.com/techtech-dev-team/stranger-backoffice/internal/report/domain"
	visiondomain "github.com/techtech-dev-team/stranger-backoffice/internal/vision/domain"
	visitdomain "github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrTokenExpired),
		errors.Is(err, authdomain.ErrUserInactive):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, orgdomain.ErrRegionExists),
		errors.Is(err, visitdomain.ErrVisitAlreadyClosed):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isOrgValidationError(err),
		isCentreValidationError(err),
		isVisitValidationError(err),
		isVisionValidationError(err),
		isExpenseValidationError(err),
		isLedgerValidationError(err),
		isAuthValidationError(err),
		isReportValidationError(err):
		return true
	default:
		return false
	}
}

func isOrgValidationError(err error) bool {
	switch {
	case errors.Is(err, orgdomain.ErrInvalidName),
		errors.Is(err, orgdomain.ErrInvalidRegion),
		errors.Is(err, orgdomain.ErrRegionInactive):
		return true
	default:
		return false
	}
}

func isCentreValidationError(err error) bool {
	switch {
	case errors.Is(err, centredomain.ErrInvalidName),
		errors.Is(err, centredomain.ErrInvalidBranch),
		errors.Is(err, centredomain.ErrInvalidPayCriteria),
		errors.Is(err, centredomain.ErrCentreInactive):
		return true
	default:
		return false
	}
}

func isVisitValidationError(err error) bool {
	switch {
	case errors.Is(err, visitdomain.ErrInvalidCentre),
		errors.Is(err, visitdomain.ErrInvalidPhone),
		errors.Is(err, visitdomain.ErrInvalidAmount):
		return true
	default:
		return false
	}
}

func isVisionValidationError(err error) bool {
	switch {
	case errors.Is(err, visiondomain.ErrInvalidCentre),
		errors.Is(err, visiondomain.ErrInvalidCode),
		errors.Is(err, visiondomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isExpenseValidationError(err error) bool {
	switch {
	case errors.Is(err, expensedomain.ErrInvalidAmount),
		errors.Is(err, expensedomain.ErrInvalidReason),
		errors.Is(err, expensedomain.ErrNoCentres),
		errors.Is(err, expensedomain.ErrInvalidCentre):
		return true
	default:
		return false
	}
}

func isLedgerValidationError(err error) bool {
	switch {
	case errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidRange):
		return true
	default:
		return false
	}
}

func isAuthValidationError(err error) bool {
	switch {
	case errors.Is(err, authdomain.ErrInvalidUsername),
		errors.Is(err, authdomain.ErrInvalidPassword),
		errors.Is(err, authdomain.ErrInvalidRole):
		return true
	default:
		return false
	}
}

func isReportValidationError(err error) bool {
	switch {
	case errors.Is(err, reportdomain.ErrInvalidRange),
		errors.Is(err, reportdomain.ErrInvalidTID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, orgdomain.ErrRegionNotFound),
		errors.Is(err, orgdomain.ErrBranchNotFound),
		errors.Is(err, centredomain.ErrCentreNotFound),
		errors.Is(err, ledgerdomain.ErrCentreNotFound),
		errors.Is(err, visitdomain.ErrVisitNotFound),
		errors.Is(err, visiondomain.ErrEntryNotFound),
		errors.Is(err, expensedomain.ErrExpenseNotFound),
		errors.Is(err, notificationdomain.ErrNotificationNotFound),
		errors.Is(err, authdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog buckets handler errors for the request log.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status >= http.StatusBadRequest:
		return "client_error", payload.Type
	default:
		return "ok", payload.Type
	}
}
