package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authdomain "github.com/techtech-dev-team/stranger-backoffice/internal/auth/domain"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/config"
	ledgerdomain "github.com/techtech-dev-team/stranger-backoffice/internal/ledger/domain"
	notificationdomain "github.com/techtech-dev-team/stranger-backoffice/internal/notification/domain"
	orgdomain "github.com/techtech-dev-team/stranger-backoffice/internal/org/domain"
	visitdomain "github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"github.com/techtech-dev-team/stranger-backoffice/pkg/db/pagination"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type fakeAuthService struct {
	loginCalls int
	user       authdomain.User
	managers   []authdomain.User
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (authdomain.LoginResponse, error) {
	f.loginCalls++
	if req.Password != "secret" {
		return authdomain.LoginResponse{}, authdomain.ErrInvalidCredentials
	}
	return authdomain.LoginResponse{Token: "test-token", User: f.user}, nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, token string) (authdomain.User, error) {
	if token != "test-token" {
		return authdomain.User{}, authdomain.ErrInvalidToken
	}
	return f.user, nil
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (authdomain.User, error) {
	return authdomain.User{ID: snowflake.ID(2), Username: req.Username, Role: req.Role}, nil
}

func (f *fakeAuthService) GetUser(ctx context.Context, id snowflake.ID) (authdomain.User, error) {
	if id != f.user.ID {
		return authdomain.User{}, authdomain.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeAuthService) ListUsers(ctx context.Context, role string, centreID snowflake.ID) ([]authdomain.User, error) {
	return f.managers, nil
}

type fakeLedgerService struct {
	collections int
}

func (f *fakeLedgerService) PostEntryPayment(context.Context, *gorm.DB, snowflake.ID, int64, int64) error {
	return nil
}

func (f *fakeLedgerService) PostExitPayment(context.Context, *gorm.DB, snowflake.ID, int64, int64, int64, int64) error {
	return nil
}

func (f *fakeLedgerService) Collect(ctx context.Context, req ledgerdomain.CollectRequest) (ledgerdomain.Collection, error) {
	f.collections++
	return ledgerdomain.Collection{ID: snowflake.ID(9), CentreID: req.CentreID, Amount: 4200}, nil
}

func (f *fakeLedgerService) ListCollections(context.Context, snowflake.ID) ([]ledgerdomain.Collection, error) {
	return nil, nil
}

type failingNotificationService struct {
	attempts int
}

func (f *failingNotificationService) Notify(context.Context, snowflake.ID, string, string, string) error {
	f.attempts++
	return errors.New("sms gateway offline")
}

func (f *failingNotificationService) ListForUser(context.Context, snowflake.ID, bool) ([]notificationdomain.Notification, error) {
	return nil, nil
}

func (f *failingNotificationService) MarkSeen(context.Context, snowflake.ID, snowflake.ID) error {
	return nil
}

type fakeVisitService struct {
	checkIns  int
	checkOuts int
}

func (f *fakeVisitService) CheckIn(ctx context.Context, req visitdomain.CheckInRequest) (visitdomain.Visit, error) {
	f.checkIns++
	if req.Phone == "" {
		return visitdomain.Visit{}, visitdomain.ErrInvalidPhone
	}
	return visitdomain.Visit{ID: snowflake.ID(77), Phone: req.Phone}, nil
}

func (f *fakeVisitService) CheckOut(ctx context.Context, id snowflake.ID, req visitdomain.CheckOutRequest) (visitdomain.Visit, error) {
	f.checkOuts++
	if id == snowflake.ID(404) {
		return visitdomain.Visit{}, visitdomain.ErrVisitNotFound
	}
	return visitdomain.Visit{ID: id}, nil
}

func (f *fakeVisitService) GetVisit(ctx context.Context, id snowflake.ID) (visitdomain.Visit, error) {
	return visitdomain.Visit{ID: id}, nil
}

func (f *fakeVisitService) ListVisits(ctx context.Context, filter visitdomain.ListVisitFilter, page pagination.Pagination) ([]*visitdomain.Visit, pagination.PageInfo, error) {
	return nil, pagination.PageInfo{}, nil
}

type fakeOrgService struct {
	createdRegions int
}

func (f *fakeOrgService) CreateRegion(ctx context.Context, req orgdomain.CreateRegionRequest) (orgdomain.Region, error) {
	f.createdRegions++
	return orgdomain.Region{ID: snowflake.ID(5), Name: req.Name}, nil
}

func (f *fakeOrgService) GetRegion(ctx context.Context, id snowflake.ID) (orgdomain.Region, error) {
	return orgdomain.Region{}, orgdomain.ErrRegionNotFound
}

func (f *fakeOrgService) ListRegions(ctx context.Context) ([]orgdomain.Region, error) {
	return nil, nil
}

func (f *fakeOrgService) UpdateRegion(ctx context.Context, id snowflake.ID, req orgdomain.UpdateRegionRequest) (orgdomain.Region, error) {
	return orgdomain.Region{}, orgdomain.ErrRegionNotFound
}

func (f *fakeOrgService) CreateBranch(ctx context.Context, req orgdomain.CreateBranchRequest) (orgdomain.Branch, error) {
	return orgdomain.Branch{}, nil
}

func (f *fakeOrgService) GetBranch(ctx context.Context, id snowflake.ID) (orgdomain.Branch, error) {
	return orgdomain.Branch{}, orgdomain.ErrBranchNotFound
}

func (f *fakeOrgService) ListBranches(ctx context.Context, regionID snowflake.ID) ([]orgdomain.Branch, error) {
	return nil, nil
}

func (f *fakeOrgService) UpdateBranch(ctx context.Context, id snowflake.ID, req orgdomain.UpdateBranchRequest) (orgdomain.Branch, error) {
	return orgdomain.Branch{}, orgdomain.ErrBranchNotFound
}

type serverFixture struct {
	server   *Server
	authSvc  *fakeAuthService
	visitSvc *fakeVisitService
	orgSvc   *fakeOrgService
}

func newTestServer(t *testing.T, role string) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	authSvc := &fakeAuthService{
		user: authdomain.User{
			ID:       snowflake.ID(1),
			Username: "tester",
			Role:     role,
			Active:   true,
		},
	}
	visitSvc := &fakeVisitService{}
	orgSvc := &fakeOrgService{}

	srv := NewServer(ServerParams{
		Gin:      engine,
		Cfg:      config.Config{},
		AuthSvc:  authSvc,
		OrgSvc:   orgSvc,
		VisitSvc: visitSvc,
	})

	return &serverFixture{
		server:   srv,
		authSvc:  authSvc,
		visitSvc: visitSvc,
		orgSvc:   orgSvc,
	}
}

func (f *serverFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	f := newTestServer(t, authdomain.RoleFrontDesk)

	rec := f.do(http.MethodPost, "/v1/auth/login", "", gin.H{
		"username": "tester",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test-token")
	assert.Equal(t, 1, f.authSvc.loginCalls)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newTestServer(t, authdomain.RoleFrontDesk)

	rec := f.do(http.MethodPost, "/v1/auth/login", "", gin.H{
		"username": "tester",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired_RejectsMissingToken(t *testing.T) {
	f := newTestServer(t, authdomain.RoleFrontDesk)

	rec := f.do(http.MethodPost, "/v1/visits", "", gin.H{"centre_id": "1", "phone": "9000000001"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.visitSvc.checkIns)
}

func TestRequireRole_ForbidsRegionWrite(t *testing.T) {
	f := newTestServer(t, authdomain.RoleFrontDesk)

	rec := f.do(http.MethodPost, "/v1/regions", "test-token", gin.H{"name": "North"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, f.orgSvc.createdRegions)
}

func TestCreateRegion_AsAdmin(t *testing.T) {
	f := newTestServer(t, authdomain.RoleAdmin)

	rec := f.do(http.MethodPost, "/v1/regions", "test-token", gin.H{"name": "North"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.orgSvc.createdRegions)
}

func TestCheckInVisit(t *testing.T) {
	f := newTestServer(t, authdomain.RoleFrontDesk)

	rec := f.do(http.MethodPost, "/v1/visits", "test-token", gin.H{
		"centre_id": "1",
		"phone":     "9000000001",
		"cash":      500,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.visitSvc.checkIns)
}

func TestCheckInVisit_ValidationError(t *testing.T) {
	f := newTestServer(t, authdomain.RoleFrontDesk)

	rec := f.do(http.MethodPost, "/v1/visits", "test-token", gin.H{
		"centre_id": "1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_phone")
}

func TestCheckOutVisit_NotFound(t *testing.T) {
	f := newTestServer(t, authdomain.RoleFrontDesk)

	rec := f.do(http.MethodPatch, "/v1/visits/404/checkout", "test-token", gin.H{"cash": 100})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{authdomain.ErrInvalidToken, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{visitdomain.ErrVisitAlreadyClosed, http.StatusConflict},
		{centredomain.ErrCentreNotFound, http.StatusNotFound},
		{ledgerdomain.ErrInvalidAmount, http.StatusBadRequest},
		{ErrServiceUnavailable, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := mapError(tc.err)
		assert.Equal(t, tc.status, status, "error %v", tc.err)
	}
}

// A collection must book even when manager notifications fail; the
// failure lands in the log instead of the response.
func TestCollectCash_NotificationFailureIsLoggedNotFatal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	core, logs := observer.New(zap.WarnLevel)
	authSvc := &fakeAuthService{
		user: authdomain.User{
			ID:       snowflake.ID(1),
			Username: "tester",
			Role:     authdomain.RoleAdmin,
			Active:   true,
		},
		managers: []authdomain.User{
			{ID: snowflake.ID(3), Role: authdomain.RoleCentreManager},
		},
	}
	ledgerSvc := &fakeLedgerService{}
	notifier := &failingNotificationService{}

	srv := NewServer(ServerParams{
		Gin:             engine,
		Cfg:             config.Config{},
		Log:             zap.New(core),
		AuthSvc:         authSvc,
		LedgerSvc:       ledgerSvc,
		NotificationSvc: notifier,
	})
	f := &serverFixture{server: srv, authSvc: authSvc}

	rec := f.do(http.MethodPost, "/v1/centres/42/collections", "test-token", gin.H{"remark": "weekly"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "4200")

	assert.Equal(t, 1, ledgerSvc.collections)
	assert.Equal(t, 1, notifier.attempts)
	require.Equal(t, 1, logs.FilterMessage("collection notification failed").Len())
}
