package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/techtech-dev-team/stranger-backoffice/internal/auth"
	authdomain "github.com/techtech-dev-team/stranger-backoffice/internal/auth/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/centre"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/config"
	"github.com/techtech-dev-team/stranger-backoffice/internal/expense"
	expensedomain "github.com/techtech-dev-team/stranger-backoffice/internal/expense/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/ledger"
	ledgerdomain "github.com/techtech-dev-team/stranger-backoffice/internal/ledger/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/liveevents"
	"github.com/techtech-dev-team/stranger-backoffice/internal/notification"
	notificationdomain "github.com/techtech-dev-team/stranger-backoffice/internal/notification/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/observability"
	obsmiddleware "github.com/techtech-dev-team/stranger-backoffice/internal/observability/logger"
	obsmetrics "github.com/techtech-dev-team/stranger-backoffice/internal/observability/metrics"
	obstracing "github.com/techtech-dev-team/stranger-backoffice/internal/observability/tracing"
	"github.com/techtech-dev-team/stranger-backoffice/internal/org"
	orgdomain "github.com/techtech-dev-team/stranger-backoffice/internal/org/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/providers/sms"
	"github.com/techtech-dev-team/stranger-backoffice/internal/reconcile"
	reconciledomain "github.com/techtech-dev-team/stranger-backoffice/internal/reconcile/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/report"
	reportdomain "github.com/techtech-dev-team/stranger-backoffice/internal/report/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/summary"
	summarydomain "github.com/techtech-dev-team/stranger-backoffice/internal/summary/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/vision"
	visiondomain "github.com/techtech-dev-team/stranger-backoffice/internal/vision/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/visit"
	visitdomain "github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	org.Module,
	centre.Module,
	ledger.Module,
	visit.Module,
	vision.Module,
	expense.Module,
	sms.Module,
	notification.Module,
	reconcile.Module,
	summary.Module,
	report.Module,
	liveevents.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	db              *gorm.DB
	genID           *snowflake.Node
	authSvc         authdomain.Service
	orgSvc          orgdomain.Service
	centreSvc       centredomain.Service
	ledgerSvc       ledgerdomain.Service
	visitSvc        visitdomain.Service
	visionSvc       visiondomain.Service
	expenseSvc      expensedomain.Service
	reconcileSvc    reconciledomain.Service
	summarySvc      summarydomain.Service
	reportSvc       reportdomain.Service
	notificationSvc notificationdomain.Service
	liveEvents      *liveevents.Hub
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger `optional:"true"`
	DB              *gorm.DB
	GenID           *snowflake.Node
	AuthSvc         authdomain.Service
	OrgSvc          orgdomain.Service
	CentreSvc       centredomain.Service
	LedgerSvc       ledgerdomain.Service
	VisitSvc        visitdomain.Service
	VisionSvc       visiondomain.Service
	ExpenseSvc      expensedomain.Service
	ReconcileSvc    reconciledomain.Service
	SummarySvc      summarydomain.Service
	ReportSvc       reportdomain.Service
	NotificationSvc notificationdomain.Service
	LiveEvents      *liveevents.Hub `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             log.Named("server"),
		db:              p.DB,
		genID:           p.GenID,
		authSvc:         p.AuthSvc,
		orgSvc:          p.OrgSvc,
		centreSvc:       p.CentreSvc,
		ledgerSvc:       p.LedgerSvc,
		visitSvc:        p.VisitSvc,
		visionSvc:       p.VisionSvc,
		expenseSvc:      p.ExpenseSvc,
		reconcileSvc:    p.ReconcileSvc,
		summarySvc:      p.SummarySvc,
		reportSvc:       p.ReportSvc,
		notificationSvc: p.NotificationSvc,
		liveEvents:      p.LiveEvents,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/v1/auth")

	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// Live stream carries no balances, so it stays open to unauthenticated
	// displays on the centre floor.
	v1.GET("/events/stream", s.StreamLiveEvents)

	v1.Use(s.AuthRequired())

	admin := s.RequireRole(authdomain.RoleAdmin)
	managers := s.RequireRole(authdomain.RoleAdmin, authdomain.RoleRegionManager, authdomain.RoleBranchManager)
	centreStaff := s.RequireRole(
		authdomain.RoleAdmin,
		authdomain.RoleRegionManager,
		authdomain.RoleBranchManager,
		authdomain.RoleCentreManager,
		authdomain.RoleFrontDesk,
	)

	// -------- Users --------
	v1.POST("/users", admin, s.CreateUser)
	v1.GET("/users", admin, s.ListUsers)
	v1.GET("/users/:id", admin, s.GetUserByID)

	// -------- Regions / Branches --------
	v1.GET("/regions", s.ListRegions)
	v1.POST("/regions", admin, s.CreateRegion)
	v1.GET("/regions/:id", s.GetRegionByID)
	v1.PATCH("/regions/:id", admin, s.UpdateRegion)

	v1.GET("/branches", s.ListBranches)
	v1.POST("/branches", admin, s.CreateBranch)
	v1.GET("/branches/:id", s.GetBranchByID)
	v1.PATCH("/branches/:id", admin, s.UpdateBranch)

	// -------- Centres --------
	v1.GET("/centres", s.ListCentres)
	v1.POST("/centres", admin, s.CreateCentre)
	v1.GET("/centres/:id", s.GetCentreByID)
	v1.PATCH("/centres/:id", admin, s.UpdateCentre)

	// -------- Collections --------
	v1.GET("/centres/:id/collections", managers, s.ListCollections)
	v1.POST("/centres/:id/collections", managers, s.CollectCash)

	// -------- Visits --------
	v1.POST("/visits", centreStaff, s.CheckInVisit)
	v1.GET("/visits", centreStaff, s.ListVisits)
	v1.GET("/visits/:id", centreStaff, s.GetVisitByID)
	v1.PATCH("/visits/:id/checkout", centreStaff, s.CheckOutVisit)

	// -------- Vision entries --------
	v1.POST("/vision-entries", s.RequireRole(authdomain.RoleAdmin, authdomain.RoleVision), s.CreateVisionEntry)
	v1.GET("/vision-entries", s.ListVisionEntries)
	v1.GET("/vision-entries/:id", s.GetVisionEntryByID)

	// -------- Expenses --------
	v1.POST("/expenses", centreStaff, s.CreateExpense)
	v1.GET("/expenses", s.ListExpenses)
	v1.GET("/expenses/:id", s.GetExpenseByID)

	// -------- Reconciliation --------
	v1.GET("/missed-entries", s.ListMissedEntries)

	// -------- Summaries / Reports --------
	v1.GET("/summaries", managers, s.ListDailySummaries)
	v1.GET("/centre-balances", managers, s.ListCentreBalances)
	v1.GET("/reports/sales", managers, s.SalesReport)
	v1.GET("/reports/transactions/:tid", s.FindVisitsByTID)

	// -------- Notifications --------
	v1.GET("/notifications", s.ListNotifications)
	v1.POST("/notifications/:id/seen", s.MarkNotificationSeen)
}
