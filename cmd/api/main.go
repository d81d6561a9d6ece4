package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "trackdoc/internal/common/api"
	"trackdoc/internal/config"
	"trackdoc/internal/database"
	"trackdoc/internal/features/approval"
	"trackdoc/internal/features/audit"
	"trackdoc/internal/features/auth"
	"trackdoc/internal/features/automation"
	"trackdoc/internal/features/category"
	cron_feature "trackdoc/internal/features/cron"
	"trackdoc/internal/features/dashboard"
	"trackdoc/internal/features/department"
	"trackdoc/internal/features/doctype"
	"trackdoc/internal/features/document"
	"trackdoc/internal/features/email"
	"trackdoc/internal/features/file"
	"trackdoc/internal/features/notification"
	"trackdoc/internal/features/organization"
	"trackdoc/internal/features/report"
	"trackdoc/internal/features/role"
	"trackdoc/internal/features/settings"
	"trackdoc/internal/features/system"
	"trackdoc/internal/features/user"
	"trackdoc/internal/features/warehouse"
	"trackdoc/internal/features/workflow"
	"trackdoc/internal/logger"
	"trackdoc/internal/middleware"
	"trackdoc/pkg/utils"

	_ "trackdoc/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures the unique document number index exists
// before the first allocation happens.
func InitializeIndexes(lc fx.Lifecycle, docRepo document.DocumentRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return docRepo.EnsureIndexes(ctx)
		},
	})
}

// @title           TrackDoc API
// @version         1.0
// @description     Corporate document management and approval tracking backend.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			// Repositories
			audit.NewAuditRepository,
			organization.NewOrganizationRepository,
			user.NewUserRepository,
			role.NewRoleRepository,
			department.NewDepartmentRepository,
			category.NewCategoryRepository,
			doctype.NewDocumentTypeRepository,
			document.NewDocumentRepository,
			document.NewCounterRepository,
			workflow.NewWorkflowRepository,
			approval.NewApprovalRepository,
			notification.NewNotificationRepository,
			report.NewReportRepository,
			settings.NewSettingsRepository,
			email.NewEmailRepository,
			file.NewFileRepository,
			automation.NewAutomationRepository,
			warehouse.NewExportLogRepository,
			cron_feature.NewCronRepository,
			dashboard.NewDashboardRepository,
			dashboard.NewStatsRepository,

			// Services
			audit.NewAuditService,
			auth.NewAuthService,
			user.NewUserService,
			role.NewRoleService,
			department.NewDepartmentService,
			category.NewCategoryService,
			doctype.NewDocumentTypeService,
			workflow.NewWorkflowService,
			document.NewDocumentService,
			approval.NewApprovalService,
			notification.NewHub,
			notification.NewNotificationService,
			settings.NewSettingsService,
			email.NewEmailService,
			file.NewFileService,
			report.NewReportService,
			automation.NewActionExecutor,
			automation.NewAutomationService,
			warehouse.NewWarehouseService,
			cron_feature.NewCronService,
			dashboard.NewDashboardService,

			// Interface adapters to keep feature dependencies one-directional
			func(s approval.ApprovalService) document.ApprovalStarter { return s },
			func(s automation.AutomationService) document.EventSink { return s },
			func(s notification.NotificationService) approval.Notifier { return s },
			func(s notification.NotificationService) automation.Notifier { return s },
			func(s role.RoleService) middleware.RoleService { return s },
			func(r user.UserRepository) audit.UserFinder { return r },
			func(r document.DocumentRepository) doctype.DocumentUsageChecker { return r },

			// Controllers
			auth.NewAuthController,
			user.NewUserController,
			role.NewRoleController,
			department.NewDepartmentController,
			category.NewCategoryController,
			doctype.NewDocumentTypeController,
			workflow.NewWorkflowController,
			document.NewDocumentController,
			approval.NewApprovalController,
			notification.NewNotificationController,
			audit.NewAuditController,
			report.NewReportController,
			settings.NewSettingsController,
			file.NewFileController,
			automation.NewAutomationController,
			warehouse.NewWarehouseController,
			cron_feature.NewCronController,
			dashboard.NewDashboardController,
			system.NewHealthController,
			system.NewWebSocketController,

			// API routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(role.NewRoleApi),
			AsRoute(department.NewDepartmentApi),
			AsRoute(category.NewCategoryApi),
			AsRoute(doctype.NewDocumentTypeApi),
			AsRoute(workflow.NewWorkflowApi),
			AsRoute(document.NewDocumentApi),
			AsRoute(approval.NewApprovalApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(report.NewReportApi),
			AsRoute(settings.NewSettingsApi),
			AsRoute(file.NewFileApi),
			AsRoute(automation.NewAutomationApi),
			AsRoute(warehouse.NewWarehouseApi),
			AsRoute(cron_feature.NewCronApi),
			AsRoute(dashboard.NewDashboardApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			InitializeIndexes,
			StartServer,
			func(lc fx.Lifecycle, cronService cron_feature.CronService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return cronService.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return cronService.StopScheduler()
					},
				})
			},
		),
	)

	app.Run()
}
