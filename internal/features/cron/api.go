package cron_feature

import (
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CronApi struct {
	CronController *CronController
	Config         *config.Config
	RoleService    middleware.RoleService
}

func NewCronApi(cronController *CronController, config *config.Config, roleService middleware.RoleService) *CronApi {
	return &CronApi{
		CronController: cronController,
		Config:         config,
		RoleService:    roleService,
	}
}

func (api *CronApi) Setup(app *fiber.App) {
	group := app.Group("/api/cron-jobs", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/", middleware.RequirePermission(api.RoleService, "automation", "create"), api.CronController.CreateCronJob)
	group.Get("/", middleware.RequirePermission(api.RoleService, "automation", "read"), api.CronController.ListCronJobs)
	group.Get("/:id", middleware.RequirePermission(api.RoleService, "automation", "read"), api.CronController.GetCronJob)
	group.Put("/:id", middleware.RequirePermission(api.RoleService, "automation", "update"), api.CronController.UpdateCronJob)
	group.Delete("/:id", middleware.RequirePermission(api.RoleService, "automation", "delete"), api.CronController.DeleteCronJob)

	group.Post("/:id/execute", middleware.RequirePermission(api.RoleService, "automation", "update"), api.CronController.ExecuteCronJob)
	group.Get("/:id/logs", middleware.RequirePermission(api.RoleService, "automation", "read"), api.CronController.GetCronJobLogs)
}
