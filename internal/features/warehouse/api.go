package warehouse

import (
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type WarehouseApi struct {
	WarehouseController *WarehouseController
	Config              *config.Config
	RoleService         middleware.RoleService
}

func NewWarehouseApi(warehouseController *WarehouseController, config *config.Config, roleService middleware.RoleService) *WarehouseApi {
	return &WarehouseApi{
		WarehouseController: warehouseController,
		Config:              config,
		RoleService:         roleService,
	}
}

func (api *WarehouseApi) Setup(app *fiber.App) {
	group := app.Group("/api/warehouse", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/export", middleware.RequirePermission(api.RoleService, "reports", "create"), api.WarehouseController.Export)
	group.Get("/logs", middleware.RequirePermission(api.RoleService, "reports", "read"), api.WarehouseController.ListLogs)
}
