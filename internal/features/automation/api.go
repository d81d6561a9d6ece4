package automation

import (
	"trackdoc/internal/common/api"
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AutomationApi struct {
	controller  *AutomationController
	config      *config.Config
	roleService middleware.RoleService
}

func NewAutomationApi(controller *AutomationController, config *config.Config, roleService middleware.RoleService) api.Route {
	return &AutomationApi{
		controller:  controller,
		config:      config,
		roleService: roleService,
	}
}

func (h *AutomationApi) Setup(app *fiber.App) {
	group := app.Group("/api/automation", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/rules", middleware.RequirePermission(h.roleService, "automation", "read"), h.controller.ListRules)
	group.Get("/rules/:id", middleware.RequirePermission(h.roleService, "automation", "read"), h.controller.GetRule)
	group.Post("/rules", middleware.RequirePermission(h.roleService, "automation", "create"), h.controller.CreateRule)
	group.Put("/rules/:id", middleware.RequirePermission(h.roleService, "automation", "update"), h.controller.UpdateRule)
	group.Put("/rules/:id/active", middleware.RequirePermission(h.roleService, "automation", "update"), h.controller.EnableRule)
	group.Delete("/rules/:id", middleware.RequirePermission(h.roleService, "automation", "delete"), h.controller.DeleteRule)
}
