package workflow

import (
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type WorkflowApi struct {
	controller  *WorkflowController
	config      *config.Config
	roleService middleware.RoleService
}

func NewWorkflowApi(controller *WorkflowController, cfg *config.Config, roleService middleware.RoleService) *WorkflowApi {
	return &WorkflowApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (h *WorkflowApi) Setup(app *fiber.App) {
	wfs := app.Group("/api/workflows", middleware.AuthMiddleware(h.config.SkipAuth))

	wfs.Get("/", middleware.RequirePermission(h.roleService, "workflows", "read"), h.controller.ListWorkflows)
	wfs.Get("/:id", middleware.RequirePermission(h.roleService, "workflows", "read"), h.controller.GetWorkflow)
	wfs.Post("/", middleware.RequirePermission(h.roleService, "workflows", "create"), h.controller.CreateWorkflow)
	wfs.Put("/:id", middleware.RequirePermission(h.roleService, "workflows", "update"), h.controller.UpdateWorkflow)
	wfs.Put("/:id/active", middleware.RequirePermission(h.roleService, "workflows", "update"), h.controller.SetWorkflowActive)
	wfs.Delete("/:id", middleware.RequirePermission(h.roleService, "workflows", "delete"), h.controller.DeleteWorkflow)
}
