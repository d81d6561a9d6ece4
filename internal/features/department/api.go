package department

import (
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DepartmentApi struct {
	controller  *DepartmentController
	config      *config.Config
	roleService middleware.RoleService
}

func NewDepartmentApi(controller *DepartmentController, cfg *config.Config, roleService middleware.RoleService) *DepartmentApi {
	return &DepartmentApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (h *DepartmentApi) Setup(app *fiber.App) {
	depts := app.Group("/api/departments", middleware.AuthMiddleware(h.config.SkipAuth))

	depts.Get("/", h.controller.ListDepartments)
	depts.Get("/:id", h.controller.GetDepartment)
	depts.Post("/", middleware.RequirePermission(h.roleService, "departments", "create"), h.controller.CreateDepartment)
	depts.Put("/:id", middleware.RequirePermission(h.roleService, "departments", "update"), h.controller.UpdateDepartment)
	depts.Put("/:id/status", middleware.RequirePermission(h.roleService, "departments", "update"), h.controller.SetDepartmentStatus)
}
