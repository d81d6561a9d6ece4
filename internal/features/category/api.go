package category

import (
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CategoryApi struct {
	controller  *CategoryController
	config      *config.Config
	roleService middleware.RoleService
}

func NewCategoryApi(controller *CategoryController, cfg *config.Config, roleService middleware.RoleService) *CategoryApi {
	return &CategoryApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (h *CategoryApi) Setup(app *fiber.App) {
	cats := app.Group("/api/categories", middleware.AuthMiddleware(h.config.SkipAuth))

	cats.Get("/", h.controller.ListCategories)
	cats.Get("/:id", h.controller.GetCategory)
	cats.Post("/", middleware.RequirePermission(h.roleService, "categories", "create"), h.controller.CreateCategory)
	cats.Put("/:id", middleware.RequirePermission(h.roleService, "categories", "update"), h.controller.UpdateCategory)
	cats.Delete("/:id", middleware.RequirePermission(h.roleService, "categories", "delete"), h.controller.DeleteCategory)
}
