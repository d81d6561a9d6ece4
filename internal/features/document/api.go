package document

import (
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DocumentApi struct {
	controller  *DocumentController
	config      *config.Config
	roleService middleware.RoleService
}

func NewDocumentApi(controller *DocumentController, cfg *config.Config, roleService middleware.RoleService) *DocumentApi {
	return &DocumentApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (h *DocumentApi) Setup(app *fiber.App) {
	docs := app.Group("/api/documents", middleware.AuthMiddleware(h.config.SkipAuth))

	docs.Get("/", middleware.RequirePermission(h.roleService, "documents", "read"), h.controller.ListDocuments)
	docs.Get("/number/:number/versions", middleware.RequirePermission(h.roleService, "documents", "read"), h.controller.GetDocumentVersions)
	docs.Get("/:id", middleware.RequirePermission(h.roleService, "documents", "read"), h.controller.GetDocument)
	docs.Post("/", middleware.RequirePermission(h.roleService, "documents", "create"), h.controller.CreateDocument)
	docs.Put("/:id", middleware.RequirePermission(h.roleService, "documents", "update"), h.controller.UpdateDocument)
	docs.Post("/:id/submit", middleware.RequirePermission(h.roleService, "documents", "update"), h.controller.SubmitDocument)
	docs.Post("/:id/new-version", middleware.RequirePermission(h.roleService, "documents", "create"), h.controller.CreateDocumentVersion)
	docs.Delete("/:id", middleware.RequirePermission(h.roleService, "documents", "delete"), h.controller.DeleteDocument)
}
