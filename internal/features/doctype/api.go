package doctype

import (
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DocumentTypeApi struct {
	controller  *DocumentTypeController
	config      *config.Config
	roleService middleware.RoleService
}

func NewDocumentTypeApi(controller *DocumentTypeController, cfg *config.Config, roleService middleware.RoleService) *DocumentTypeApi {
	return &DocumentTypeApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (h *DocumentTypeApi) Setup(app *fiber.App) {
	types := app.Group("/api/document-types", middleware.AuthMiddleware(h.config.SkipAuth))

	types.Get("/", h.controller.ListDocumentTypes)
	types.Get("/:id", h.controller.GetDocumentType)
	types.Post("/", middleware.RequirePermission(h.roleService, "document_types", "create"), h.controller.CreateDocumentType)
	types.Put("/:id", middleware.RequirePermission(h.roleService, "document_types", "update"), h.controller.UpdateDocumentType)
	types.Put("/:id/status", middleware.RequirePermission(h.roleService, "document_types", "update"), h.controller.SetDocumentTypeStatus)
	types.Delete("/:id", middleware.RequirePermission(h.roleService, "document_types", "delete"), h.controller.DeleteDocumentType)
}
