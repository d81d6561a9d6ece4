package file

import (
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FileApi struct {
	controller *FileController
	config     *config.Config
}

func NewFileApi(controller *FileController, config *config.Config) *FileApi {
	return &FileApi{
		controller: controller,
		config:     config,
	}
}

func (h *FileApi) Setup(app *fiber.App) {
	app.Post("/api/files/upload", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.UploadFile)
	app.Get("/api/files/document/:documentId", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.GetFilesByDocument)
	app.Get("/api/files/:id/download", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.DownloadFile)
	app.Delete("/api/files/:id", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.DeleteFile)

	app.Static(h.config.FSURL, h.config.FSPath)
}
