package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trackdoc/internal/config"
	"trackdoc/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FileController struct {
	UploadDir   string
	FileService FileService
	Config      *config.Config
}

func NewFileController(fileService FileService, cfg *config.Config) *FileController {
	if _, err := os.Stat(cfg.FSPath); os.IsNotExist(err) {
		os.MkdirAll(cfg.FSPath, 0755)
	}
	return &FileController{
		UploadDir:   cfg.FSPath,
		FileService: fileService,
		Config:      cfg,
	}
}

func callerID(c *fiber.Ctx) (primitive.ObjectID, error) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}

// UploadFile godoc
// @Summary Upload a document content file
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param document_id formData string false "Document ID to attach to"
// @Param description formData string false "File description"
// @Success 201 {object} File
// @Failure 400 {object} map[string]interface{}
// @Router /api/files/upload [post]
func (ctrl *FileController) UploadFile(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Error retrieving file"})
	}

	documentID := c.FormValue("document_id")
	description := c.FormValue("description")

	if err := ctrl.FileService.ValidateUpload(c.UserContext(), documentID, file.Filename, file.Size); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	originalName := filepath.Base(file.Filename)
	uniqueName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), originalName)
	uniqueName = strings.ReplaceAll(uniqueName, " ", "_")

	dstPath := filepath.Join(ctrl.UploadDir, uniqueName)

	if err := c.SaveFile(file, dstPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error saving file to disk"})
	}

	fileRecord := &File{
		OriginalFilename: originalName,
		Path:             dstPath,
		Size:             file.Size,
		MimeType:         file.Header.Get("Content-Type"),
		UploadedBy:       userID,
		StorageType:      "local",
		Description:      description,
		CreatedAt:        time.Now(),
	}
	if documentID != "" {
		if oid, err := primitive.ObjectIDFromHex(documentID); err == nil {
			fileRecord.DocumentID = oid
		}
	}

	if err := ctrl.FileService.SaveFile(c.UserContext(), fileRecord); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error saving file metadata"})
	}

	return c.Status(fiber.StatusCreated).JSON(fileRecord)
}

// GetFilesByDocument godoc
// @Summary List a document's files
// @Tags files
// @Produce json
// @Param documentId path string true "Document ID"
// @Success 200 {array} File
// @Router /api/files/document/{documentId} [get]
func (ctrl *FileController) GetFilesByDocument(c *fiber.Ctx) error {
	files, err := ctrl.FileService.GetFilesByDocument(c.UserContext(), c.Params("documentId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error retrieving files"})
	}
	return c.JSON(files)
}

// DownloadFile godoc
// @Summary Download a file
// @Tags files
// @Param id path string true "File ID"
// @Success 200 {file} file "File content"
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/{id}/download [get]
func (ctrl *FileController) DownloadFile(c *fiber.Ctx) error {
	file, err := ctrl.FileService.GetFile(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	}
	return c.Download(file.Path, file.OriginalFilename)
}

// DeleteFile godoc
// @Summary Delete a file
// @Tags files
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/files/{id} [delete]
func (ctrl *FileController) DeleteFile(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	if err := ctrl.FileService.DeleteFile(c.UserContext(), c.Params("id"), userID); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}
