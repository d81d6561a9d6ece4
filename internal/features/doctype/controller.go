package doctype

import (
	"github.com/gofiber/fiber/v2"
)

type DocumentTypeController struct {
	Service DocumentTypeService
}

func NewDocumentTypeController(service DocumentTypeService) *DocumentTypeController {
	return &DocumentTypeController{Service: service}
}

// ListDocumentTypes godoc
// @Summary List document types
// @Tags document-types
// @Produce json
// @Param include_inactive query bool false "Include inactive types"
// @Success 200 {array} DocumentType
// @Router /api/document-types [get]
func (c *DocumentTypeController) ListDocumentTypes(ctx *fiber.Ctx) error {
	includeInactive := ctx.Query("include_inactive") == "true"
	types, err := c.Service.ListDocumentTypes(ctx.UserContext(), includeInactive)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(types)
}

// GetDocumentType godoc
// @Summary Get a document type by ID
// @Tags document-types
// @Produce json
// @Param id path string true "Document type ID"
// @Success 200 {object} DocumentType
// @Failure 404 {object} map[string]string "Document type not found"
// @Router /api/document-types/{id} [get]
func (c *DocumentTypeController) GetDocumentType(ctx *fiber.Ctx) error {
	dt, err := c.Service.GetDocumentType(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Document type not found"})
	}
	return ctx.JSON(dt)
}

// CreateDocumentType godoc
// @Summary Create a document type
// @Tags document-types
// @Accept json
// @Produce json
// @Param documentType body DocumentType true "Document type"
// @Success 201 {object} DocumentType
// @Failure 400 {object} map[string]string "Validation error"
// @Router /api/document-types [post]
func (c *DocumentTypeController) CreateDocumentType(ctx *fiber.Ctx) error {
	var input DocumentType
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.CreateDocumentType(ctx.UserContext(), &input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// UpdateDocumentType godoc
// @Summary Update a document type
// @Tags document-types
// @Accept json
// @Param id path string true "Document type ID"
// @Param documentType body DocumentType true "Document type"
// @Success 200 {object} map[string]string "Document type updated successfully"
// @Router /api/document-types/{id} [put]
func (c *DocumentTypeController) UpdateDocumentType(ctx *fiber.Ctx) error {
	var input DocumentType
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateDocumentType(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Document type updated successfully"})
}

// SetDocumentTypeStatus godoc
// @Summary Activate or deactivate a document type
// @Tags document-types
// @Accept json
// @Param id path string true "Document type ID"
// @Success 200 {object} map[string]string "Status updated successfully"
// @Router /api/document-types/{id}/status [put]
func (c *DocumentTypeController) SetDocumentTypeStatus(ctx *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.SetStatus(ctx.UserContext(), ctx.Params("id"), body.Status); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Status updated successfully"})
}

// DeleteDocumentType godoc
// @Summary Delete a document type without documents
// @Tags document-types
// @Param id path string true "Document type ID"
// @Success 200 {object} map[string]string "Document type deleted successfully"
// @Router /api/document-types/{id} [delete]
func (c *DocumentTypeController) DeleteDocumentType(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteDocumentType(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Document type deleted successfully"})
}
