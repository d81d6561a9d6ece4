package document

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DocumentController struct {
	Service DocumentService
}

func NewDocumentController(service DocumentService) *DocumentController {
	return &DocumentController{Service: service}
}

func statusFor(err error) int {
	var transition *InvalidTransitionError
	switch {
	case errors.As(err, &transition):
		return fiber.StatusConflict
	case errors.Is(err, ErrDuplicateNumber):
		return fiber.StatusConflict
	case errors.Is(err, ErrNotLatestVersion):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidTypeOrDepartment):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusBadRequest
	}
}

// ListDocuments godoc
// @Summary List documents
// @Tags documents
// @Produce json
// @Param status query string false "Filter by status"
// @Param type_id query string false "Filter by document type"
// @Param department_id query string false "Filter by department"
// @Param category_id query string false "Filter by category"
// @Param author_id query string false "Filter by author"
// @Param number query string false "Filter by document number"
// @Param search query string false "Search in title and number"
// @Param archived query bool false "Filter by archived flag"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /api/documents [get]
func (c *DocumentController) ListDocuments(ctx *fiber.Ctx) error {
	filter := ListFilter{
		Status: DocumentStatus(ctx.Query("status")),
		Number: ctx.Query("number"),
		Search: ctx.Query("search"),
	}
	if v := ctx.Query("type_id"); v != "" {
		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			filter.TypeID = oid
		}
	}
	if v := ctx.Query("department_id"); v != "" {
		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			filter.DepartmentID = oid
		}
	}
	if v := ctx.Query("category_id"); v != "" {
		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			filter.CategoryID = oid
		}
	}
	if v := ctx.Query("author_id"); v != "" {
		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			filter.AuthorID = oid
		}
	}
	if v := ctx.Query("archived"); v != "" {
		archived := v == "true"
		filter.Archived = &archived
	}

	page := int64(ctx.QueryInt("page", 1))
	limit := int64(ctx.QueryInt("limit", 20))

	docs, total, err := c.Service.ListDocuments(ctx.UserContext(), filter, page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{
		"documents": docs,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// GetDocument godoc
// @Summary Get a document by ID
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} DocumentRecord
// @Failure 404 {object} map[string]string "Document not found"
// @Router /api/documents/{id} [get]
func (c *DocumentController) GetDocument(ctx *fiber.Ctx) error {
	doc, err := c.Service.GetDocument(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Document not found"})
	}
	return ctx.JSON(doc)
}

// GetDocumentVersions godoc
// @Summary List every version sharing a document number
// @Tags documents
// @Produce json
// @Param number path string true "Document number"
// @Success 200 {array} DocumentRecord
// @Router /api/documents/number/{number}/versions [get]
func (c *DocumentController) GetDocumentVersions(ctx *fiber.Ctx) error {
	docs, err := c.Service.GetVersions(ctx.UserContext(), ctx.Params("number"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(docs)
}

// CreateDocument godoc
// @Summary Create a draft document
// @Tags documents
// @Accept json
// @Produce json
// @Param document body DocumentRecord true "Document"
// @Success 201 {object} DocumentRecord
// @Failure 400 {object} map[string]string "Validation error"
// @Router /api/documents [post]
func (c *DocumentController) CreateDocument(ctx *fiber.Ctx) error {
	var input DocumentRecord
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.CreateDraft(ctx.UserContext(), &input)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// UpdateDocument godoc
// @Summary Update a draft document
// @Tags documents
// @Accept json
// @Param id path string true "Document ID"
// @Param document body DocumentRecord true "Document"
// @Success 200 {object} map[string]string "Document updated successfully"
// @Failure 409 {object} map[string]string "Document is not a draft"
// @Router /api/documents/{id} [put]
func (c *DocumentController) UpdateDocument(ctx *fiber.Ctx) error {
	var input DocumentRecord
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateDraft(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Document updated successfully"})
}

// SubmitDocument godoc
// @Summary Submit a draft for approval
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} DocumentRecord
// @Failure 409 {object} map[string]string "Document is not a draft"
// @Router /api/documents/{id}/submit [post]
func (c *DocumentController) SubmitDocument(ctx *fiber.Ctx) error {
	doc, err := c.Service.SubmitForApproval(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(doc)
}

// CreateDocumentVersion godoc
// @Summary Start a new version of a decided document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 201 {object} DocumentRecord
// @Failure 409 {object} map[string]string "Document is not in a terminal state"
// @Router /api/documents/{id}/new-version [post]
func (c *DocumentController) CreateDocumentVersion(ctx *fiber.Ctx) error {
	doc, err := c.Service.CreateNewVersion(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(doc)
}

// DeleteDocument godoc
// @Summary Delete (archive) a draft document
// @Tags documents
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]string "Document deleted successfully"
// @Router /api/documents/{id} [delete]
func (c *DocumentController) DeleteDocument(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteDraft(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Document deleted successfully"})
}
