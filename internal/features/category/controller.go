package category

import (
	"github.com/gofiber/fiber/v2"
)

type CategoryController struct {
	Service CategoryService
}

func NewCategoryController(service CategoryService) *CategoryController {
	return &CategoryController{Service: service}
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Param include_inactive query bool false "Include inactive categories"
// @Success 200 {array} Category
// @Router /api/categories [get]
func (c *CategoryController) ListCategories(ctx *fiber.Ctx) error {
	includeInactive := ctx.Query("include_inactive") == "true"
	cats, err := c.Service.ListCategories(ctx.UserContext(), includeInactive)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(cats)
}

// GetCategory godoc
// @Summary Get a category by ID
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} Category
// @Router /api/categories/{id} [get]
func (c *CategoryController) GetCategory(ctx *fiber.Ctx) error {
	cat, err := c.Service.GetCategory(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}
	return ctx.JSON(cat)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body Category true "Category"
// @Success 201 {object} Category
// @Router /api/categories [post]
func (c *CategoryController) CreateCategory(ctx *fiber.Ctx) error {
	var input Category
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.CreateCategory(ctx.UserContext(), &input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Param id path string true "Category ID"
// @Param category body Category true "Category"
// @Success 200 {object} map[string]string "Category updated successfully"
// @Router /api/categories/{id} [put]
func (c *CategoryController) UpdateCategory(ctx *fiber.Ctx) error {
	var input Category
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateCategory(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Category updated successfully"})
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags categories
// @Param id path string true "Category ID"
// @Success 200 {object} map[string]string "Category deleted successfully"
// @Router /api/categories/{id} [delete]
func (c *CategoryController) DeleteCategory(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteCategory(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Category deleted successfully"})
}
