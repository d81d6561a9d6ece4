package department

import (
	"github.com/gofiber/fiber/v2"
)

type DepartmentController struct {
	Service DepartmentService
}

func NewDepartmentController(service DepartmentService) *DepartmentController {
	return &DepartmentController{Service: service}
}

// ListDepartments godoc
// @Summary List departments
// @Tags departments
// @Produce json
// @Param include_inactive query bool false "Include inactive departments"
// @Success 200 {array} Department
// @Router /api/departments [get]
func (c *DepartmentController) ListDepartments(ctx *fiber.Ctx) error {
	includeInactive := ctx.Query("include_inactive") == "true"
	depts, err := c.Service.ListDepartments(ctx.UserContext(), includeInactive)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(depts)
}

// GetDepartment godoc
// @Summary Get a department by ID
// @Tags departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} Department
// @Failure 404 {object} map[string]string "Department not found"
// @Router /api/departments/{id} [get]
func (c *DepartmentController) GetDepartment(ctx *fiber.Ctx) error {
	dept, err := c.Service.GetDepartment(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Department not found"})
	}
	return ctx.JSON(dept)
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags departments
// @Accept json
// @Produce json
// @Param department body Department true "Department"
// @Success 201 {object} Department
// @Failure 400 {object} map[string]string "Validation error"
// @Router /api/departments [post]
func (c *DepartmentController) CreateDepartment(ctx *fiber.Ctx) error {
	var input Department
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.CreateDepartment(ctx.UserContext(), &input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// UpdateDepartment godoc
// @Summary Update a department
// @Tags departments
// @Accept json
// @Param id path string true "Department ID"
// @Param department body Department true "Department"
// @Success 200 {object} map[string]string "Department updated successfully"
// @Router /api/departments/{id} [put]
func (c *DepartmentController) UpdateDepartment(ctx *fiber.Ctx) error {
	var input Department
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateDepartment(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Department updated successfully"})
}

// SetDepartmentStatus godoc
// @Summary Activate or deactivate a department
// @Tags departments
// @Accept json
// @Param id path string true "Department ID"
// @Success 200 {object} map[string]string "Status updated successfully"
// @Router /api/departments/{id}/status [put]
func (c *DepartmentController) SetDepartmentStatus(ctx *fiber.Ctx) error {
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
