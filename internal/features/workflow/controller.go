package workflow

import (
	"github.com/gofiber/fiber/v2"
)

type WorkflowController struct {
	Service WorkflowService
}

func NewWorkflowController(service WorkflowService) *WorkflowController {
	return &WorkflowController{Service: service}
}

// ListWorkflows godoc
// @Summary List workflow definitions
// @Tags workflows
// @Produce json
// @Success 200 {array} WorkflowDefinition
// @Router /api/workflows [get]
func (c *WorkflowController) ListWorkflows(ctx *fiber.Ctx) error {
	wfs, err := c.Service.ListWorkflows(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(wfs)
}

// GetWorkflow godoc
// @Summary Get a workflow definition by ID
// @Tags workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} WorkflowDefinition
// @Router /api/workflows/{id} [get]
func (c *WorkflowController) GetWorkflow(ctx *fiber.Ctx) error {
	wf, err := c.Service.GetWorkflow(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Workflow not found"})
	}
	return ctx.JSON(wf)
}

// CreateWorkflow godoc
// @Summary Create a workflow definition
// @Tags workflows
// @Accept json
// @Produce json
// @Param workflow body WorkflowDefinition true "Workflow definition"
// @Success 201 {object} WorkflowDefinition
// @Failure 400 {object} map[string]string "Validation error"
// @Router /api/workflows [post]
func (c *WorkflowController) CreateWorkflow(ctx *fiber.Ctx) error {
	var input WorkflowDefinition
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.CreateWorkflow(ctx.UserContext(), &input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// UpdateWorkflow godoc
// @Summary Update a workflow definition
// @Tags workflows
// @Accept json
// @Param id path string true "Workflow ID"
// @Param workflow body WorkflowDefinition true "Workflow definition"
// @Success 200 {object} map[string]string "Workflow updated successfully"
// @Router /api/workflows/{id} [put]
func (c *WorkflowController) UpdateWorkflow(ctx *fiber.Ctx) error {
	var input WorkflowDefinition
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateWorkflow(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Workflow updated successfully"})
}

// SetWorkflowActive godoc
// @Summary Activate or deactivate a workflow definition
// @Tags workflows
// @Accept json
// @Param id path string true "Workflow ID"
// @Success 200 {object} map[string]string "Workflow updated successfully"
// @Router /api/workflows/{id}/active [put]
func (c *WorkflowController) SetWorkflowActive(ctx *fiber.Ctx) error {
	var body struct {
		Active bool `json:"active"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.SetActive(ctx.UserContext(), ctx.Params("id"), body.Active); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Workflow updated successfully"})
}

// DeleteWorkflow godoc
// @Summary Delete a workflow definition
// @Tags workflows
// @Param id path string true "Workflow ID"
// @Success 200 {object} map[string]string "Workflow deleted successfully"
// @Router /api/workflows/{id} [delete]
func (c *WorkflowController) DeleteWorkflow(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteWorkflow(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Workflow deleted successfully"})
}
