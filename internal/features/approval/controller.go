package approval

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type ApprovalController struct {
	Service ApprovalService
}

func NewApprovalController(service ApprovalService) *ApprovalController {
	return &ApprovalController{Service: service}
}

type decisionRequest struct {
	Comment string `json:"comment"`
}

func decisionStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoActiveProcess):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNotEligible):
		return fiber.StatusForbidden
	case errors.Is(err, ErrAlreadyDecided), errors.Is(err, ErrStepNotActionable):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

// ApproveDocument godoc
// @Summary Approve the current step of a document's approval process
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param decision body decisionRequest false "Optional comment"
// @Success 200 {object} ApprovalProcess
// @Failure 403 {object} map[string]string "User is not an approver"
// @Failure 409 {object} map[string]string "Step already decided"
// @Router /api/documents/{id}/approve [post]
func (c *ApprovalController) ApproveDocument(ctx *fiber.Ctx) error {
	var body decisionRequest
	_ = ctx.BodyParser(&body)

	process, err := c.Service.Decide(ctx.UserContext(), ctx.Params("id"), DecisionApprove, body.Comment)
	if err != nil {
		return ctx.Status(decisionStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(process)
}

// RejectDocument godoc
// @Summary Reject the current step of a document's approval process
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param decision body decisionRequest false "Optional comment"
// @Success 200 {object} ApprovalProcess
// @Failure 403 {object} map[string]string "User is not an approver"
// @Failure 409 {object} map[string]string "Step already decided"
// @Router /api/documents/{id}/reject [post]
func (c *ApprovalController) RejectDocument(ctx *fiber.Ctx) error {
	var body decisionRequest
	_ = ctx.BodyParser(&body)

	process, err := c.Service.Decide(ctx.UserContext(), ctx.Params("id"), DecisionReject, body.Comment)
	if err != nil {
		return ctx.Status(decisionStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(process)
}

// GetApprovalProcess godoc
// @Summary Get the active approval process for a document
// @Tags approvals
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} ApprovalProcess
// @Failure 404 {object} map[string]string "No active process"
// @Router /api/documents/{id}/approval [get]
func (c *ApprovalController) GetApprovalProcess(ctx *fiber.Ctx) error {
	process, err := c.Service.GetActiveProcess(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(decisionStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(process)
}

// GetApprovalHistory godoc
// @Summary List every approval process a document went through
// @Tags approvals
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} ApprovalProcess
// @Router /api/documents/{id}/approval/history [get]
func (c *ApprovalController) GetApprovalHistory(ctx *fiber.Ctx) error {
	processes, err := c.Service.GetProcessHistory(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(processes)
}

// CanApprove godoc
// @Summary Check whether the caller can decide on the document
// @Tags approvals
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]bool
// @Router /api/documents/{id}/can-approve [get]
func (c *ApprovalController) CanApprove(ctx *fiber.Ctx) error {
	can, err := c.Service.CanApprove(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"canApprove": can})
}
